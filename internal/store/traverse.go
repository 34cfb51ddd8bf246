package store

import (
	"database/sql"

	"careertrail/canopy/internal/node"
)

// ancestorChainSQL walks parent pointers from a node to its root. The
// level bound makes the walk terminate even if the stored data somehow
// contains a cycle; in that case rows repeat up to the cap and the
// caller's chain simply stops growing new IDs.
const ancestorChainSQL = `
WITH RECURSIVE chain(id, type, parent_id, meta, owner_id, created_at, updated_at, lvl) AS (
	SELECT id, type, parent_id, meta, owner_id, created_at, updated_at, 0
	FROM nodes WHERE id = ? AND owner_id = ?
	UNION ALL
	SELECT n.id, n.type, n.parent_id, n.meta, n.owner_id, n.created_at, n.updated_at, c.lvl + 1
	FROM nodes n JOIN chain c ON n.id = c.parent_id
	WHERE n.owner_id = ? AND c.lvl < ?
)
SELECT id, type, parent_id, meta, owner_id, created_at, updated_at FROM chain ORDER BY lvl`

type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

// Ancestors returns the chain from the node itself up through every
// ancestor to its root. Empty if the node does not exist for the
// owner. A node already seen on the chain ends it, so corrupted data
// cannot produce duplicates.
func (s *Store) Ancestors(id, ownerID string) ([]node.Node, error) {
	return ancestorsOn(s.conn, id, ownerID)
}

func ancestorsOn(q querier, id, ownerID string) ([]node.Node, error) {
	rows, err := q.Query(ancestorChainSQL, id, ownerID, ownerID, maxTraversalDepth)
	if err != nil {
		return nil, err
	}
	chain, err := collectNodes(rows)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(chain))
	for i, n := range chain {
		if seen[n.ID] {
			return chain[:i], nil
		}
		seen[n.ID] = true
	}
	return chain, nil
}

// Subtree returns the node plus all descendants down to maxDepth
// levels below it, shallowest first, siblings oldest first. maxDepth
// is clamped to the traversal cap.
func (s *Store) Subtree(id, ownerID string, maxDepth int) ([]node.Node, error) {
	if maxDepth < 0 || maxDepth > maxTraversalDepth {
		maxDepth = maxTraversalDepth
	}
	rows, err := s.conn.Query(`
		WITH RECURSIVE walk(id, type, parent_id, meta, owner_id, created_at, updated_at, lvl) AS (
			SELECT id, type, parent_id, meta, owner_id, created_at, updated_at, 0
			FROM nodes WHERE id = ? AND owner_id = ?
			UNION ALL
			SELECT n.id, n.type, n.parent_id, n.meta, n.owner_id, n.created_at, n.updated_at, w.lvl + 1
			FROM nodes n JOIN walk w ON n.parent_id = w.id
			WHERE n.owner_id = ? AND w.lvl < ?
		)
		SELECT id, type, parent_id, meta, owner_id, created_at, updated_at
		FROM walk ORDER BY lvl, created_at, id
	`, id, ownerID, ownerID, maxDepth)
	if err != nil {
		return nil, err
	}
	return collectNodes(rows)
}

// FullTree assembles the owner's whole forest with children nested
// under each node. A node whose recorded parent does not exist among
// the owner's nodes is promoted to a root rather than dropped.
func (s *Store) FullTree(ownerID string) ([]*node.TreeNode, error) {
	nodes, err := s.AllForOwner(ownerID)
	if err != nil {
		return nil, err
	}

	index := make(map[string]*node.TreeNode, len(nodes))
	for i := range nodes {
		index[nodes[i].ID] = &node.TreeNode{Node: nodes[i]}
	}

	var roots []*node.TreeNode
	for _, n := range nodes {
		tn := index[n.ID]
		if n.ParentID == nil {
			roots = append(roots, tn)
			continue
		}
		parent, ok := index[*n.ParentID]
		if !ok || parent == tn {
			// Orphan (or self-parent corruption): promote to root.
			roots = append(roots, tn)
			continue
		}
		parent.Children = append(parent.Children, tn)
	}
	return roots, nil
}

// Stats computes the diagnostic aggregate for one owner's forest.
// MaxDepth walks from every parentless root to its deepest leaf.
func (s *Store) Stats(ownerID string) (*node.Stats, error) {
	stats := &node.Stats{NodesByType: make(map[node.Type]int)}

	rows, err := s.conn.Query(`
		SELECT type, COUNT(*) FROM nodes WHERE owner_id = ? GROUP BY type
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var t node.Type
		var count int
		if err := rows.Scan(&t, &count); err != nil {
			return nil, err
		}
		stats.NodesByType[t] = count
		stats.TotalNodes += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	row := s.conn.QueryRow(`
		SELECT COUNT(*) FROM nodes WHERE owner_id = ? AND parent_id IS NULL
	`, ownerID)
	if err := row.Scan(&stats.RootNodes); err != nil {
		return nil, err
	}

	row = s.conn.QueryRow(`
		WITH RECURSIVE walk(id, lvl) AS (
			SELECT id, 0 FROM nodes WHERE owner_id = ? AND parent_id IS NULL
			UNION ALL
			SELECT n.id, w.lvl + 1 FROM nodes n JOIN walk w ON n.parent_id = w.id
			WHERE n.owner_id = ? AND w.lvl < ?
		)
		SELECT COALESCE(MAX(lvl), 0) FROM walk
	`, ownerID, ownerID, maxTraversalDepth)
	if err := row.Scan(&stats.MaxDepth); err != nil {
		return nil, err
	}

	return stats, nil
}
