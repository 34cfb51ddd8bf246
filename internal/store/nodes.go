package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"careertrail/canopy/internal/node"
)

const nodeColumns = "id, type, parent_id, meta, owner_id, created_at, updated_at"

// scanNode scans a row into a Node. The row must have all 7 columns in
// standard order.
func scanNode(scanner interface{ Scan(dest ...any) error }) (node.Node, error) {
	var n node.Node
	var rawMeta string
	err := scanner.Scan(&n.ID, &n.Type, &n.ParentID, &rawMeta, &n.OwnerID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return n, err
	}
	if err := json.Unmarshal([]byte(rawMeta), &n.Meta); err != nil {
		return n, fmt.Errorf("decoding meta for node %s: %w", n.ID, err)
	}
	return n, nil
}

func collectNodes(rows *sql.Rows) ([]node.Node, error) {
	defer rows.Close()
	var nodes []node.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// Create inserts a new node for the owner. A set parentID must resolve
// for the same owner, else node.ErrParentNotFound. Edge-type
// compatibility is the orchestrator's responsibility, checked before
// this call.
func (s *Store) Create(t node.Type, parentID *string, meta map[string]any, ownerID string) (*node.Node, error) {
	if meta == nil {
		meta = map[string]any{}
	}
	if parentID != nil {
		parent, err := s.GetByID(*parentID, ownerID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, node.ErrParentNotFound
		}
	}

	rawMeta, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encoding meta: %w", err)
	}

	now := time.Now().UnixMilli()
	n := node.Node{
		ID:        uuid.NewString(),
		Type:      t,
		ParentID:  parentID,
		Meta:      meta,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.conn.Exec(`
		INSERT INTO nodes (id, type, parent_id, meta, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.Type, n.ParentID, string(rawMeta), n.OwnerID, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting node: %w", err)
	}
	return &n, nil
}

// GetByID returns a single node by ID scoped to the owner, or nil if
// it does not exist for that owner.
func (s *Store) GetByID(id, ownerID string) (*node.Node, error) {
	row := s.conn.QueryRow(`
		SELECT `+nodeColumns+` FROM nodes WHERE id = ? AND owner_id = ?
	`, id, ownerID)

	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Update applies a metadata patch to a node. Patch keys overwrite or
// add to the existing meta map; a nil patch value removes the key.
// Returns nil if the node does not exist for the owner.
func (s *Store) Update(id string, metaPatch map[string]any, ownerID string) (*node.Node, error) {
	tx, err := s.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning update: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+nodeColumns+` FROM nodes WHERE id = ? AND owner_id = ?`, id, ownerID)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	n.Meta = MergeMeta(n.Meta, metaPatch)
	n.UpdatedAt = time.Now().UnixMilli()

	rawMeta, err := json.Marshal(n.Meta)
	if err != nil {
		return nil, fmt.Errorf("encoding meta: %w", err)
	}
	if _, err := tx.Exec(`
		UPDATE nodes SET meta = ?, updated_at = ? WHERE id = ? AND owner_id = ?
	`, string(rawMeta), n.UpdatedAt, id, ownerID); err != nil {
		return nil, fmt.Errorf("updating node: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing update: %w", err)
	}
	return &n, nil
}

// MergeMeta applies patch onto base without mutating either. A nil
// patch value deletes the key.
func MergeMeta(base, patch map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range patch {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	return merged
}

// Delete detaches the direct children of the node (their parent_id
// becomes NULL) and removes the node, as one transaction. Reports
// whether a node was actually deleted.
func (s *Store) Delete(id, ownerID string) (bool, error) {
	tx, err := s.conn.Begin()
	if err != nil {
		return false, fmt.Errorf("beginning delete: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()
	if _, err := tx.Exec(`
		UPDATE nodes SET parent_id = NULL, updated_at = ? WHERE parent_id = ? AND owner_id = ?
	`, now, id, ownerID); err != nil {
		return false, fmt.Errorf("detaching children: %w", err)
	}

	res, err := tx.Exec(`DELETE FROM nodes WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("deleting node: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing delete: %w", err)
	}
	return affected > 0, nil
}

// Children returns the direct children of a node, oldest first.
func (s *Store) Children(id, ownerID string) ([]node.Node, error) {
	rows, err := s.conn.Query(`
		SELECT `+nodeColumns+` FROM nodes
		WHERE parent_id = ? AND owner_id = ?
		ORDER BY created_at, id
	`, id, ownerID)
	if err != nil {
		return nil, err
	}
	return collectNodes(rows)
}

// RootNodes returns the owner's nodes with no parent, oldest first.
func (s *Store) RootNodes(ownerID string) ([]node.Node, error) {
	rows, err := s.conn.Query(`
		SELECT `+nodeColumns+` FROM nodes
		WHERE owner_id = ? AND parent_id IS NULL
		ORDER BY created_at, id
	`, ownerID)
	if err != nil {
		return nil, err
	}
	return collectNodes(rows)
}

// AllForOwner returns every node belonging to the owner, oldest first.
func (s *Store) AllForOwner(ownerID string) ([]node.Node, error) {
	rows, err := s.conn.Query(`
		SELECT `+nodeColumns+` FROM nodes WHERE owner_id = ? ORDER BY created_at, id
	`, ownerID)
	if err != nil {
		return nil, err
	}
	return collectNodes(rows)
}

// NodesByType returns the owner's nodes of one type, optionally
// filtered to direct children of parentID.
func (s *Store) NodesByType(t node.Type, ownerID string, parentID *string) ([]node.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE owner_id = ? AND type = ?`
	args := []any{ownerID, t}
	if parentID != nil {
		query += ` AND parent_id = ?`
		args = append(args, *parentID)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	return collectNodes(rows)
}
