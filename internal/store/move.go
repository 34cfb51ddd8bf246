package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"careertrail/canopy/internal/node"
	"careertrail/canopy/internal/rules"
)

// Move reassigns a node's parent. Edge-type compatibility and
// acyclicity are re-validated against the proposed parent inside one
// immediate transaction, so a concurrent move cannot slip a cycle in
// between the check and the write; on any violation the state is left
// unchanged. A nil newParentID detaches the node into a root, which is
// always allowed. Returns nil if the node does not exist for the
// owner.
func (s *Store) Move(nodeID string, newParentID *string, ownerID string) (*node.Node, error) {
	tx, err := s.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning move: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+nodeColumns+` FROM nodes WHERE id = ? AND owner_id = ?`, nodeID, ownerID)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if newParentID != nil {
		row := tx.QueryRow(`SELECT `+nodeColumns+` FROM nodes WHERE id = ? AND owner_id = ?`, *newParentID, ownerID)
		parent, err := scanNode(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, node.ErrParentNotFound
		}
		if err != nil {
			return nil, err
		}

		// Cycle check first, then edge rule: a move that is wrong both
		// ways reports the cycle.
		if nodeID == *newParentID {
			return nil, &node.CycleError{NodeID: nodeID, ParentID: *newParentID, Path: []string{nodeID, nodeID}}
		}
		chain, err := ancestorsOn(tx, *newParentID, ownerID)
		if err != nil {
			return nil, fmt.Errorf("walking ancestor chain: %w", err)
		}
		for i, a := range chain {
			if a.ID == nodeID {
				path := make([]string, 0, i+2)
				path = append(path, nodeID)
				for j := i - 1; j >= 0; j-- {
					path = append(path, chain[j].ID)
				}
				path = append(path, nodeID)
				return nil, &node.CycleError{NodeID: nodeID, ParentID: *newParentID, Path: path}
			}
		}

		if err := rules.ValidateEdge(parent.Type, n.Type); err != nil {
			return nil, err
		}
	}

	n.ParentID = newParentID
	n.UpdatedAt = time.Now().UnixMilli()
	if _, err := tx.Exec(`
		UPDATE nodes SET parent_id = ?, updated_at = ? WHERE id = ? AND owner_id = ?
	`, newParentID, n.UpdatedAt, nodeID, ownerID); err != nil {
		return nil, fmt.Errorf("updating parent: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing move: %w", err)
	}
	return &n, nil
}
