// Package hierarchy composes the rules, cycle, and store layers into
// atomic-intent operations with one unified error taxonomy. External
// callers invoke this package only.
package hierarchy

import (
	"errors"
	"log/slog"

	"careertrail/canopy/internal/cycle"
	"careertrail/canopy/internal/node"
	"careertrail/canopy/internal/rules"
	"careertrail/canopy/internal/store"
)

// Service orchestrates hierarchy operations. Stateless between calls;
// every call re-reads from the store.
type Service struct {
	store *store.Store
	guard *cycle.Guard
	log   *slog.Logger
}

// New wires a Service over an open store. A nil logger falls back to
// slog.Default.
func New(st *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store: st,
		guard: cycle.NewGuard(st, logger),
		log:   logger,
	}
}

// Guard exposes the cycle guard for diagnostic callers.
func (s *Service) Guard() *cycle.Guard {
	return s.guard
}

// CreateNode validates metadata and the parent edge, then persists a
// new node. Validation runs fully before any write.
func (s *Service) CreateNode(t node.Type, parentID *string, meta map[string]any, ownerID string) (*node.Node, error) {
	if err := rules.ValidateMeta(t, meta); err != nil {
		return nil, err
	}
	if parentID != nil {
		parent, err := s.store.GetByID(*parentID, ownerID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, node.ErrParentNotFound
		}
		if err := rules.ValidateEdge(parent.Type, t); err != nil {
			return nil, err
		}
	}
	created, err := s.store.Create(t, parentID, meta, ownerID)
	if err != nil {
		return nil, err
	}
	s.log.Debug("node created", "id", created.ID, "type", created.Type, "owner", ownerID)
	return created, nil
}

// UpdateNode applies a metadata patch, re-validating the patched
// metadata against the node's own type before persisting.
func (s *Service) UpdateNode(id string, metaPatch map[string]any, ownerID string) (*node.Node, error) {
	existing, err := s.store.GetByID(id, ownerID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, node.ErrNotFound
	}

	merged := store.MergeMeta(existing.Meta, metaPatch)
	if err := rules.ValidateMeta(existing.Type, merged); err != nil {
		return nil, err
	}

	updated, err := s.store.Update(id, metaPatch, ownerID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, node.ErrNotFound
	}
	return updated, nil
}

// MoveNode reassigns a node's parent. With a parent set, the node and
// proposed parent must both exist, the move must not close a cycle,
// and the edge must be type-compatible. Detaching to root is always
// allowed. The store re-runs both safety checks inside the move
// transaction, so a concurrent move cannot slip past this pre-check.
func (s *Service) MoveNode(id string, newParentID *string, ownerID string) (*node.Node, error) {
	n, err := s.store.GetByID(id, ownerID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, node.ErrNotFound
	}

	if newParentID != nil {
		parent, err := s.store.GetByID(*newParentID, ownerID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, node.ErrNotFound
		}
		if check := s.guard.DetectCycleForMove(id, *newParentID, ownerID); check.WouldCreateCycle {
			s.log.Warn("move rejected: cycle", "id", id, "parent", *newParentID, "reason", check.Reason)
			return nil, &node.CycleError{NodeID: id, ParentID: *newParentID, Path: check.CyclePath}
		}
		if err := rules.ValidateEdge(parent.Type, n.Type); err != nil {
			return nil, err
		}
	}

	moved, err := s.store.Move(id, newParentID, ownerID)
	if errors.Is(err, node.ErrParentNotFound) {
		// Parent vanished between pre-check and transaction.
		return nil, node.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if moved == nil {
		return nil, node.ErrNotFound
	}
	return moved, nil
}

// DeleteNode removes the node, detaching (not cascading into) its
// direct children. Reports whether a node was deleted.
func (s *Service) DeleteNode(id, ownerID string) (bool, error) {
	deleted, err := s.store.Delete(id, ownerID)
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.Debug("node deleted", "id", id, "owner", ownerID)
	}
	return deleted, nil
}

// GetNode fetches one node, owner-scoped.
func (s *Service) GetNode(id, ownerID string) (*node.Node, error) {
	n, err := s.store.GetByID(id, ownerID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, node.ErrNotFound
	}
	return n, nil
}

// ListNodes returns the owner's nodes, optionally filtered by type and
// direct parent.
func (s *Service) ListNodes(ownerID string, t *node.Type, parentID *string) ([]node.Node, error) {
	if t != nil {
		return s.store.NodesByType(*t, ownerID, parentID)
	}
	return s.store.AllForOwner(ownerID)
}

// Subtree returns a node and its descendants down to maxDepth levels.
func (s *Service) Subtree(id, ownerID string, maxDepth int) ([]node.Node, error) {
	return s.store.Subtree(id, ownerID, maxDepth)
}

// Ancestors returns the chain from a node up to its root.
func (s *Service) Ancestors(id, ownerID string) ([]node.Node, error) {
	return s.store.Ancestors(id, ownerID)
}

// FullTree returns the owner's forest with nested children.
func (s *Service) FullTree(ownerID string) ([]*node.TreeNode, error) {
	return s.store.FullTree(ownerID)
}

// Stats returns the owner's forest aggregate.
func (s *Service) Stats(ownerID string) (*node.Stats, error) {
	return s.store.Stats(ownerID)
}

// Diagnosis bundles forest analysis with repair suggestions.
type Diagnosis struct {
	Report      *cycle.Report      `json:"report"`
	Suggestions []cycle.Suggestion `json:"suggestions"`
}

// ValidateHierarchy analyzes the owner's whole forest and attaches
// recovery suggestions. Anomalies are findings, never errors.
func (s *Service) ValidateHierarchy(ownerID string) (*Diagnosis, error) {
	report, err := s.guard.AnalyzeForest(ownerID)
	if err != nil {
		return nil, err
	}
	return &Diagnosis{Report: report, Suggestions: cycle.SuggestionsFor(report)}, nil
}
