package cycle

import (
	"fmt"
	"log/slog"

	"careertrail/canopy/internal/node"
)

// Source is the slice of the node store the guard reads from.
type Source interface {
	Ancestors(id, ownerID string) ([]node.Node, error)
	AllForOwner(ownerID string) ([]node.Node, error)
}

// Guard runs cycle-safety checks against data fetched from a Source.
// It holds no state of its own.
type Guard struct {
	src Source
	log *slog.Logger
}

// NewGuard creates a Guard. A nil logger falls back to slog.Default.
func NewGuard(src Source, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{src: src, log: logger}
}

// WouldCreateCycle reports whether attaching nodeID under
// proposedParentID would make nodeID its own ancestor. Any storage
// failure counts as true: the guard fails closed, blocking the move
// rather than risking hierarchy corruption.
func (g *Guard) WouldCreateCycle(nodeID, proposedParentID, ownerID string) bool {
	return g.DetectCycleForMove(nodeID, proposedParentID, ownerID).WouldCreateCycle
}

// MoveCheck is the result of a single-edge cycle check, with the
// offending path when one was reconstructed.
type MoveCheck struct {
	WouldCreateCycle bool     `json:"would_create_cycle"`
	CyclePath        []string `json:"cycle_path,omitempty"`
	Reason           string   `json:"reason,omitempty"`
}

// DetectCycleForMove runs the single-edge check and reconstructs the
// offending path for diagnostics.
func (g *Guard) DetectCycleForMove(nodeID, proposedParentID, ownerID string) MoveCheck {
	if nodeID == proposedParentID {
		return MoveCheck{
			WouldCreateCycle: true,
			CyclePath:        []string{nodeID, nodeID},
			Reason:           "node cannot be its own parent",
		}
	}

	chain, err := g.src.Ancestors(proposedParentID, ownerID)
	if err != nil {
		// Fail closed: an unreadable ancestor chain blocks the move.
		g.log.Error("ancestor chain fetch failed, blocking move",
			"node", nodeID, "proposed_parent", proposedParentID, "error", err)
		return MoveCheck{
			WouldCreateCycle: true,
			Reason:           "could not verify ancestor chain: " + err.Error(),
		}
	}

	for i, a := range chain {
		if a.ID != nodeID {
			continue
		}
		// nodeID -> ... -> proposedParent -> nodeID
		path := make([]string, 0, i+2)
		path = append(path, nodeID)
		for j := i - 1; j >= 0; j-- {
			path = append(path, chain[j].ID)
		}
		path = append(path, nodeID)
		return MoveCheck{
			WouldCreateCycle: true,
			CyclePath:        path,
			Reason: fmt.Sprintf("%s is an ancestor of proposed parent %s",
				nodeID, proposedParentID),
		}
	}
	return MoveCheck{}
}

// ParentChange is one proposed parent reassignment in a batch.
type ParentChange struct {
	NodeID      string  `json:"node_id"`
	NewParentID *string `json:"new_parent_id"`
}

// largeBatchThreshold is where a batch draws a warning without being
// invalidated.
const largeBatchThreshold = 50

// BatchReport is the outcome of a batch pre-check.
type BatchReport struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// ValidateChanges pre-checks a proposed set of parent reassignments:
// the single-edge cycle check per change, duplicate node ids in the
// batch invalidate it, and a large batch only warns.
func (g *Guard) ValidateChanges(changes []ParentChange, ownerID string) *BatchReport {
	report := &BatchReport{IsValid: true}

	if len(changes) > largeBatchThreshold {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("large batch: %d changes, consider splitting", len(changes)))
	}

	seen := make(map[string]bool, len(changes))
	for _, c := range changes {
		if seen[c.NodeID] {
			report.IsValid = false
			report.Errors = append(report.Errors,
				fmt.Sprintf("duplicate node %s in batch", c.NodeID))
			continue
		}
		seen[c.NodeID] = true

		if c.NewParentID == nil {
			continue // detaching to root is always safe
		}
		if check := g.DetectCycleForMove(c.NodeID, *c.NewParentID, ownerID); check.WouldCreateCycle {
			report.IsValid = false
			report.Errors = append(report.Errors,
				fmt.Sprintf("moving %s under %s: %s", c.NodeID, *c.NewParentID, check.Reason))
		}
	}
	return report
}
