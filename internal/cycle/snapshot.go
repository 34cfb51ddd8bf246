// Package cycle is the hierarchy safety engine: single-edge cycle
// checks gating every move, whole-forest cycle/orphan/depth analysis,
// and repair suggestions for forests corrupted outside this engine.
package cycle

import (
	"sort"

	"careertrail/canopy/internal/node"
)

// maxWalkDepth bounds read-side walks over possibly corrupted data.
const maxWalkDepth = 100

// ForestSnapshot holds one owner's nodes with a precomputed children
// index. Relationships are id lookups, never live pointers.
type ForestSnapshot struct {
	Nodes    map[string]*node.Node
	Children map[string][]string // parent id -> child ids, oldest first
	Order    []string            // all ids, created_at then id order
}

// NewSnapshot builds a ForestSnapshot from a flat node list. The input
// order (oldest first) is preserved in Order and the children index.
func NewSnapshot(nodes []node.Node) *ForestSnapshot {
	snap := &ForestSnapshot{
		Nodes:    make(map[string]*node.Node, len(nodes)),
		Children: make(map[string][]string),
		Order:    make([]string, 0, len(nodes)),
	}
	for i := range nodes {
		n := &nodes[i]
		snap.Nodes[n.ID] = n
		snap.Order = append(snap.Order, n.ID)
	}
	for _, id := range snap.Order {
		n := snap.Nodes[id]
		if n.ParentID != nil {
			snap.Children[*n.ParentID] = append(snap.Children[*n.ParentID], id)
		}
	}
	return snap
}

// Roots returns ids with no parent recorded. Orphans (dangling
// parents) are not roots here; analysis reports them separately.
func (s *ForestSnapshot) Roots() []string {
	var roots []string
	for _, id := range s.Order {
		if s.Nodes[id].ParentID == nil {
			roots = append(roots, id)
		}
	}
	return roots
}

// NodeIDs returns a sorted list of all node IDs (for deterministic
// output).
func (s *ForestSnapshot) NodeIDs() []string {
	ids := make([]string, 0, len(s.Nodes))
	for id := range s.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
