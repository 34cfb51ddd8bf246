package cycle

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"careertrail/canopy/internal/node"
)

func strPtr(s string) *string { return &s }

// quickSnapshot builds a snapshot from id -> parent id pairs; "" means
// no parent.
func quickSnapshot(parents map[string]string, order []string) *ForestSnapshot {
	now := time.Now().UnixMilli()
	var nodes []node.Node
	for i, id := range order {
		var parentID *string
		if p := parents[id]; p != "" {
			parentID = strPtr(p)
		}
		nodes = append(nodes, node.Node{
			ID:        id,
			Type:      node.TypeProject,
			ParentID:  parentID,
			Meta:      map[string]any{},
			OwnerID:   "owner-1",
			CreatedAt: now + int64(i),
			UpdatedAt: now + int64(i),
		})
	}
	return NewSnapshot(nodes)
}

// --- Forest analysis ---

func TestAnalyze_EmptyForest(t *testing.T) {
	r := analyzeSnapshot(NewSnapshot(nil))
	if r.HasCycles || r.TotalNodes != 0 || r.MaxDepth != 0 {
		t.Errorf("empty forest should be clean, got %+v", r)
	}
	if len(r.OrphanedNodes) != 0 {
		t.Errorf("expected no orphans, got %d", len(r.OrphanedNodes))
	}
}

func TestAnalyze_IndependentRoots(t *testing.T) {
	// 1000 parentless nodes: no cycles, no orphans, depth 0
	parents := map[string]string{}
	var order []string
	for i := 0; i < 1000; i++ {
		order = append(order, fmt.Sprintf("n%d", i))
	}
	r := analyzeSnapshot(quickSnapshot(parents, order))
	if r.HasCycles {
		t.Error("independent roots should have no cycles")
	}
	if r.MaxDepth != 0 {
		t.Errorf("expected depth 0, got %d", r.MaxDepth)
	}
	if len(r.OrphanedNodes) != 0 {
		t.Errorf("expected no orphans, got %d", len(r.OrphanedNodes))
	}
	if r.Components != 1000 {
		t.Errorf("expected 1000 components, got %d", r.Components)
	}
}

func TestAnalyze_ThreeNodeCycle(t *testing.T) {
	// A -> B -> C -> A, inserted as if by direct data manipulation
	snap := quickSnapshot(map[string]string{"A": "B", "B": "C", "C": "A"}, []string{"A", "B", "C"})
	r := analyzeSnapshot(snap)

	if !r.HasCycles || len(r.Cycles) != 1 {
		t.Fatalf("expected exactly one cycle, got %d", len(r.Cycles))
	}
	c := r.Cycles[0]
	if c.Severity != SeverityMinor {
		t.Errorf("3-node cycle should be minor, got %s", c.Severity)
	}
	members := map[string]bool{}
	for _, id := range c.Nodes {
		members[id] = true
	}
	if !members["A"] || !members["B"] || !members["C"] || len(members) != 3 {
		t.Errorf("cycle members should be {A,B,C}, got %v", c.Nodes)
	}

	suggestions := SuggestionsFor(r)
	found := false
	for _, s := range suggestions {
		if s.Action == ActionDetachNode && members[s.NodeID] {
			found = true
			if s.Severity != SeverityMedium {
				t.Errorf("minor cycle repair should be medium, got %s", s.Severity)
			}
		}
	}
	if !found {
		t.Error("expected a detach suggestion inside the cycle")
	}
}

func TestAnalyze_MajorCycle(t *testing.T) {
	// 6-node cycle crosses the major threshold
	parents := map[string]string{}
	var order []string
	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("n%d", i)
		parents[id] = fmt.Sprintf("n%d", (i+1)%6)
		order = append(order, id)
	}
	r := analyzeSnapshot(quickSnapshot(parents, order))
	if len(r.Cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(r.Cycles))
	}
	if r.Cycles[0].Severity != SeverityMajor {
		t.Errorf("6-node cycle should be major, got %s", r.Cycles[0].Severity)
	}
	suggestions := SuggestionsFor(r)
	if len(suggestions) == 0 || suggestions[0].Severity != SeverityHigh {
		t.Errorf("major cycle repair should be high severity, got %+v", suggestions)
	}
}

func TestAnalyze_SelfParent(t *testing.T) {
	r := analyzeSnapshot(quickSnapshot(map[string]string{"A": "A"}, []string{"A"}))
	if len(r.Cycles) != 1 || len(r.Cycles[0].Nodes) != 1 {
		t.Fatalf("self-parent should be a 1-node cycle, got %+v", r.Cycles)
	}
}

func TestAnalyze_Orphans(t *testing.T) {
	snap := quickSnapshot(map[string]string{"A": "", "B": "ghost"}, []string{"A", "B"})
	r := analyzeSnapshot(snap)
	if r.HasCycles {
		t.Error("orphan is not a cycle")
	}
	if len(r.OrphanedNodes) != 1 || r.OrphanedNodes[0].NodeID != "B" || r.OrphanedNodes[0].MissingParentID != "ghost" {
		t.Errorf("expected orphan B->ghost, got %+v", r.OrphanedNodes)
	}
	suggestions := SuggestionsFor(r)
	if len(suggestions) != 1 || suggestions[0].Action != ActionClearParent || suggestions[0].Severity != SeverityMedium {
		t.Errorf("expected medium clearParent suggestion, got %+v", suggestions)
	}
}

func TestAnalyze_MaxDepthAndFlattenSuggestion(t *testing.T) {
	// Chain of 12: depth 11 exceeds the soft limit of 10
	parents := map[string]string{}
	var order []string
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("n%d", i)
		if i > 0 {
			parents[id] = fmt.Sprintf("n%d", i-1)
		}
		order = append(order, id)
	}
	r := analyzeSnapshot(quickSnapshot(parents, order))
	if r.MaxDepth != 11 {
		t.Errorf("expected depth 11, got %d", r.MaxDepth)
	}
	if r.Components != 1 {
		t.Errorf("expected 1 component, got %d", r.Components)
	}
	suggestions := SuggestionsFor(r)
	if len(suggestions) != 1 || suggestions[0].Action != ActionFlatten || suggestions[0].Severity != SeverityLow {
		t.Errorf("expected low flatten suggestion, got %+v", suggestions)
	}
}

func TestAnalyze_TwoTrees(t *testing.T) {
	snap := quickSnapshot(
		map[string]string{"A": "", "B": "A", "C": "A", "X": "", "Y": "X"},
		[]string{"A", "B", "C", "X", "Y"},
	)
	r := analyzeSnapshot(snap)
	if r.Components != 2 {
		t.Errorf("expected 2 components, got %d", r.Components)
	}
	if r.MaxDepth != 1 {
		t.Errorf("expected depth 1, got %d", r.MaxDepth)
	}
}

// --- Guard single-edge checks ---

// stubSource serves canned ancestor chains, or fails.
type stubSource struct {
	chains map[string][]node.Node
	err    error
}

func (s *stubSource) Ancestors(id, ownerID string) ([]node.Node, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.chains[id], nil
}

func (s *stubSource) AllForOwner(ownerID string) ([]node.Node, error) {
	if s.err != nil {
		return nil, s.err
	}
	return nil, nil
}

func chainOf(ids ...string) []node.Node {
	var chain []node.Node
	for _, id := range ids {
		chain = append(chain, node.Node{ID: id, OwnerID: "owner-1"})
	}
	return chain
}

func TestGuard_SelfParent(t *testing.T) {
	g := NewGuard(&stubSource{}, nil)
	check := g.DetectCycleForMove("A", "A", "owner-1")
	if !check.WouldCreateCycle {
		t.Error("self-parent must be a cycle")
	}
}

func TestGuard_AncestorCycle(t *testing.T) {
	// P1's ancestors: P1 -> J1 -> CT1; moving CT1 under P1 closes a loop
	src := &stubSource{chains: map[string][]node.Node{
		"P1": chainOf("P1", "J1", "CT1"),
	}}
	g := NewGuard(src, nil)

	check := g.DetectCycleForMove("CT1", "P1", "owner-1")
	if !check.WouldCreateCycle {
		t.Fatal("expected cycle")
	}
	hasCT1, hasP1 := false, false
	for _, id := range check.CyclePath {
		if id == "CT1" {
			hasCT1 = true
		}
		if id == "P1" {
			hasP1 = true
		}
	}
	if !hasCT1 || !hasP1 {
		t.Errorf("cycle path should include CT1 and P1, got %v", check.CyclePath)
	}

	if g.WouldCreateCycle("X", "P1", "owner-1") {
		t.Error("X is not on P1's ancestor chain")
	}
}

func TestGuard_FailClosed(t *testing.T) {
	g := NewGuard(&stubSource{err: errors.New("disk gone")}, nil)
	if !g.WouldCreateCycle("A", "B", "owner-1") {
		t.Error("storage failure must block the move")
	}
}

func TestValidateChanges(t *testing.T) {
	src := &stubSource{chains: map[string][]node.Node{
		"P1": chainOf("P1", "CT1"),
	}}
	g := NewGuard(src, nil)

	report := g.ValidateChanges([]ParentChange{
		{NodeID: "A", NewParentID: strPtr("P1")},
		{NodeID: "A", NewParentID: nil},
	}, "owner-1")
	if report.IsValid {
		t.Error("duplicate node ids must invalidate the batch")
	}

	report = g.ValidateChanges([]ParentChange{
		{NodeID: "CT1", NewParentID: strPtr("P1")},
	}, "owner-1")
	if report.IsValid {
		t.Error("cycle-closing change must invalidate the batch")
	}

	var big []ParentChange
	for i := 0; i < largeBatchThreshold+1; i++ {
		big = append(big, ParentChange{NodeID: fmt.Sprintf("n%d", i), NewParentID: nil})
	}
	report = g.ValidateChanges(big, "owner-1")
	if !report.IsValid {
		t.Error("large batch of detaches is valid")
	}
	if len(report.Warnings) == 0 {
		t.Error("large batch should warn")
	}
}

func TestUnionFind(t *testing.T) {
	uf := newUnionFind([]string{"a", "b", "c", "d"})
	if uf.componentCount() != 4 {
		t.Fatalf("expected 4 singletons, got %d", uf.componentCount())
	}
	uf.union("a", "b")
	uf.union("c", "d")
	if uf.componentCount() != 2 {
		t.Errorf("expected 2 components, got %d", uf.componentCount())
	}
	uf.union("b", "c")
	if uf.componentCount() != 1 {
		t.Errorf("expected 1 component, got %d", uf.componentCount())
	}
	if uf.find("a") != uf.find("d") {
		t.Error("a and d should share a root")
	}
}
