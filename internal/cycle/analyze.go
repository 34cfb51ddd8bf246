package cycle

import "fmt"

// Severity buckets for findings and suggestions.
const (
	SeverityMajor = "major"
	SeverityMinor = "minor"

	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// majorCycleSize is the member count above which a cycle is major.
const majorCycleSize = 5

// softDepthLimit is the forest depth above which flattening is
// suggested (advisory only).
const softDepthLimit = 10

// Finding is one detected cycle: its member nodes in walk order.
type Finding struct {
	Nodes    []string `json:"nodes"`
	Severity string   `json:"severity"`
}

// Orphan is a node whose recorded parent does not exist for the owner.
type Orphan struct {
	NodeID          string `json:"node_id"`
	MissingParentID string `json:"missing_parent_id"`
}

// Report is the whole-forest analysis result, independent of any
// single proposed edit. Anomalies are findings, never errors.
type Report struct {
	HasCycles     bool      `json:"has_cycles"`
	Cycles        []Finding `json:"cycles"`
	OrphanedNodes []Orphan  `json:"orphaned_nodes"`
	MaxDepth      int       `json:"max_depth"`
	TotalNodes    int       `json:"total_nodes"`
	Components    int       `json:"components"`
}

// AnalyzeForest inspects one owner's whole forest for cycles, orphans,
// and depth. It catches hierarchies that became inconsistent through
// means other than this engine, such as direct data edits.
func (g *Guard) AnalyzeForest(ownerID string) (*Report, error) {
	nodes, err := g.src.AllForOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("loading forest: %w", err)
	}
	return analyzeSnapshot(NewSnapshot(nodes)), nil
}

// Walk colors for the parent-pointer DFS.
const (
	colorWhite = 0 // unvisited
	colorGray  = 1 // on the active walk
	colorBlack = 2 // finished
)

func analyzeSnapshot(snap *ForestSnapshot) *Report {
	report := &Report{
		Cycles:        []Finding{},
		OrphanedNodes: []Orphan{},
		TotalNodes:    len(snap.Order),
	}

	// Orphans: parent ids referenced but absent for this owner.
	for _, id := range snap.Order {
		n := snap.Nodes[id]
		if n.ParentID == nil {
			continue
		}
		if _, ok := snap.Nodes[*n.ParentID]; !ok {
			report.OrphanedNodes = append(report.OrphanedNodes, Orphan{
				NodeID:          id,
				MissingParentID: *n.ParentID,
			})
		}
	}

	// Cycles: walk parent pointers from every node; re-encountering a
	// node still on the active walk closes a cycle. Each node has at
	// most one parent, so every cycle is found exactly once.
	color := make(map[string]int, len(snap.Nodes))
	for _, start := range snap.Order {
		if color[start] != colorWhite {
			continue
		}
		var walk []string
		current := start
		for len(walk) < maxWalkDepth {
			if color[current] == colorBlack {
				break
			}
			if color[current] == colorGray {
				// Close the cycle: members from first occurrence on.
				for i, id := range walk {
					if id == current {
						members := append([]string(nil), walk[i:]...)
						severity := SeverityMinor
						if len(members) > majorCycleSize {
							severity = SeverityMajor
						}
						report.Cycles = append(report.Cycles, Finding{
							Nodes:    members,
							Severity: severity,
						})
						break
					}
				}
				break
			}
			color[current] = colorGray
			walk = append(walk, current)

			n := snap.Nodes[current]
			if n.ParentID == nil {
				break
			}
			next, ok := snap.Nodes[*n.ParentID]
			if !ok {
				break // dangling parent, already reported as orphan
			}
			current = next.ID
		}
		for _, id := range walk {
			color[id] = colorBlack
		}
	}
	report.HasCycles = len(report.Cycles) > 0

	// Max depth: from every root down to its deepest leaf.
	for _, root := range snap.Roots() {
		if d := subtreeDepth(snap, root); d > report.MaxDepth {
			report.MaxDepth = d
		}
	}

	// Component count over the undirected parent graph. With a healthy
	// forest this equals the number of trees.
	uf := newUnionFind(snap.Order)
	for _, id := range snap.Order {
		n := snap.Nodes[id]
		if n.ParentID == nil {
			continue
		}
		if _, ok := snap.Nodes[*n.ParentID]; ok {
			uf.union(id, *n.ParentID)
		}
	}
	report.Components = uf.componentCount()

	return report
}

// subtreeDepth returns the number of edges from id down to its deepest
// descendant, with a visited set so corrupted data cannot recurse
// forever.
func subtreeDepth(snap *ForestSnapshot, id string) int {
	visited := make(map[string]bool)
	var walk func(id string, depth int) int
	walk = func(id string, depth int) int {
		if visited[id] || depth >= maxWalkDepth {
			return depth
		}
		visited[id] = true
		deepest := depth
		for _, child := range snap.Children[id] {
			if d := walk(child, depth+1); d > deepest {
				deepest = d
			}
		}
		return deepest
	}
	return walk(id, 0)
}
