package cycle

import "fmt"

// Suggestion actions.
const (
	ActionDetachNode  = "detachNode"
	ActionClearParent = "clearParent"
	ActionFlatten     = "flatten"
)

// Suggestion is one proposed repair for a detected anomaly. Flatten
// suggestions are advisory only; no automatic fix is offered.
type Suggestion struct {
	Action      string `json:"action"`
	NodeID      string `json:"node_id,omitempty"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// RecoverySuggestions analyzes the owner's forest and proposes repairs:
// detach the last node of each cycle, clear each dangling parent
// reference, and flag over-deep forests for flattening.
func (g *Guard) RecoverySuggestions(ownerID string) ([]Suggestion, error) {
	report, err := g.AnalyzeForest(ownerID)
	if err != nil {
		return nil, err
	}
	return SuggestionsFor(report), nil
}

// SuggestionsFor derives repair suggestions from an existing analysis
// report without re-reading the forest.
func SuggestionsFor(report *Report) []Suggestion {
	var suggestions []Suggestion

	for _, c := range report.Cycles {
		if len(c.Nodes) == 0 {
			continue
		}
		severity := SeverityMedium
		if c.Severity == SeverityMajor {
			severity = SeverityHigh
		}
		last := c.Nodes[len(c.Nodes)-1]
		suggestions = append(suggestions, Suggestion{
			Action:   ActionDetachNode,
			NodeID:   last,
			Severity: severity,
			Description: fmt.Sprintf("detach %s to break a %d-node cycle",
				last, len(c.Nodes)),
		})
	}

	for _, o := range report.OrphanedNodes {
		suggestions = append(suggestions, Suggestion{
			Action:   ActionClearParent,
			NodeID:   o.NodeID,
			Severity: SeverityMedium,
			Description: fmt.Sprintf("clear dangling parent reference %s on %s",
				o.MissingParentID, o.NodeID),
		})
	}

	if report.MaxDepth > softDepthLimit {
		suggestions = append(suggestions, Suggestion{
			Action:   ActionFlatten,
			Severity: SeverityLow,
			Description: fmt.Sprintf("forest depth %d exceeds %d, consider flattening deep branches",
				report.MaxDepth, softDepthLimit),
		})
	}

	return suggestions
}
