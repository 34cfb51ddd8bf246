// Package node defines the career-history node model shared by the
// store, rules, cycle, and hierarchy packages: the Node record, the
// closed set of node types, and the unified error taxonomy.
package node

// Type is one of the fixed career-history node types.
type Type string

const (
	TypeCareerTransition Type = "careerTransition"
	TypeJob              Type = "job"
	TypeEducation        Type = "education"
	TypeAction           Type = "action"
	TypeEvent            Type = "event"
	TypeProject          Type = "project"
)

// AllTypes lists every node type in stable order.
func AllTypes() []Type {
	return []Type{
		TypeCareerTransition, TypeJob, TypeEducation,
		TypeAction, TypeEvent, TypeProject,
	}
}

// ParseType validates a raw string against the closed type set.
func ParseType(s string) (Type, bool) {
	switch Type(s) {
	case TypeCareerTransition, TypeJob, TypeEducation,
		TypeAction, TypeEvent, TypeProject:
		return Type(s), true
	}
	return "", false
}

// Node represents a row in the nodes table.
type Node struct {
	ID        string         `json:"id"`
	Type      Type           `json:"type"`
	ParentID  *string        `json:"parent_id"`
	Meta      map[string]any `json:"meta"`
	OwnerID   string         `json:"owner_id"`
	CreatedAt int64          `json:"created_at"` // Unix millis
	UpdatedAt int64          `json:"updated_at"` // Unix millis
}

// TreeNode is a node with its children nested under it, as returned by
// full-forest assembly.
type TreeNode struct {
	Node
	Children []*TreeNode `json:"children"`
}

// Stats is the diagnostic aggregate over one owner's forest.
type Stats struct {
	TotalNodes  int          `json:"total_nodes"`
	NodesByType map[Type]int `json:"nodes_by_type"`
	MaxDepth    int          `json:"max_depth"`
	RootNodes   int          `json:"root_nodes"`
}
