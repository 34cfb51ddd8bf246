package node

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for lookups that came up empty. Both are strictly
// owner-scoped: a node that exists under another owner is still "not
// found" for the caller.
var (
	ErrNotFound       = errors.New("node not found")
	ErrParentNotFound = errors.New("parent node not found")
)

// ValidationError reports one violated field of a node's metadata or
// one malformed scalar input (label, date).
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ValidationErrors aggregates every violation found in one input, not
// just the first.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// EdgeRuleError reports a (parent type, child type) pair missing from
// the compatibility table, naming the allowed alternatives.
type EdgeRuleError struct {
	ParentType Type   `json:"parent_type"`
	ChildType  Type   `json:"child_type"`
	Allowed    []Type `json:"allowed"`
}

func (e *EdgeRuleError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("%s cannot be child of %s: %s is terminal and allows no children",
			e.ChildType, e.ParentType, e.ParentType)
	}
	allowed := make([]string, len(e.Allowed))
	for i, t := range e.Allowed {
		allowed[i] = string(t)
	}
	return fmt.Sprintf("%s cannot be child of %s: allowed children are %s",
		e.ChildType, e.ParentType, strings.Join(allowed, ", "))
}

// CycleError reports a create/move that would make a node its own
// ancestor. Path is the offending ancestor chain when it could be
// reconstructed.
type CycleError struct {
	NodeID   string   `json:"node_id"`
	ParentID string   `json:"parent_id"`
	Path     []string `json:"path,omitempty"`
}

func (e *CycleError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("moving %s under %s would create a cycle: %s",
			e.NodeID, e.ParentID, strings.Join(e.Path, " -> "))
	}
	return fmt.Sprintf("moving %s under %s would create a cycle", e.NodeID, e.ParentID)
}
