// Package rules holds the stateless hierarchy rules: the fixed
// parent-type→child-type compatibility table, metadata shape
// validation, and label/date constraints. No I/O.
package rules

import (
	"strings"
	"time"
	"unicode/utf8"

	"careertrail/canopy/internal/node"
)

// allowedChildren is the fixed edge-compatibility table. project is
// terminal: it never has children.
var allowedChildren = map[node.Type][]node.Type{
	node.TypeCareerTransition: {node.TypeAction, node.TypeEvent, node.TypeProject},
	node.TypeJob:              {node.TypeProject, node.TypeEvent, node.TypeAction},
	node.TypeEducation:        {node.TypeProject, node.TypeEvent, node.TypeAction},
	node.TypeAction:           {node.TypeProject},
	node.TypeEvent:            {node.TypeProject, node.TypeAction},
	node.TypeProject:          {},
}

// AllowedChildren returns the child types permitted under a parent
// type, in table order. The slice is a copy.
func AllowedChildren(parent node.Type) []node.Type {
	allowed := allowedChildren[parent]
	out := make([]node.Type, len(allowed))
	copy(out, allowed)
	return out
}

// ValidateEdge checks the (parentType, childType) pair against the
// compatibility table.
func ValidateEdge(parentType, childType node.Type) error {
	for _, t := range allowedChildren[parentType] {
		if t == childType {
			return nil
		}
	}
	return &node.EdgeRuleError{
		ParentType: parentType,
		ChildType:  childType,
		Allowed:    AllowedChildren(parentType),
	}
}

// ValidateLabel checks free-text labels: non-empty after trimming,
// 2-255 characters, no leading or trailing whitespace.
func ValidateLabel(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed != text {
		return node.ValidationError{Field: "label", Message: "must not have leading or trailing whitespace"}
	}
	if utf8.RuneCountInString(trimmed) < 2 {
		return node.ValidationError{Field: "label", Message: "must be at least 2 characters"}
	}
	if utf8.RuneCountInString(trimmed) > 255 {
		return node.ValidationError{Field: "label", Message: "must be at most 255 characters"}
	}
	return nil
}

// OngoingSentinel is accepted as an end date meaning "still ongoing".
const OngoingSentinel = "present"

// dateLayouts accepted for node dates, tried in order.
var dateLayouts = []string{"2006-01-02", "2006-01"}

// ParseDate parses a node date in YYYY-MM-DD or YYYY-MM form.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ValidateDateRange checks that start <= end when both are present.
// Empty values are fine; OngoingSentinel is accepted as end.
func ValidateDateRange(start, end string) error {
	var startT, endT time.Time
	if start != "" {
		t, ok := ParseDate(start)
		if !ok {
			return node.ValidationError{Field: "startDate", Message: "invalid date format, want YYYY-MM-DD or YYYY-MM"}
		}
		startT = t
	}
	if end == "" || end == OngoingSentinel {
		return nil
	}
	t, ok := ParseDate(end)
	if !ok {
		return node.ValidationError{Field: "endDate", Message: "invalid date format, want YYYY-MM-DD, YYYY-MM, or \"present\""}
	}
	endT = t
	if start != "" && startT.After(endT) {
		return node.ValidationError{Field: "endDate", Message: "end date must not be before start date"}
	}
	return nil
}
