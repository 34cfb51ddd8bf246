package node

import "encoding/json"

// Metadata shapes form a tagged union keyed by Type: one concrete
// struct per variant, validated by struct tag. Meta is an open map, so
// keys beyond the declared fields pass through untouched; only the
// declared fields are constrained.

// CareerTransitionMeta describes a careerTransition node.
type CareerTransitionMeta struct {
	Title     string `json:"title" validate:"required,min=2,max=255"`
	Reason    string `json:"reason,omitempty" validate:"omitempty,max=2000"`
	StartDate string `json:"startDate,omitempty" validate:"omitempty,nodedate"`
	EndDate   string `json:"endDate,omitempty" validate:"omitempty,nodedate|eq=present"`
}

// JobMeta describes a job node.
type JobMeta struct {
	Company     string `json:"company" validate:"required,min=1,max=255"`
	Position    string `json:"position" validate:"required,min=1,max=255"`
	StartDate   string `json:"startDate,omitempty" validate:"omitempty,nodedate"`
	EndDate     string `json:"endDate,omitempty" validate:"omitempty,nodedate|eq=present"`
	Description string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// EducationMeta describes an education node.
type EducationMeta struct {
	Institution string `json:"institution" validate:"required,min=1,max=255"`
	Degree      string `json:"degree,omitempty" validate:"omitempty,max=255"`
	Field       string `json:"field,omitempty" validate:"omitempty,max=255"`
	StartDate   string `json:"startDate,omitempty" validate:"omitempty,nodedate"`
	EndDate     string `json:"endDate,omitempty" validate:"omitempty,nodedate|eq=present"`
}

// ProjectMeta describes a project node.
type ProjectMeta struct {
	Name         string   `json:"name" validate:"required,min=1,max=255"`
	Technologies []string `json:"technologies,omitempty" validate:"omitempty,dive,min=1,max=100"`
	Status       string   `json:"status,omitempty" validate:"omitempty,oneof=planned active completed onHold"`
	URL          string   `json:"url,omitempty" validate:"omitempty,url"`
}

// EventMeta describes an event node.
type EventMeta struct {
	Title    string `json:"title" validate:"required,min=2,max=255"`
	Date     string `json:"date,omitempty" validate:"omitempty,nodedate"`
	Location string `json:"location,omitempty" validate:"omitempty,max=255"`
}

// ActionMeta describes an action node.
type ActionMeta struct {
	Title       string `json:"title" validate:"required,min=2,max=255"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=pending done"`
	CompletedAt string `json:"completedAt,omitempty" validate:"omitempty,nodedate"`
}

// MetaShape returns a pointer to a zero value of the meta struct for
// the given type, or nil for an unknown type.
func MetaShape(t Type) any {
	switch t {
	case TypeCareerTransition:
		return &CareerTransitionMeta{}
	case TypeJob:
		return &JobMeta{}
	case TypeEducation:
		return &EducationMeta{}
	case TypeProject:
		return &ProjectMeta{}
	case TypeEvent:
		return &EventMeta{}
	case TypeAction:
		return &ActionMeta{}
	}
	return nil
}

// DecodeMeta fills the typed shape for t from an open meta map.
// Unknown keys are ignored here and preserved in the stored map; a key
// whose value has the wrong JSON kind is a decode failure.
func DecodeMeta(t Type, meta map[string]any) (any, error) {
	shape := MetaShape(t)
	if shape == nil {
		return nil, ValidationErrors{{Field: "type", Message: "unknown node type " + string(t)}}
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, shape); err != nil {
		return nil, err
	}
	return shape, nil
}
