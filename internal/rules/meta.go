package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"careertrail/canopy/internal/node"
)

// metaValidate is the shared validator instance for metadata shapes.
// Initialized in init() with custom validators.
var metaValidate *validator.Validate

func init() {
	metaValidate = validator.New(validator.WithRequiredStructEnabled())

	// Report violations under the meta map's JSON key, not the Go
	// field name.
	metaValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = metaValidate.RegisterValidation("nodedate", func(fl validator.FieldLevel) bool {
		_, ok := ParseDate(fl.Field().String())
		return ok
	})
}

// ValidateMeta checks a meta map against the shape for the given node
// type, reporting every violated field rather than stopping at the
// first. Keys outside the declared shape are allowed (meta is open).
func ValidateMeta(t node.Type, meta map[string]any) error {
	shape, err := node.DecodeMeta(t, meta)
	if err != nil {
		var verrs node.ValidationErrors
		if errors.As(err, &verrs) {
			return verrs
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return node.ValidationErrors{{
				Field:   typeErr.Field,
				Message: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
			}}
		}
		return node.ValidationErrors{{Message: err.Error()}}
	}

	var out node.ValidationErrors
	if err := metaValidate.Struct(shape); err != nil {
		var ferrs validator.ValidationErrors
		if !errors.As(err, &ferrs) {
			return node.ValidationErrors{{Message: err.Error()}}
		}
		for _, fe := range ferrs {
			out = append(out, node.ValidationError{
				Field:   fe.Field(),
				Message: violationMessage(fe),
			})
		}
	}

	// Date-range coherence is cross-field and stays out of struct tags.
	if start, end, ok := dateRangeOf(shape); ok {
		if err := ValidateDateRange(start, end); err != nil {
			var verr node.ValidationError
			if errors.As(err, &verr) {
				out = append(out, verr)
			}
		}
	}

	if len(out) > 0 {
		return out
	}
	return nil
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field is missing or empty"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "url":
		return "must be a valid URL"
	case "nodedate":
		return "invalid date format, want YYYY-MM-DD or YYYY-MM"
	default:
		return "violates rule " + fe.Tag()
	}
}

// dateRangeOf extracts (startDate, endDate) from shapes that carry
// them; ok is false for shapes without a date range.
func dateRangeOf(shape any) (start, end string, ok bool) {
	switch m := shape.(type) {
	case *node.CareerTransitionMeta:
		return m.StartDate, m.EndDate, true
	case *node.JobMeta:
		return m.StartDate, m.EndDate, true
	case *node.EducationMeta:
		return m.StartDate, m.EndDate, true
	}
	return "", "", false
}

// MetaField describes one declared field of a type's meta shape, for
// the schema listing exposed upward.
type MetaField struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Required bool   `json:"required"`
}

// MetaFields lists the declared meta fields for a node type.
func MetaFields(t node.Type) []MetaField {
	shape := node.MetaShape(t)
	if shape == nil {
		return nil
	}
	st := reflect.TypeOf(shape).Elem()
	fields := make([]MetaField, 0, st.NumField())
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		kind := f.Type.Kind().String()
		if f.Type.Kind() == reflect.Slice {
			kind = "[]" + f.Type.Elem().Kind().String()
		}
		fields = append(fields, MetaField{
			Name:     name,
			Kind:     kind,
			Required: strings.Contains(f.Tag.Get("validate"), "required"),
		})
	}
	return fields
}
