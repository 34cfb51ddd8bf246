package rules

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careertrail/canopy/internal/node"
)

func TestValidateEdge(t *testing.T) {
	t.Run("allowed pairs", func(t *testing.T) {
		assert.NoError(t, ValidateEdge(node.TypeCareerTransition, node.TypeProject))
		assert.NoError(t, ValidateEdge(node.TypeJob, node.TypeAction))
		assert.NoError(t, ValidateEdge(node.TypeEducation, node.TypeEvent))
		assert.NoError(t, ValidateEdge(node.TypeAction, node.TypeProject))
		assert.NoError(t, ValidateEdge(node.TypeEvent, node.TypeAction))
	})

	t.Run("project is terminal", func(t *testing.T) {
		for _, child := range node.AllTypes() {
			err := ValidateEdge(node.TypeProject, child)
			require.Error(t, err, "project must not accept %s", child)

			var ruleErr *node.EdgeRuleError
			require.ErrorAs(t, err, &ruleErr)
			assert.Equal(t, node.TypeProject, ruleErr.ParentType)
			assert.Empty(t, ruleErr.Allowed)
		}
	})

	t.Run("action under project names both types and alternatives", func(t *testing.T) {
		err := ValidateEdge(node.TypeProject, node.TypeAction)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "action")
		assert.Contains(t, err.Error(), "project")

		err = ValidateEdge(node.TypeEvent, node.TypeJob)
		require.Error(t, err)
		var ruleErr *node.EdgeRuleError
		require.ErrorAs(t, err, &ruleErr)
		assert.ElementsMatch(t, []node.Type{node.TypeProject, node.TypeAction}, ruleErr.Allowed)
		assert.Contains(t, err.Error(), "project")
		assert.Contains(t, err.Error(), "action")
	})

	t.Run("nothing nests under job but the table says so", func(t *testing.T) {
		assert.Error(t, ValidateEdge(node.TypeJob, node.TypeCareerTransition))
		assert.Error(t, ValidateEdge(node.TypeJob, node.TypeEducation))
		assert.Error(t, ValidateEdge(node.TypeJob, node.TypeJob))
	})
}

func TestAllowedChildren(t *testing.T) {
	assert.Equal(t, []node.Type{node.TypeAction, node.TypeEvent, node.TypeProject},
		AllowedChildren(node.TypeCareerTransition))
	assert.Empty(t, AllowedChildren(node.TypeProject))

	// Returned slice is a copy
	children := AllowedChildren(node.TypeAction)
	children[0] = node.TypeJob
	assert.Equal(t, []node.Type{node.TypeProject}, AllowedChildren(node.TypeAction))
}

func TestValidateLabel(t *testing.T) {
	assert.NoError(t, ValidateLabel("Senior Engineer"))
	assert.NoError(t, ValidateLabel("Go"))

	assert.Error(t, ValidateLabel(""))
	assert.Error(t, ValidateLabel("x"))
	assert.Error(t, ValidateLabel("  padded  "))
	assert.Error(t, ValidateLabel("trailing "))

	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, ValidateLabel(string(long)))
	assert.NoError(t, ValidateLabel(string(long[:255])))

	// Length counts runes, not bytes
	assert.NoError(t, ValidateLabel("日本"))
	assert.NoError(t, ValidateLabel(strings.Repeat("ü", 255)))
	assert.Error(t, ValidateLabel(strings.Repeat("ü", 256)))
	assert.Error(t, ValidateLabel("ü"))
}

func TestValidateDateRange(t *testing.T) {
	assert.NoError(t, ValidateDateRange("", ""))
	assert.NoError(t, ValidateDateRange("2020-01", ""))
	assert.NoError(t, ValidateDateRange("2020-01", "2022-06"))
	assert.NoError(t, ValidateDateRange("2020-01-15", "2020-01-15"))
	assert.NoError(t, ValidateDateRange("2020-01", OngoingSentinel))
	assert.NoError(t, ValidateDateRange("", "2022-06"))

	assert.Error(t, ValidateDateRange("2022-06", "2020-01"))
	assert.Error(t, ValidateDateRange("not-a-date", "2020-01"))
	assert.Error(t, ValidateDateRange("2020-01", "ongoing"))
}

func TestValidateMeta_Job(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateMeta(node.TypeJob, map[string]any{
			"company":   "Acme",
			"position":  "Engineer",
			"startDate": "2020-03",
			"endDate":   "present",
		}))
	})

	t.Run("reports every violation, not just the first", func(t *testing.T) {
		err := ValidateMeta(node.TypeJob, map[string]any{
			"startDate": "2022-01",
			"endDate":   "2020-01",
		})
		require.Error(t, err)

		var verrs node.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		fields := make(map[string]bool)
		for _, v := range verrs {
			fields[v.Field] = true
		}
		assert.True(t, fields["company"], "missing company must be reported")
		assert.True(t, fields["position"], "missing position must be reported")
		assert.True(t, fields["endDate"], "inverted range must be reported")
	})

	t.Run("wrong value kind", func(t *testing.T) {
		err := ValidateMeta(node.TypeJob, map[string]any{
			"company":  42,
			"position": "Engineer",
		})
		assert.Error(t, err)
	})

	t.Run("extra keys pass through", func(t *testing.T) {
		assert.NoError(t, ValidateMeta(node.TypeJob, map[string]any{
			"company":  "Acme",
			"position": "Engineer",
			"custom":   "anything",
		}))
	})
}

func TestValidateMeta_Project(t *testing.T) {
	assert.NoError(t, ValidateMeta(node.TypeProject, map[string]any{
		"name":         "Canopy",
		"technologies": []any{"go", "sqlite"},
		"status":       "active",
	}))

	err := ValidateMeta(node.TypeProject, map[string]any{
		"name":   "Canopy",
		"status": "abandoned",
	})
	require.Error(t, err)
	var verrs node.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "status", verrs[0].Field)
}

func TestValidateMeta_UnknownType(t *testing.T) {
	err := ValidateMeta(node.Type("hobby"), map[string]any{})
	assert.Error(t, err)
}

func TestValidateMeta_AllShapesRequireTheirFields(t *testing.T) {
	cases := map[node.Type]string{
		node.TypeCareerTransition: "title",
		node.TypeJob:              "company",
		node.TypeEducation:        "institution",
		node.TypeProject:          "name",
		node.TypeEvent:            "title",
		node.TypeAction:           "title",
	}
	for typ, field := range cases {
		err := ValidateMeta(typ, map[string]any{})
		require.Error(t, err, "%s with empty meta", typ)
		var verrs node.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		found := false
		for _, v := range verrs {
			if v.Field == field {
				found = true
			}
		}
		assert.True(t, found, "%s must require %s", typ, field)
	}
}

func TestMetaFields(t *testing.T) {
	fields := MetaFields(node.TypeJob)
	require.NotEmpty(t, fields)

	byName := make(map[string]MetaField)
	for _, f := range fields {
		byName[f.Name] = f
	}
	assert.True(t, byName["company"].Required)
	assert.True(t, byName["position"].Required)
	assert.False(t, byName["startDate"].Required)

	project := MetaFields(node.TypeProject)
	byName = make(map[string]MetaField)
	for _, f := range project {
		byName[f.Name] = f
	}
	assert.Equal(t, "[]string", byName["technologies"].Kind)

	assert.Nil(t, MetaFields(node.Type("hobby")))
}
