package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"careertrail/canopy/internal/node"
	"careertrail/canopy/internal/rules"
)

var schemaJSON bool

// typeSchema is the upward-facing description of one node type.
type typeSchema struct {
	Type            node.Type         `json:"type"`
	AllowedChildren []node.Type       `json:"allowed_children"`
	MetaFields      []rules.MetaField `json:"meta_fields"`
}

var schemaCmd = &cobra.Command{
	Use:   "schema [type]",
	Short: "Show allowed child types and meta fields, for one type or all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		types := node.AllTypes()
		if len(args) == 1 {
			t, ok := node.ParseType(args[0])
			if !ok {
				return fmt.Errorf("unknown node type %q, want one of: %s", args[0], typeList())
			}
			types = []node.Type{t}
		}

		schemas := make([]typeSchema, len(types))
		for i, t := range types {
			schemas[i] = typeSchema{
				Type:            t,
				AllowedChildren: rules.AllowedChildren(t),
				MetaFields:      rules.MetaFields(t),
			}
		}

		if schemaJSON {
			if len(schemas) == 1 {
				return printJSON(schemas[0])
			}
			return printJSON(schemas)
		}

		for _, s := range schemas {
			fmt.Printf("\n  %s\n", s.Type)
			if len(s.AllowedChildren) == 0 {
				fmt.Println("    children: none (terminal)")
			} else {
				fmt.Printf("    children: %v\n", s.AllowedChildren)
			}
			for _, f := range s.MetaFields {
				req := ""
				if f.Required {
					req = "  (required)"
				}
				fmt.Printf("    %-14s %s%s\n", f.Name, f.Kind, req)
			}
		}
		return nil
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(schemaCmd)
}
