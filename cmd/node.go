package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"careertrail/canopy/internal/node"
)

var (
	createType   string
	createParent string
	createMeta   string
	createJSON   bool

	updateMeta string
	updateJSON bool

	moveParent string
	moveJSON   bool

	listType   string
	listParent string
	listJSON   bool

	getJSON bool
)

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Create, inspect, update, move, and delete career-history nodes",
}

var nodeCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a node, optionally under a parent",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, owner, err := OpenService()
		if err != nil {
			return err
		}
		defer st.Close()

		t, ok := node.ParseType(createType)
		if !ok {
			return fmt.Errorf("unknown node type %q, want one of: %s", createType, typeList())
		}
		meta, err := parseMetaFlag(createMeta)
		if err != nil {
			return err
		}
		var parentID *string
		if createParent != "" {
			parentID = &createParent
		}

		created, err := svc.CreateNode(t, parentID, meta, owner)
		if err != nil {
			return err
		}
		if createJSON {
			return printJSON(created)
		}
		fmt.Printf("created %s %s\n", created.Type, created.ID)
		return nil
	},
}

var nodeGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Fetch a node by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, owner, err := OpenService()
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := svc.GetNode(args[0], owner)
		if err != nil {
			return err
		}
		if getJSON {
			return printJSON(n)
		}
		printNodeLine(*n)
		return nil
	},
}

var nodeUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Apply a metadata patch to a node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, owner, err := OpenService()
		if err != nil {
			return err
		}
		defer st.Close()

		patch, err := parseMetaFlag(updateMeta)
		if err != nil {
			return err
		}
		updated, err := svc.UpdateNode(args[0], patch, owner)
		if err != nil {
			return err
		}
		if updateJSON {
			return printJSON(updated)
		}
		fmt.Printf("updated %s\n", updated.ID)
		return nil
	},
}

var nodeMoveCmd = &cobra.Command{
	Use:   "move <id>",
	Short: "Reassign a node's parent (omit --parent to make it a root)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, owner, err := OpenService()
		if err != nil {
			return err
		}
		defer st.Close()

		var parentID *string
		if moveParent != "" {
			parentID = &moveParent
		}
		moved, err := svc.MoveNode(args[0], parentID, owner)
		if err != nil {
			return err
		}
		if moveJSON {
			return printJSON(moved)
		}
		if moved.ParentID == nil {
			fmt.Printf("moved %s to root\n", moved.ID)
		} else {
			fmt.Printf("moved %s under %s\n", moved.ID, *moved.ParentID)
		}
		return nil
	},
}

var nodeDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a node, detaching its children",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, owner, err := OpenService()
		if err != nil {
			return err
		}
		defer st.Close()

		deleted, err := svc.DeleteNode(args[0], owner)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("node %s not found", args[0])
		}
		fmt.Printf("deleted %s\n", args[0])
		return nil
	},
}

var nodeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List nodes, optionally filtered by type and parent",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, owner, err := OpenService()
		if err != nil {
			return err
		}
		defer st.Close()

		var t *node.Type
		if listType != "" {
			parsed, ok := node.ParseType(listType)
			if !ok {
				return fmt.Errorf("unknown node type %q, want one of: %s", listType, typeList())
			}
			t = &parsed
		}
		var parentID *string
		if listParent != "" {
			parentID = &listParent
		}

		nodes, err := svc.ListNodes(owner, t, parentID)
		if err != nil {
			return err
		}
		if listJSON {
			return printJSON(nodes)
		}
		for _, n := range nodes {
			printNodeLine(n)
		}
		fmt.Printf("%d nodes\n", len(nodes))
		return nil
	},
}

func init() {
	nodeCreateCmd.Flags().StringVar(&createType, "type", "", "Node type (required)")
	nodeCreateCmd.Flags().StringVar(&createParent, "parent", "", "Parent node id")
	nodeCreateCmd.Flags().StringVar(&createMeta, "meta", "{}", "Metadata as a JSON object")
	nodeCreateCmd.Flags().BoolVar(&createJSON, "json", false, "Output as JSON")
	_ = nodeCreateCmd.MarkFlagRequired("type")

	nodeGetCmd.Flags().BoolVar(&getJSON, "json", false, "Output as JSON")

	nodeUpdateCmd.Flags().StringVar(&updateMeta, "meta", "", "Metadata patch as a JSON object (required)")
	nodeUpdateCmd.Flags().BoolVar(&updateJSON, "json", false, "Output as JSON")
	_ = nodeUpdateCmd.MarkFlagRequired("meta")

	nodeMoveCmd.Flags().StringVar(&moveParent, "parent", "", "New parent node id (empty makes the node a root)")
	nodeMoveCmd.Flags().BoolVar(&moveJSON, "json", false, "Output as JSON")

	nodeListCmd.Flags().StringVar(&listType, "type", "", "Filter by node type")
	nodeListCmd.Flags().StringVar(&listParent, "parent", "", "Filter by direct parent id (with --type)")
	nodeListCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")

	nodeCmd.AddCommand(nodeCreateCmd, nodeGetCmd, nodeUpdateCmd, nodeMoveCmd, nodeDeleteCmd, nodeListCmd)
	rootCmd.AddCommand(nodeCmd)
}

func parseMetaFlag(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	var meta map[string]any
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("parsing --meta: %w", err)
	}
	return meta, nil
}

func typeList() string {
	types := node.AllTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func printNodeLine(n node.Node) {
	parent := "-"
	if n.ParentID != nil {
		parent = *n.ParentID
	}
	fmt.Printf("%s  %-16s  parent=%s\n", n.ID, n.Type, parent)
}
