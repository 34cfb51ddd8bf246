package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"careertrail/canopy/internal/node"
)

var (
	treeJSON      bool
	subtreeDepth  int
	subtreeJSON   bool
	ancestorsJSON bool
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the owner's full forest with nested children",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, owner, err := OpenService()
		if err != nil {
			return err
		}
		defer st.Close()

		forest, err := svc.FullTree(owner)
		if err != nil {
			return err
		}
		if treeJSON {
			return printJSON(forest)
		}
		for _, root := range forest {
			printTree(root, 0)
		}
		return nil
	},
}

var subtreeCmd = &cobra.Command{
	Use:   "subtree <id>",
	Short: "Print a node and its descendants down to --depth levels",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, owner, err := OpenService()
		if err != nil {
			return err
		}
		defer st.Close()

		nodes, err := svc.Subtree(args[0], owner, subtreeDepth)
		if err != nil {
			return err
		}
		if len(nodes) == 0 {
			return fmt.Errorf("node %s not found", args[0])
		}
		if subtreeJSON {
			return printJSON(nodes)
		}
		for _, n := range nodes {
			printNodeLine(n)
		}
		return nil
	},
}

var ancestorsCmd = &cobra.Command{
	Use:   "ancestors <id>",
	Short: "Print the chain from a node up to its root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, owner, err := OpenService()
		if err != nil {
			return err
		}
		defer st.Close()

		chain, err := svc.Ancestors(args[0], owner)
		if err != nil {
			return err
		}
		if len(chain) == 0 {
			return fmt.Errorf("node %s not found", args[0])
		}
		if ancestorsJSON {
			return printJSON(chain)
		}
		for i, n := range chain {
			fmt.Printf("%s%s  %s\n", strings.Repeat("  ", i), n.ID, n.Type)
		}
		return nil
	},
}

func init() {
	treeCmd.Flags().BoolVar(&treeJSON, "json", false, "Output as JSON")

	subtreeCmd.Flags().IntVar(&subtreeDepth, "depth", 10, "Max levels below the node")
	subtreeCmd.Flags().BoolVar(&subtreeJSON, "json", false, "Output as JSON")

	ancestorsCmd.Flags().BoolVar(&ancestorsJSON, "json", false, "Output as JSON")

	rootCmd.AddCommand(treeCmd, subtreeCmd, ancestorsCmd)
}

func printTree(tn *node.TreeNode, depth int) {
	fmt.Printf("%s%s  %s\n", strings.Repeat("  ", depth), tn.ID, tn.Type)
	for _, child := range tn.Children {
		printTree(child, depth+1)
	}
}
