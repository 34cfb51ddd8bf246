package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"careertrail/canopy/internal/node"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print node counts, type distribution, depth, and root count",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, owner, err := OpenService()
		if err != nil {
			return err
		}
		defer st.Close()

		stats, err := svc.Stats(owner)
		if err != nil {
			return err
		}
		if statsJSON {
			return printJSON(stats)
		}

		fmt.Printf("\n  %d nodes (%d roots), max depth %d\n", stats.TotalNodes, stats.RootNodes, stats.MaxDepth)
		for _, t := range node.AllTypes() {
			if count := stats.NodesByType[t]; count > 0 {
				fmt.Printf("    %-16s %d\n", t, count)
			}
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(statsCmd)
}
