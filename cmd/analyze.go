package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"careertrail/canopy/internal/cycle"
)

var (
	analyzeJSON bool
	doctorJSON  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the forest for cycles, orphans, depth, and components",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, owner, err := OpenService()
		if err != nil {
			return err
		}
		defer st.Close()

		report, err := svc.Guard().AnalyzeForest(owner)
		if err != nil {
			return fmt.Errorf("analyzing forest: %w", err)
		}

		if analyzeJSON {
			return printJSON(report)
		}
		printReport(report)
		return nil
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Analyze the forest and propose repairs for detected anomalies",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, owner, err := OpenService()
		if err != nil {
			return err
		}
		defer st.Close()

		diagnosis, err := svc.ValidateHierarchy(owner)
		if err != nil {
			return fmt.Errorf("diagnosing forest: %w", err)
		}

		if doctorJSON {
			return printJSON(diagnosis)
		}
		printReport(diagnosis.Report)
		if len(diagnosis.Suggestions) == 0 {
			fmt.Println("  no repairs needed")
			return nil
		}
		fmt.Println("  suggestions:")
		for _, s := range diagnosis.Suggestions {
			if s.NodeID != "" {
				fmt.Printf("    [%s] %s %s: %s\n", s.Severity, s.Action, s.NodeID, s.Description)
			} else {
				fmt.Printf("    [%s] %s: %s\n", s.Severity, s.Action, s.Description)
			}
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Output as JSON")
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(analyzeCmd, doctorCmd)
}

func printReport(report *cycle.Report) {
	health := "healthy"
	if report.HasCycles || len(report.OrphanedNodes) > 0 {
		health = "corrupted"
	}
	fmt.Printf("\n  Forest: %d nodes, %d components, max depth %d (%s)\n",
		report.TotalNodes, report.Components, report.MaxDepth, health)

	if report.HasCycles {
		fmt.Printf("  cycles: %d\n", len(report.Cycles))
		for _, c := range report.Cycles {
			fmt.Printf("    [%s] %s\n", c.Severity, strings.Join(c.Nodes, " -> "))
		}
	}
	if len(report.OrphanedNodes) > 0 {
		fmt.Printf("  orphans: %d\n", len(report.OrphanedNodes))
		for _, o := range report.OrphanedNodes {
			fmt.Printf("    %s references missing parent %s\n", o.NodeID, o.MissingParentID)
		}
	}
}
