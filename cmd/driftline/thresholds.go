package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stillharbor/driftline/internal/threshold"
)

var thresholdsCmd = &cobra.Command{
	Use:   "thresholds",
	Short: "Show the user's adaptive thresholds",
	Long: `Display each adaptive threshold: its learned current value, the
population baseline it started from, the clamp bounds, and how many
samples it has absorbed.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		snapshot, err := store.LoadThresholds(ctx, userID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		cfg, err := loadEngineConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defs := cfg.Thresholds
		if len(defs) == 0 {
			defs = threshold.DefaultDefinitions()
		}
		ts := threshold.NewStoreFromSnapshot(defs, snapshot)

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan(fmt.Sprintf("=== Adaptive Thresholds (%s) ===", userID)))

		states := ts.Snapshot()
		for _, name := range ts.Names() {
			st := states[name]
			fmt.Printf("%s\n", yellow(name))
			fmt.Printf("  Current:  %s\n", formatDrift(st.CurrentValue, st.BaselineValue))
			fmt.Printf("  Baseline: %.2f  %s\n", st.BaselineValue,
				gray(fmt.Sprintf("(bounds %.2f - %.2f)", st.MinValue, st.MaxValue)))
			fmt.Printf("  Samples:  %d", len(st.History))
			if sd := ts.StdDev(name); sd > 0 {
				fmt.Printf("  %s", gray(fmt.Sprintf("(stddev %.2f)", sd)))
			}
			fmt.Println()
			fmt.Println()
		}
	},
}

// formatDrift renders the current value, colored by how far it has
// drifted from its baseline.
func formatDrift(current, baseline float64) string {
	s := fmt.Sprintf("%.2f", current)
	if baseline == 0 {
		return s
	}
	drift := (current - baseline) / baseline
	switch {
	case drift > 0.05 || drift < -0.05:
		return color.New(color.FgYellow).Sprint(s)
	default:
		return color.New(color.FgGreen).Sprint(s)
	}
}

func init() {
	rootCmd.AddCommand(thresholdsCmd)
}
