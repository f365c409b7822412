package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stillharbor/driftline/internal/types"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Interactively dismiss insights from the latest cycle",
	Long: `Walk the latest generation's insights in an interactive shell.
Dismissed insights are remembered and filtered from future cycles as long
as the same rule keeps firing on the same evidence.

Commands inside the shell:
  list          show the insights again
  dismiss <n>   dismiss insight number n
  quit          exit`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		insights, err := store.LatestGeneration(ctx, userID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(insights) == 0 {
			fmt.Println("No generations recorded yet. Run 'driftline generate' first.")
			return
		}

		if err := runReview(ctx, insights); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func runReview(ctx context.Context, insights []types.Insight) error {
	cyan := color.New(color.FgCyan).SprintFunc()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cyan("driftline> "),
		InterruptPrompt:   "^C",
		EOFPrompt:         "quit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	printReviewList(insights)

	dismissed := make(map[int]bool)
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				fmt.Println("Done.")
				return nil
			}
			return err
		}

		parts := strings.Fields(strings.TrimSpace(line))
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "quit", "exit", "q":
			fmt.Println("Done.")
			return nil
		case "list", "ls":
			printReviewList(insights)
		case "dismiss", "d":
			if len(parts) < 2 {
				fmt.Println("Usage: dismiss <n>")
				continue
			}
			n, err := strconv.Atoi(parts[1])
			if err != nil || n < 1 || n > len(insights) {
				fmt.Printf("No insight numbered %q (have 1-%d)\n", parts[1], len(insights))
				continue
			}
			if dismissed[n] {
				fmt.Printf("Already dismissed #%d\n", n)
				continue
			}
			if err := store.RecordDismissal(ctx, userID, insights[n-1].ID); err != nil {
				return fmt.Errorf("recording dismissal: %w", err)
			}
			dismissed[n] = true
			green := color.New(color.FgGreen).SprintFunc()
			fmt.Printf("%s Dismissed #%d. It won't come back while the same pattern holds.\n", green("✓"), n)
		case "help", "?":
			fmt.Println("Commands: list, dismiss <n>, quit")
		default:
			fmt.Printf("Unknown command %q (try 'help')\n", parts[0])
		}
	}
}

func printReviewList(insights []types.Insight) {
	gray := color.New(color.FgHiBlack).SprintFunc()
	fmt.Println()
	for i, ins := range insights {
		fmt.Printf("%2d. %s %s\n", i+1, typeBadge(ins.Type), ins.Message)
		fmt.Printf("    %s\n", gray(ins.ID))
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}
