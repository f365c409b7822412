package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stillharbor/driftline/internal/engine"
	"github.com/stillharbor/driftline/internal/nlp"
	"github.com/stillharbor/driftline/internal/sentiment"
	"github.com/stillharbor/driftline/internal/types"
)

var (
	generateInput    string
	generateWindow   int
	generateMax      int
	generateDate     string
	generateJSON     bool
	generateUseNLP   bool
	generateRewrite  bool
	generateToneHint string
)

// inputFile is the on-disk shape the generate command reads: the caller's
// raw export, normalized at the boundary before the engine sees it.
type inputFile struct {
	CheckIns  []types.RawCheckIn   `json:"check_ins"`
	Breathing []types.RawBreathing `json:"breathing"`
	Journal   []types.RawJournal   `json:"journal"`
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one insight-generation cycle",
	Long: `Read behavioral logs from a JSON file, generate ranked insights, and
persist the updated adaptive thresholds for the next cycle.

The input file holds three arrays: check_ins, breathing, and journal.
Records outside the analysis window are ignored, so exports do not need
pre-filtering.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		raw, err := os.ReadFile(generateInput)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to read input: %v\n", err)
			os.Exit(1)
		}
		var in inputFile
		if err := json.Unmarshal(raw, &in); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to parse input: %v\n", err)
			os.Exit(1)
		}

		ref := time.Now().UTC()
		if generateDate != "" {
			ref, err = time.Parse("2006-01-02", generateDate)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: invalid --date (want YYYY-MM-DD): %v\n", err)
				os.Exit(1)
			}
		}

		cfg, err := loadEngineConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		var scorer sentiment.Scorer
		var client *nlp.Client
		if generateUseNLP || generateRewrite {
			client, err = nlp.New(nil)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: NLP requested but unavailable: %v\n", err)
				os.Exit(1)
			}
			if generateUseNLP {
				// Models rate-limit hard; stay well under.
				scorer = sentiment.NewRateLimited(client, 2, 4)
			}
		}

		eng, err := engine.New(cfg, scorer)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		thresholds, err := store.LoadThresholds(ctx, userID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		dismissed, err := store.DismissedIDs(ctx, userID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		result, err := eng.Generate(ctx, engine.GenerateInput{
			CheckIns:      types.NormalizeCheckIns(in.CheckIns),
			BreathingLogs: types.NormalizeBreathing(in.Breathing),
			JournalNotes:  types.NormalizeJournal(in.Journal),
			WindowDays:    generateWindow,
			ReferenceDate: ref,
			DismissedIDs:  dismissed,
			Thresholds:    thresholds,
			MaxCount:      generateMax,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: generation failed: %v\n", err)
			os.Exit(1)
		}

		if generateRewrite && client != nil {
			rewriteMessages(ctx, client, result.Insights)
		}

		if err := store.SaveThresholds(ctx, userID, result.Thresholds); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to save thresholds: %v\n", err)
			os.Exit(1)
		}
		if _, err := store.RecordGeneration(ctx, userID, generateWindow, result.Insights); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to record generation: %v\n", err)
			os.Exit(1)
		}

		if generateJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result.Insights); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}

		printInsights(result.Insights)
	},
}

// rewriteMessages rewrites each insight message in place, keeping the
// original on any failure. Rewrites are presentation only; ids stay
// derived from the pre-rewrite evidence so dismissals keep matching.
func rewriteMessages(ctx context.Context, client *nlp.Client, insights []types.Insight) {
	for i := range insights {
		rewritten, err := client.Rewrite(ctx, insights[i].Message, generateToneHint)
		if err != nil || rewritten == "" {
			continue
		}
		insights[i].Message = rewritten
	}
}

func printInsights(insights []types.Insight) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Printf("\n%s\n\n", cyan("=== Driftline Insights ==="))

	if len(insights) == 0 {
		fmt.Printf("  %s\n\n", gray("Nothing notable this cycle. Keep logging."))
		return
	}

	for i, ins := range insights {
		fmt.Printf("%2d. %s %s\n", i+1, typeBadge(ins.Type), ins.Message)
		fmt.Printf("    %s\n", gray(fmt.Sprintf("priority %d · confidence %.0f%% · %s",
			ins.Priority, ins.Confidence*100, ins.ID)))
		if ins.Prediction != nil {
			fmt.Printf("    %s\n", gray(fmt.Sprintf("forecast: %s %.2f (%s)",
				ins.Prediction.ForecastLabel, ins.Prediction.PredictedValue,
				ins.Prediction.TrendDirection)))
		}
		fmt.Println()
	}
	fmt.Printf("%s\n\n", gray("Run 'driftline review' to dismiss insights you don't want to see again."))
}

func typeBadge(t types.InsightType) string {
	switch t {
	case types.TypeWarning, types.TypeAlert:
		return color.New(color.FgRed).Sprintf("[%s]", t)
	case types.TypeSuggestion, types.TypeQuestion:
		return color.New(color.FgYellow).Sprintf("[%s]", t)
	case types.TypeAffirmation, types.TypeCelebration:
		return color.New(color.FgGreen).Sprintf("[%s]", t)
	case types.TypeAnomaly, types.TypePrediction, types.TypeTrend:
		return color.New(color.FgMagenta).Sprintf("[%s]", t)
	default:
		return color.New(color.FgCyan).Sprintf("[%s]", t)
	}
}

func init() {
	generateCmd.Flags().StringVarP(&generateInput, "input", "i", "", "Path to the JSON input file (required)")
	generateCmd.Flags().IntVar(&generateWindow, "window", engine.DefaultWindowDays, "Analysis window in days")
	generateCmd.Flags().IntVar(&generateMax, "max", 0, "Maximum insights to return (0 = all)")
	generateCmd.Flags().StringVar(&generateDate, "date", "", "Reference date as YYYY-MM-DD (default: now)")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "Emit insights as JSON")
	generateCmd.Flags().BoolVar(&generateUseNLP, "nlp", false, "Score journal sentiment with the Anthropic API instead of the built-in lexicon")
	generateCmd.Flags().BoolVar(&generateRewrite, "rewrite", false, "Rewrite insight messages for tone via the Anthropic API")
	generateCmd.Flags().StringVar(&generateToneHint, "tone", "warm and encouraging", "Tone hint for --rewrite")
	generateCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(generateCmd)
}
