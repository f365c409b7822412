// Package engine wires the insight pipeline together: normalization
// boundary in, ranked insights and an updated threshold snapshot out.
//
// A Generate call is one logical transaction over an in-memory snapshot.
// The engine performs no I/O and keeps no state between calls; the only
// mutable state in the pipeline is the adaptive threshold store, which
// is loaded from the caller's snapshot, updated exactly once per metric,
// and handed back. Callers must serialize cycles per user.
package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stillharbor/driftline/internal/ranker"
	"github.com/stillharbor/driftline/internal/rules"
	"github.com/stillharbor/driftline/internal/sentiment"
	"github.com/stillharbor/driftline/internal/stats"
	"github.com/stillharbor/driftline/internal/threshold"
	"github.com/stillharbor/driftline/internal/types"
)

// DefaultWindowDays is the generation window when the caller passes 0.
const DefaultWindowDays = 7

// Config holds engine-level tuning.
type Config struct {
	Rules rules.Config `yaml:"rules" json:"rules"`

	// Thresholds overrides the adaptive threshold definitions; empty
	// means threshold.DefaultDefinitions.
	Thresholds []threshold.Definition `yaml:"thresholds" json:"thresholds"`

	// ZThreshold is the anomaly z-score cutoff (default 2.0).
	ZThreshold float64 `yaml:"z_threshold" json:"z_threshold"`

	// Parallelism caps concurrent rule evaluation; 0 means one
	// goroutine per rule.
	Parallelism int `yaml:"parallelism" json:"parallelism"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		Rules:      rules.DefaultConfig(),
		ZThreshold: stats.DefaultZThreshold,
	}
}

// Validate checks the config.
func (c Config) Validate() error {
	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("rules config: %w", err)
	}
	if c.ZThreshold < 0 {
		return fmt.Errorf("z_threshold cannot be negative (got %.2f)", c.ZThreshold)
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism cannot be negative (got %d)", c.Parallelism)
	}
	return nil
}

// Engine generates insights. Safe for concurrent use across users as
// long as callers serialize cycles for any single user's snapshot.
type Engine struct {
	cfg     Config
	scorer  sentiment.Scorer
	catalog []rules.Rule
}

// New builds an engine. A nil scorer falls back to the built-in lexicon
// scorer so the engine works with no external NLP service configured.
func New(cfg Config, scorer sentiment.Scorer) (*Engine, error) {
	if cfg.ZThreshold == 0 {
		cfg.ZThreshold = stats.DefaultZThreshold
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	if scorer == nil {
		scorer = sentiment.Lexicon{}
	}
	return &Engine{
		cfg:     cfg,
		scorer:  scorer,
		catalog: rules.Catalog(),
	}, nil
}

// GenerateInput is one cycle's worth of caller-materialized records.
// The engine filters to [ReferenceDate-WindowDays, ReferenceDate)
// internally; callers should not pre-filter.
type GenerateInput struct {
	CheckIns      []types.CheckInRecord
	BreathingLogs []types.BreathingRecord
	JournalNotes  []types.JournalRecord

	WindowDays    int
	ReferenceDate time.Time

	// DismissedIDs are insight ids the user has dismissed on earlier
	// cycles; matching candidates are dropped before ranking.
	DismissedIDs map[string]bool

	// Thresholds is the snapshot persisted after the previous cycle.
	// Nil or corrupt entries cold-start at their baselines.
	Thresholds map[string]threshold.State

	// MaxCount truncates the ranked list; 0 returns everything.
	MaxCount int
}

// GenerateResult is the ranked list plus the threshold snapshot the
// caller must persist for the next cycle.
type GenerateResult struct {
	Insights   []types.Insight
	Thresholds map[string]threshold.State
}

// Generate runs one insight-generation cycle.
func (e *Engine) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	if in.ReferenceDate.IsZero() {
		return nil, fmt.Errorf("reference date is required")
	}
	windowDays := in.WindowDays
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	defs := e.cfg.Thresholds
	if len(defs) == 0 {
		defs = threshold.DefaultDefinitions()
	}
	store := threshold.NewStoreFromSnapshot(defs, in.Thresholds)

	sentiments := e.scoreJournal(ctx, in.JournalNotes, in.ReferenceDate, windowDays)

	snap := rules.BuildSnapshot(
		e.cfg.Rules,
		in.CheckIns, in.BreathingLogs, in.JournalNotes,
		in.ReferenceDate, windowDays,
		sentiments, store,
	)

	// Thresholds learn from the current period's aggregates, exactly
	// once per metric, before any rule reads them.
	if snap.SessionCount > 0 {
		store.Update(threshold.MaxWeeklyHours, snap.TotalWorkHours)
		avgDuration := 0.0
		for _, c := range snap.CheckIns {
			avgDuration += float64(c.SessionDurationSeconds)
		}
		store.Update(threshold.SessionDuration, avgDuration/float64(snap.SessionCount))
	}
	if snap.ReflectedCount > 0 {
		store.Update(threshold.HighStress, snap.AvgStress)
		store.Update(threshold.LowFocus, snap.AvgFocus)
	}

	candidates := e.statisticalInsights(snap)

	ruleOut, err := e.evaluateCatalog(ctx, snap)
	if err != nil {
		return nil, err
	}
	candidates = append(candidates, ruleOut...)

	return &GenerateResult{
		Insights:   ranker.Rank(candidates, in.DismissedIDs, in.MaxCount),
		Thresholds: store.Snapshot(),
	}, nil
}

// scoreJournal runs the injected scorer over in-window notes. A scorer
// failure on one note degrades that note to neutral; it never aborts
// the cycle.
func (e *Engine) scoreJournal(ctx context.Context, notes []types.JournalRecord, ref time.Time, windowDays int) []rules.NoteSentiment {
	start := ref.Add(-time.Duration(windowDays) * 24 * time.Hour)
	var out []rules.NoteSentiment
	for _, n := range notes {
		if n.Timestamp.IsZero() || n.Timestamp.Before(start) || !n.Timestamp.Before(ref) {
			continue
		}
		score, err := e.scorer.Score(ctx, n.Title+"\n"+n.Text)
		if err != nil {
			score = 0
		}
		out = append(out, rules.NoteSentiment{Note: n, Score: score})
	}
	return out
}

// statisticalInsights converts the analyzer's trend and anomaly output
// into candidate insights. These are emitted ahead of the rule catalog
// so they win ties against equal-priority rule output.
func (e *Engine) statisticalInsights(snap *rules.Snapshot) []types.Insight {
	var out []types.Insight

	if pred := stats.PredictTrend(snap.DailyStress, "stress", 0, 1); pred != nil && pred.TrendDirection != types.TrendStable {
		conf := stats.Confidence(len(snap.DailyStress), stats.Variance(snap.DailyStress))
		id := types.NewInsightID("stress-forecast", string(pred.TrendDirection), fmt.Sprintf("%.2f", pred.PredictedValue))
		var msg string
		priority := 5
		if pred.TrendDirection == types.TrendIncreasing {
			msg = fmt.Sprintf("Your daily stress has been trending upward and projects to around %.0f%% next. Catching it early is easier than unwinding it later.", pred.PredictedValue*100)
			priority = 8
		} else {
			msg = fmt.Sprintf("Daily stress is trending down, projecting to about %.0f%%. Whatever you're doing differently is working.", pred.PredictedValue*100)
		}
		out = append(out, types.Insight{
			ID:         id,
			Message:    msg,
			Type:       types.TypePrediction,
			Priority:   priority,
			Confidence: conf.ConfidenceScore,
			Prediction: pred,
		})
	}

	if flags := stats.DetectAnomalies(snap.DailyHours, e.cfg.ZThreshold); len(flags) > 0 {
		for i := len(flags) - 1; i >= 0; i-- {
			if !flags[i] {
				continue
			}
			conf := stats.Confidence(len(snap.DailyHours), stats.Variance(snap.DailyHours))
			id := types.NewInsightID("hours-anomaly", fmt.Sprintf("%.1f", snap.DailyHours[i]), fmt.Sprintf("%d", i))
			out = append(out, types.Insight{
				ID:         id,
				Message:    fmt.Sprintf("One day this period stands out: %.1f work hours, far from your usual daily pattern. Outlier days are usually worth a second look.", snap.DailyHours[i]),
				Type:       types.TypeAnomaly,
				Priority:   7,
				Confidence: conf.ConfidenceScore,
				IsAnomaly:  true,
			})
			break // report the most recent outlier only
		}
	}

	return out
}

// evaluateCatalog runs every rule against the shared snapshot. Rules are
// read-only over the snapshot, so they run concurrently; results land in
// per-rule slots indexed by catalog position, which keeps the merged
// emission order identical to a sequential walk.
func (e *Engine) evaluateCatalog(ctx context.Context, snap *rules.Snapshot) ([]types.Insight, error) {
	results := make([][]types.Insight, len(e.catalog))

	g, ctx := errgroup.WithContext(ctx)
	if e.cfg.Parallelism > 0 {
		g.SetLimit(e.cfg.Parallelism)
	}
	for i, r := range e.catalog {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = r.Evaluate(snap)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluating rule catalog: %w", err)
	}

	var out []types.Insight
	for _, batch := range results {
		out = append(out, batch...)
	}
	return out, nil
}
