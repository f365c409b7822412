// Package sentiment defines the injected sentiment-scoring collaborator
// the engine's journal rules consume, plus two implementations: a small
// built-in lexicon scorer that works offline, and a rate-limiting
// wrapper for scorers backed by an external NLP service.
package sentiment

import (
	"context"
	"strings"

	"golang.org/x/time/rate"
)

// Scorer scores free text on [-1,1]: -1 strongly negative, +1 strongly
// positive, 0 neutral. Implementations may call external services; the
// engine treats any error as a neutral score for that note only.
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// Lexicon is a tiny word-list scorer. It exists so the engine produces
// sensible sentiment insights with no API key configured; an external
// model replaces it when available.
type Lexicon struct{}

var positiveWords = map[string]bool{
	"good": true, "great": true, "calm": true, "happy": true, "proud": true,
	"focused": true, "productive": true, "energized": true, "rested": true,
	"grateful": true, "relaxed": true, "accomplished": true, "clear": true,
	"motivated": true, "enjoyed": true, "progress": true, "win": true,
	"better": true, "strong": true, "confident": true,
}

var negativeWords = map[string]bool{
	"bad": true, "tired": true, "stressed": true, "anxious": true,
	"overwhelmed": true, "frustrated": true, "exhausted": true, "worried": true,
	"stuck": true, "angry": true, "sad": true, "drained": true, "burnout": true,
	"burned": true, "distracted": true, "worse": true, "struggling": true,
	"pressure": true, "failed": true, "behind": true,
}

// Score counts positive and negative lexicon hits and returns their
// normalized balance. Never returns an error.
func (Lexicon) Score(_ context.Context, text string) (float64, error) {
	var pos, neg int
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?;:'\"()-")
		if positiveWords[w] {
			pos++
		}
		if negativeWords[w] {
			neg++
		}
	}
	total := pos + neg
	if total == 0 {
		return 0, nil
	}
	return float64(pos-neg) / float64(total), nil
}

// RateLimited wraps a scorer with a token-bucket limiter so batch
// scoring of a journal backlog cannot hammer an external service.
type RateLimited struct {
	inner   Scorer
	limiter *rate.Limiter
}

// NewRateLimited allows up to perSecond calls per second with the given
// burst.
func NewRateLimited(inner Scorer, perSecond float64, burst int) *RateLimited {
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Score blocks for limiter admission, then delegates.
func (r *RateLimited) Score(ctx context.Context, text string) (float64, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	return r.inner.Score(ctx, text)
}
