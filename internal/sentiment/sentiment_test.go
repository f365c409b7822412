package sentiment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexicon_Positive(t *testing.T) {
	score, err := Lexicon{}.Score(context.Background(), "Felt great today, calm and focused the whole session.")
	require.NoError(t, err)
	assert.Greater(t, score, 0.3)
}

func TestLexicon_Negative(t *testing.T) {
	score, err := Lexicon{}.Score(context.Background(), "Exhausted and overwhelmed, everything felt stuck.")
	require.NoError(t, err)
	assert.Less(t, score, -0.3)
}

func TestLexicon_Neutral(t *testing.T) {
	score, err := Lexicon{}.Score(context.Background(), "Finished the quarterly report and sent it out.")
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestLexicon_Mixed(t *testing.T) {
	score, err := Lexicon{}.Score(context.Background(), "Tired but proud of the progress.")
	require.NoError(t, err)
	// Two positive hits, one negative.
	assert.Greater(t, score, 0.0)
	assert.Less(t, score, 1.0)
}

func TestLexicon_PunctuationStripped(t *testing.T) {
	score, err := Lexicon{}.Score(context.Background(), "Grateful! Relaxed. Happy?")
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

type failingScorer struct{}

func (failingScorer) Score(context.Context, string) (float64, error) {
	return 0, errors.New("service unavailable")
}

func TestRateLimited_Delegates(t *testing.T) {
	rl := NewRateLimited(Lexicon{}, 100, 10)
	score, err := rl.Score(context.Background(), "great day")
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

func TestRateLimited_PropagatesError(t *testing.T) {
	rl := NewRateLimited(failingScorer{}, 100, 10)
	_, err := rl.Score(context.Background(), "anything")
	assert.Error(t, err)
}

func TestRateLimited_CancelledContext(t *testing.T) {
	rl := NewRateLimited(Lexicon{}, 0.001, 1)
	ctx, cancel := context.WithCancel(context.Background())
	_, err := rl.Score(ctx, "first uses the burst token")
	require.NoError(t, err)

	cancel()
	_, err = rl.Score(ctx, "second must wait and sees cancellation")
	assert.Error(t, err)
}
