// Package nlp provides the Claude-backed implementations of the
// engine's injected language collaborators: sentiment scoring for
// journal notes and optional tone rewriting of finished insight
// messages. The engine core never calls this package directly; callers
// inject it where they want model-backed behavior instead of the
// built-in lexicon.
package nlp

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/semaphore"

	"github.com/stillharbor/driftline/internal/sentiment"
)

// ModelHaiku is the default model; sentiment scoring and tone rewrites
// are simple tasks where the cheap tier is plenty.
const ModelHaiku = "claude-3-5-haiku-20241022"

// DefaultMaxConcurrent caps in-flight API calls.
const DefaultMaxConcurrent = 4

// Config holds client configuration.
type Config struct {
	// APIKey for the Anthropic API; falls back to ANTHROPIC_API_KEY.
	APIKey string

	// Model override; default ModelHaiku, or DRIFTLINE_NLP_MODEL.
	Model string

	// MaxConcurrent caps concurrent API calls (default 4).
	MaxConcurrent int64
}

// Client scores sentiment and rewrites message tone via the Anthropic
// API.
type Client struct {
	client anthropic.Client
	model  string
	sem    *semaphore.Weighted
}

// Compile-time check that Client satisfies the engine's scorer contract.
var _ sentiment.Scorer = (*Client)(nil)

// New creates a Claude-backed language client.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}

	model := cfg.Model
	if model == "" {
		if env := os.Getenv("DRIFTLINE_NLP_MODEL"); env != "" {
			model = env
		} else {
			model = ModelHaiku
		}
	}

	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}

	return &Client{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		sem:    semaphore.NewWeighted(maxConcurrent),
	}, nil
}

// Score asks the model for a single sentiment number on [-1,1].
func (c *Client) Score(ctx context.Context, text string) (float64, error) {
	prompt := "Rate the emotional sentiment of this journal note on a scale from " +
		"-1.0 (strongly negative) to 1.0 (strongly positive). Reply with the " +
		"number only, nothing else.\n\n" + text

	out, err := c.complete(ctx, prompt, 16)
	if err != nil {
		return 0, err
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing sentiment score %q: %w", out, err)
	}
	if score < -1 {
		score = -1
	}
	if score > 1 {
		score = 1
	}
	return score, nil
}

// Rewrite adjusts the tone of a finished insight message. It runs after
// the engine has produced its canonical message, never inside rule
// logic, so a rewrite failure just leaves the original wording.
func (c *Client) Rewrite(ctx context.Context, message, hint string) (string, error) {
	prompt := fmt.Sprintf(
		"Rewrite this wellness-app message in a %s tone. Keep every number and "+
			"fact exactly as given, keep it to one or two sentences, and reply "+
			"with the rewritten message only.\n\n%s", hint, message)

	out, err := c.complete(ctx, prompt, 256)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("empty rewrite response")
	}
	return out, nil
}

func (c *Client) complete(ctx context.Context, prompt string, maxTokens int64) (string, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.sem.Release(1)

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}
