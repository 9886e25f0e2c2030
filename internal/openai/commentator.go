package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	oa "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrDisabled is returned by Explain when no API key is configured.
var ErrDisabled = errors.New("commentary disabled: OPENAI_API_KEY not set")

const systemPrompt = `You are a quantitative portfolio analyst. You receive the metrics of a portfolio (returns, risk, drawdowns, tail statistics, diversification) and optionally its time-series structure diagnostics (Hurst exponent, variance ratios, market regimes).

Your response must follow this exact structure, in plain text without markdown:

Interpretation:
[What the numbers say about the portfolio's risk and return profile]

Strengths:
[What the portfolio does well, citing the metrics]

Weaknesses:
[Concentration, tail risk, drawdown depth or poor risk-adjusted return]

Structure:
[Trending or mean-reverting behaviour and what the current regime implies, when diagnostics are present]

Guidelines:
- Refer to the metric values you were given; do not invent numbers
- An "∞" ratio means there were no losing observations
- Stay under 250 words
- Do not give personalised investment advice`

// Commentator asks an OpenAI chat model to interpret an analysis summary.
type Commentator struct {
	cli     oa.Client
	model   string
	enabled bool
}

func NewCommentator(apiKey string, opts ...option.RequestOption) *Commentator {
	if strings.TrimSpace(apiKey) == "" {
		return &Commentator{}
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Commentator{cli: oa.NewClient(opts...), model: oa.ChatModelGPT4oMini, enabled: true}
}

func (c *Commentator) Enabled() bool { return c != nil && c.enabled }

// Explain returns a structured plain-text interpretation of summary.
func (c *Commentator) Explain(ctx context.Context, summary string) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	resp, err := c.cli.Chat.Completions.New(ctx, oa.ChatCompletionNewParams{
		Model: c.model,
		Messages: []oa.ChatCompletionMessageParamUnion{
			oa.SystemMessage(systemPrompt),
			oa.UserMessage("Interpret this portfolio analysis:\n\n" + summary),
		},
		MaxTokens: oa.Int(800), // Limit response length for telegram
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
