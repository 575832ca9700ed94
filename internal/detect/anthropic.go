package detect

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sago-ventures/reengage-cli/internal/model"
	"github.com/sago-ventures/reengage-cli/internal/resilience"
	"github.com/sago-ventures/reengage-cli/pkg/anthropic"
)

const (
	detectTemperature   = 0.3
	outreachTemperature = 0.7
	maxDetectTokens     = 2000
	maxOutreachTokens   = 600
)

// AnthropicExtractor runs detection and drafting against the Anthropic API.
type AnthropicExtractor struct {
	client anthropic.Client
	model  string
	retry  resilience.RetryConfig
}

// NewAnthropicExtractor creates an extractor using the given client and model.
func NewAnthropicExtractor(client anthropic.Client, modelID string) *AnthropicExtractor {
	return &AnthropicExtractor{
		client: client,
		model:  modelID,
		retry:  resilience.DefaultRetryConfig(),
	}
}

func (e *AnthropicExtractor) complete(ctx context.Context, operation string, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	cfg := e.retry
	cfg.OnRetry = resilience.RetryLogger("anthropic", operation)
	return resilience.DoVal(ctx, cfg, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return e.client.CreateMessage(ctx, req)
	})
}

func (e *AnthropicExtractor) DetectSignals(ctx context.Context, text string, company model.Company, source model.SignalSource) ([]model.Signal, error) {
	temp := detectTemperature
	resp, err := e.complete(ctx, "detect_signals", anthropic.MessageRequest{
		Model:       e.model,
		MaxTokens:   maxDetectTokens,
		System:      detectSystemPrompt,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: detectUserPrompt(text, company)},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "detect: anthropic signal detection")
	}
	return parseSignals(resp.Text(), company, source), nil
}

func (e *AnthropicExtractor) GenerateOutreach(ctx context.Context, req OutreachRequest) (string, error) {
	temp := outreachTemperature
	resp, err := e.complete(ctx, "generate_outreach", anthropic.MessageRequest{
		Model:       e.model,
		MaxTokens:   maxOutreachTokens,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: outreachPrompt(req)},
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "detect: anthropic outreach")
	}
	return strings.TrimSpace(resp.Text()), nil
}
