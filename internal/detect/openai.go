package detect

import (
	"context"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/rotisserie/eris"

	"github.com/sago-ventures/reengage-cli/internal/model"
	"github.com/sago-ventures/reengage-cli/internal/resilience"
)

// OpenAIExtractor runs detection and drafting against the OpenAI API.
type OpenAIExtractor struct {
	client openai.Client
	model  string
	retry  resilience.RetryConfig
}

// NewOpenAIExtractor creates an extractor for the given API key and model.
func NewOpenAIExtractor(apiKey, modelID string) *OpenAIExtractor {
	return &OpenAIExtractor{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  modelID,
		retry:  resilience.DefaultRetryConfig(),
	}
}

func (e *OpenAIExtractor) complete(ctx context.Context, operation string, params openai.ChatCompletionNewParams) (string, error) {
	cfg := e.retry
	cfg.OnRetry = resilience.RetryLogger("openai", operation)
	resp, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*openai.ChatCompletion, error) {
		return e.client.Chat.Completions.New(ctx, params)
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", eris.New("detect: openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (e *OpenAIExtractor) DetectSignals(ctx context.Context, text string, company model.Company, source model.SignalSource) ([]model.Signal, error) {
	content, err := e.complete(ctx, "detect_signals", openai.ChatCompletionNewParams{
		Model: e.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(detectSystemPrompt),
			openai.UserMessage(detectUserPrompt(text, company)),
		},
		Temperature: openai.Float(detectTemperature),
		MaxTokens:   openai.Int(maxDetectTokens),
	})
	if err != nil {
		return nil, eris.Wrap(err, "detect: openai signal detection")
	}
	return parseSignals(content, company, source), nil
}

func (e *OpenAIExtractor) GenerateOutreach(ctx context.Context, req OutreachRequest) (string, error) {
	content, err := e.complete(ctx, "generate_outreach", openai.ChatCompletionNewParams{
		Model: e.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(outreachPrompt(req)),
		},
		Temperature: openai.Float(outreachTemperature),
		MaxTokens:   openai.Int(maxOutreachTokens),
	})
	if err != nil {
		return "", eris.Wrap(err, "detect: openai outreach")
	}
	return strings.TrimSpace(content), nil
}
