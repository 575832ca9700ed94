// Package detect extracts business signals from raw text using an LLM
// and drafts free-form outreach. Parsing is fail-soft: a malformed model
// response yields zero signals rather than an error, so one bad
// completion never stalls a batch run.
package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sago-ventures/reengage-cli/internal/model"
)

const detectSystemPrompt = `Extract business signals from text. Return JSON list with:
- signal_type: traction, hiring, funding, need, risk, product_launch, partnership, executive_change
- title: brief headline
- description: 1-2 sentences
- evidence: quote from text
- confidence: 0.0 to 1.0

Return [] if no signals found.`

// OutreachRequest carries the inputs for a drafted re-engagement message.
type OutreachRequest struct {
	Company      model.Company
	Signals      []model.Signal
	Notes        string
	Thesis       []string
	Availability []string
}

// Extractor detects signals in text and drafts outreach messages.
type Extractor interface {
	DetectSignals(ctx context.Context, text string, company model.Company, source model.SignalSource) ([]model.Signal, error)
	GenerateOutreach(ctx context.Context, req OutreachRequest) (string, error)
}

// signalPayload is the JSON shape the detection prompt asks for.
type signalPayload struct {
	SignalType  string  `json:"signal_type"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Evidence    string  `json:"evidence"`
	Confidence  float64 `json:"confidence"`
}

// extractJSON strips a markdown code fence when the model wraps its
// output in one.
func extractJSON(content string) string {
	if idx := strings.Index(content, "```json"); idx >= 0 {
		rest := content[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return rest[:end]
		}
		return rest
	}
	if idx := strings.Index(content, "```"); idx >= 0 {
		rest := content[idx+3:]
		if end := strings.Index(rest, "```"); end >= 0 {
			return rest[:end]
		}
		return rest
	}
	return content
}

// parseSignals decodes the detection payload. Any decoding or validation
// failure returns nil.
func parseSignals(content string, company model.Company, source model.SignalSource) []model.Signal {
	var payloads []signalPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(extractJSON(content))), &payloads); err != nil {
		zap.L().Warn("detect: unparseable model response",
			zap.String("company_id", company.ID),
			zap.Error(err),
		)
		return nil
	}

	signals := make([]model.Signal, 0, len(payloads))
	for _, p := range payloads {
		typ, err := model.ParseSignalType(p.SignalType)
		if err != nil {
			zap.L().Warn("detect: invalid signal payload",
				zap.String("company_id", company.ID),
				zap.Error(err),
			)
			return nil
		}
		if p.Confidence < 0 || p.Confidence > 1 {
			zap.L().Warn("detect: confidence out of range",
				zap.String("company_id", company.ID),
				zap.Float64("confidence", p.Confidence),
			)
			return nil
		}
		signals = append(signals, model.NewSignal(company.ID, typ, source, p.Title, p.Description, p.Evidence, p.Confidence))
	}
	return signals
}

// detectUserPrompt formats the user turn for signal detection.
func detectUserPrompt(text string, company model.Company) string {
	return fmt.Sprintf("Company: %s\n\nText:\n%s", company.Name, text)
}

// outreachPrompt formats the drafting prompt.
func outreachPrompt(req OutreachRequest) string {
	lines := make([]string, 0, len(req.Signals))
	for _, s := range req.Signals {
		lines = append(lines, fmt.Sprintf("- %s: %s", s.Title, s.Description))
	}

	thesis := "our focus"
	if len(req.Thesis) > 0 {
		thesis = strings.Join(req.Thesis, ", ")
	}
	availability := "this week"
	if len(req.Availability) > 0 {
		availability = strings.Join(req.Availability, ", ")
	}

	return fmt.Sprintf(`Write a re-engagement email to %s.

Previous notes: %s

New signals:
%s

Investor thesis: %s
Availability: %s

Write concisely (under 150 words), reference past conversation, highlight new signals, offer help.`,
		req.Company.Name, req.Notes, strings.Join(lines, "\n"), thesis, availability)
}
