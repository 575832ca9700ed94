package agent

import "github.com/sago-ventures/reengage-cli/internal/model"

// PlanSummary is the serialization-ready projection of a successful plan.
// It only exists for accepted evaluations; the no-plan outcome has no
// summary form.
type PlanSummary struct {
	CompanyID       string          `json:"company_id"`
	ShouldReengage  bool            `json:"should_reengage"`
	Reason          string          `json:"reason"`
	Confidence      float64         `json:"confidence"`
	SignalsUsed     []SignalSummary `json:"signals_used"`
	Actions         []ActionSummary `json:"actions"`
	OutreachMessage string          `json:"outreach_message"`
}

// SignalSummary is the per-signal slice of a PlanSummary.
type SignalSummary struct {
	Type       string  `json:"type"`
	Title      string  `json:"title"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// ActionSummary is the per-action slice of a PlanSummary.
type ActionSummary struct {
	Type             string `json:"type"`
	Description      string `json:"description"`
	RequiresApproval bool   `json:"requires_approval"`
}

// Summarize projects a plan into its JSON output shape.
func Summarize(plan *model.ReengagementPlan) PlanSummary {
	signals := make([]SignalSummary, len(plan.Signals))
	for i, s := range plan.Signals {
		signals[i] = SignalSummary{
			Type:       string(s.Type),
			Title:      s.Title,
			Confidence: s.Confidence,
			Source:     string(s.Source),
		}
	}

	actions := make([]ActionSummary, len(plan.Actions))
	for i, a := range plan.Actions {
		actions[i] = ActionSummary{
			Type:             string(a.Type),
			Description:      a.Description,
			RequiresApproval: a.RequiresApproval,
		}
	}

	return PlanSummary{
		CompanyID:       plan.CompanyID,
		ShouldReengage:  true,
		Reason:          plan.Reasoning,
		Confidence:      plan.Confidence,
		SignalsUsed:     signals,
		Actions:         actions,
		OutreachMessage: plan.OutreachMessage,
	}
}
