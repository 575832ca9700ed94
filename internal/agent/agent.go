// Package agent implements the re-engagement decision pipeline: signal
// filtering and prioritization, the go/no-go policy, action planning, and
// templated outreach generation. The whole pipeline is synchronous, pure
// computation plus string templating; connectors, LLM extraction, and
// persistence live outside it.
package agent

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sago-ventures/reengage-cli/internal/model"
)

// Config holds the tunable policy parameters for the agent.
type Config struct {
	ConfidenceThreshold float64
	CooldownDays        int
	// TypeWeights overrides the built-in per-kind score weights when non-nil.
	TypeWeights map[model.SignalType]float64
}

// DefaultConfig returns the compiled-in policy parameters.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		CooldownDays:        DefaultCooldownDays,
	}
}

// Agent orchestrates policy, filtering, planning, and outreach generation
// into a single Evaluate call.
type Agent struct {
	policy    *Policy
	planner   *ActionPlanner
	generator *OutreachGenerator
	filter    *SignalFilter
}

// New creates an Agent. A nil clock falls back to the system clock.
func New(cfg Config, clock Clock) *Agent {
	if clock == nil {
		clock = systemClock
	}
	filter := NewSignalFilter(cfg.TypeWeights, clock)
	return &Agent{
		policy:    NewPolicy(cfg.ConfidenceThreshold, cfg.CooldownDays, filter, clock),
		planner:   NewActionPlanner(),
		generator: NewOutreachGenerator(),
		filter:    filter,
	}
}

// Evaluate decides whether to re-engage the company and builds a plan if
// warranted. A nil plan with a nil error is the designed no-plan outcome;
// the policy's rejection reason is logged but not returned.
func (a *Agent) Evaluate(user model.UserProfile, company model.Company, signals []model.Signal, lastInteraction *model.Interaction) (*model.ReengagementPlan, error) {
	engage, reason := a.policy.ShouldReengage(signals, lastInteraction)
	if !engage {
		zap.L().Info("agent: no re-engagement",
			zap.String("company_id", company.ID),
			zap.String("reason", reason),
		)
		return nil, nil
	}

	actionable := a.filter.FilterActionable(signals, a.policy.ConfidenceThreshold)
	prioritized := a.filter.Prioritize(actionable)
	if len(prioritized) == 0 {
		return nil, eris.Errorf("agent: no prioritized signals for company %s on accept path", company.ID)
	}

	outreach := a.generator.Generate(company, prioritized, user, lastInteraction)
	actions := a.planner.Plan(prioritized, company.ID)

	for i := range actions {
		if actions[i].Type == model.ActionSendEmail {
			actions[i].Content = outreach
		}
	}

	confidence := prioritized[0].Confidence
	for _, s := range prioritized[1:] {
		if s.Confidence > confidence {
			confidence = s.Confidence
		}
	}

	plan := model.NewReengagementPlan(user.ID, company.ID)
	plan.Signals = prioritized
	plan.Actions = actions
	plan.OutreachMessage = outreach
	plan.Reasoning = reason
	plan.Confidence = confidence

	zap.L().Info("agent: plan built",
		zap.String("company_id", company.ID),
		zap.String("plan_id", plan.ID),
		zap.Int("signals", len(prioritized)),
		zap.Int("actions", len(actions)),
		zap.Float64("confidence", confidence),
	)

	return &plan, nil
}
