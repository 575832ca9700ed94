package agent

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sago-ventures/reengage-cli/internal/model"
)

const (
	// DefaultConfidenceThreshold is the minimum signal confidence for
	// actionability when no override is configured.
	DefaultConfidenceThreshold = 0.6

	// DefaultCooldownDays is the minimum gap between touchpoints when no
	// override is configured.
	DefaultCooldownDays = 14
)

// Policy decides whether re-engagement is warranted. It runs three ordered
// gates and short-circuits at the first failure: actionability, cooldown,
// and follow-up trigger match.
type Policy struct {
	ConfidenceThreshold float64
	CooldownDays        int

	filter *SignalFilter
	clock  Clock
}

// NewPolicy creates a Policy sharing the given filter and clock.
func NewPolicy(confidenceThreshold float64, cooldownDays int, filter *SignalFilter, clock Clock) *Policy {
	if clock == nil {
		clock = systemClock
	}
	if filter == nil {
		filter = NewSignalFilter(nil, clock)
	}
	return &Policy{
		ConfidenceThreshold: confidenceThreshold,
		CooldownDays:        cooldownDays,
		filter:              filter,
		clock:               clock,
	}
}

// ShouldReengage returns the go/no-go decision and a human-readable reason.
// lastInteraction may be nil for first-ever contact, which passes the
// cooldown and trigger gates automatically.
func (p *Policy) ShouldReengage(signals []model.Signal, lastInteraction *model.Interaction) (bool, string) {
	actionable := p.filter.FilterActionable(signals, p.ConfidenceThreshold)
	if len(actionable) == 0 {
		return false, "No signals above confidence threshold"
	}

	if lastInteraction != nil {
		daysSince := int(p.clock().Sub(lastInteraction.OccurredAt).Hours() / 24)
		if daysSince < p.CooldownDays {
			zap.L().Debug("policy: within cooldown",
				zap.String("company_id", lastInteraction.CompanyID),
				zap.Int("days_since", daysSince),
				zap.Int("cooldown_days", p.CooldownDays),
			)
			return false, fmt.Sprintf("Within %d-day cooldown period", p.CooldownDays)
		}
	}

	if lastInteraction != nil && lastInteraction.FollowUpTrigger != "" {
		if !matchesTrigger(actionable, lastInteraction.FollowUpTrigger) {
			return false, "Signals do not match agreed follow-up trigger"
		}
	}

	return true, fmt.Sprintf("Found %d actionable signals", len(actionable))
}

// matchesTrigger checks whether the actionable signals satisfy the agreed
// follow-up trigger phrase. At least half of the distinct trigger words
// (rounded down, minimum one) must appear somewhere in the combined
// title+description text.
func matchesTrigger(signals []model.Signal, trigger string) bool {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(foldText(trigger)) {
		words[w] = struct{}{}
	}
	if len(words) == 0 {
		return true
	}

	var sb strings.Builder
	for _, s := range signals {
		sb.WriteString(foldText(s.Title))
		sb.WriteString(" ")
		sb.WriteString(foldText(s.Description))
		sb.WriteString(" ")
	}
	text := sb.String()

	matched := 0
	for w := range words {
		if strings.Contains(text, w) {
			matched++
		}
	}

	required := len(words) / 2
	if required < 1 {
		required = 1
	}
	return matched >= required
}
