package agent

import (
	"fmt"
	"strings"

	"github.com/sago-ventures/reengage-cli/internal/model"
)

const (
	maxOutreachSignals   = 3
	maxThesisKeywords    = 3
	maxAvailabilitySlots = 2
	fallbackThesisPhrase = "our focus"
	fallbackAvailability = "this week"
)

// outreachTemplate is the fixed six-paragraph message contract. Only the
// substituted values vary between calls.
const outreachTemplate = `Hi %s team,

Hope you are well. We chatted previously and I mentioned I would love to reconnect once you hit some key milestones. Looks like things are moving.

I noticed a few updates:
%s

This caught my attention since it aligns with what we look for around %s. Congratulations on the progress.

If it would be helpful, happy to share resources or connect you with folks from our portfolio who have navigated similar stages.

I have time %s if you want to catch up. Let me know what works.

Best,
%s`

// OutreachGenerator renders a personalized re-engagement message from the
// fixed template. Deterministic, no external calls; the LLM-backed
// generator in internal/detect is the non-deterministic alternative.
type OutreachGenerator struct{}

// NewOutreachGenerator creates an OutreachGenerator.
func NewOutreachGenerator() *OutreachGenerator {
	return &OutreachGenerator{}
}

// Generate fills the template with the top signal titles, the user's
// thesis keywords, and their availability. lastInteraction is accepted as
// context but the template does not currently weave its notes in.
func (g *OutreachGenerator) Generate(company model.Company, signals []model.Signal, user model.UserProfile, lastInteraction *model.Interaction) string {
	_ = lastInteraction

	bullets := make([]string, 0, maxOutreachSignals)
	for _, s := range signals {
		bullets = append(bullets, "  - "+s.Title)
		if len(bullets) == maxOutreachSignals {
			break
		}
	}

	thesis := fallbackThesisPhrase
	if len(user.ThesisKeywords) > 0 {
		kw := user.ThesisKeywords
		if len(kw) > maxThesisKeywords {
			kw = kw[:maxThesisKeywords]
		}
		thesis = strings.Join(kw, ", ")
	}

	availability := fallbackAvailability
	if len(user.AvailabilitySlots) > 0 {
		slots := user.AvailabilitySlots
		if len(slots) > maxAvailabilitySlots {
			slots = slots[:maxAvailabilitySlots]
		}
		availability = strings.Join(slots, " or ")
	}

	return fmt.Sprintf(outreachTemplate,
		company.Name,
		strings.Join(bullets, "\n"),
		thesis,
		availability,
		user.Name,
	)
}
