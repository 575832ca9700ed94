package agent

import (
	"fmt"
	"strings"

	"github.com/sago-ventures/reengage-cli/internal/model"
)

// ActionPlanner maps a prioritized signal set to a concrete, ordered list
// of follow-up actions.
type ActionPlanner struct{}

// NewActionPlanner creates an ActionPlanner.
func NewActionPlanner() *ActionPlanner {
	return &ActionPlanner{}
}

// Plan builds the action list for a company. The outreach email always
// comes first and the CRM log always comes last; in between, each signal
// kind contributes at most one secondary action, in first-occurrence
// order. No action is ever marked executed here.
func (p *ActionPlanner) Plan(signals []model.Signal, companyID string) []model.PlannedAction {
	allIDs := make([]string, len(signals))
	for i, s := range signals {
		allIDs[i] = s.ID
	}

	actions := []model.PlannedAction{
		model.NewPlannedAction(model.ActionSendEmail, companyID,
			"Draft personalized re-engagement email", allIDs, true),
	}

	var order []model.SignalType
	groups := make(map[model.SignalType][]model.Signal)
	for _, s := range signals {
		if _, seen := groups[s.Type]; !seen {
			order = append(order, s.Type)
		}
		groups[s.Type] = append(groups[s.Type], s)
	}

	for _, kind := range order {
		group := groups[kind]
		ids := make([]string, len(group))
		for i, s := range group {
			ids[i] = s.ID
		}

		switch kind {
		case model.SignalNeed:
			actions = append(actions, model.NewPlannedAction(model.ActionShareResource, companyID,
				fmt.Sprintf("Share resources (triggered by: %s)", groupTitles(group)), ids, false))
		case model.SignalHiring:
			actions = append(actions, model.NewPlannedAction(model.ActionRequestIntro, companyID,
				fmt.Sprintf("Offer candidate intros (triggered by: %s)", groupTitles(group)), ids, true))
		case model.SignalRisk:
			actions = append(actions, model.NewPlannedAction(model.ActionFlagForReview, companyID,
				fmt.Sprintf("Flag for review (triggered by: %s)", groupTitles(group)), ids, false))
		}
	}

	actions = append(actions, model.NewPlannedAction(model.ActionLogToCRM, companyID,
		"Record signals and outreach in CRM", allIDs, false))

	return actions
}

// groupTitles cites up to two signal titles from a group.
func groupTitles(group []model.Signal) string {
	titles := make([]string, 0, 2)
	for _, s := range group {
		titles = append(titles, s.Title)
		if len(titles) == 2 {
			break
		}
	}
	return strings.Join(titles, ", ")
}
