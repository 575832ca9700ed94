package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sago-ventures/reengage-cli/internal/model"
)

func TestPlanAlwaysBracketedByEmailAndCRMLog(t *testing.T) {
	t.Parallel()

	p := NewActionPlanner()
	signals := []model.Signal{
		testSignal(model.SignalTraction, 0.9, time.Hour),
		testSignal(model.SignalFunding, 0.8, time.Hour),
	}

	actions := p.Plan(signals, "c1")

	require.NotEmpty(t, actions)
	assert.Equal(t, model.ActionSendEmail, actions[0].Type)
	assert.True(t, actions[0].RequiresApproval)
	assert.Equal(t, "Draft personalized re-engagement email", actions[0].Description)
	assert.Equal(t, model.ActionLogToCRM, actions[len(actions)-1].Type)
	assert.False(t, actions[len(actions)-1].RequiresApproval)

	emails, crmLogs := 0, 0
	for _, a := range actions {
		switch a.Type {
		case model.ActionSendEmail:
			emails++
		case model.ActionLogToCRM:
			crmLogs++
		}
	}
	assert.Equal(t, 1, emails)
	assert.Equal(t, 1, crmLogs)
}

func TestPlanPrimaryAndLogCoverAllSignals(t *testing.T) {
	t.Parallel()

	p := NewActionPlanner()
	signals := []model.Signal{
		testSignal(model.SignalTraction, 0.9, time.Hour),
		testSignal(model.SignalNeed, 0.7, time.Hour),
		testSignal(model.SignalHiring, 0.68, time.Hour),
	}

	actions := p.Plan(signals, "c1")

	wantIDs := []string{signals[0].ID, signals[1].ID, signals[2].ID}
	assert.Equal(t, wantIDs, actions[0].SignalIDs)
	assert.Equal(t, wantIDs, actions[len(actions)-1].SignalIDs)
}

func TestPlanSecondaryActionsPerKind(t *testing.T) {
	t.Parallel()

	p := NewActionPlanner()
	needA := testSignal(model.SignalNeed, 0.75, time.Hour)
	needA.Title = "SOC2 readiness help requested"
	needB := testSignal(model.SignalNeed, 0.7, time.Hour)
	needB.Title = "Pricing model advice wanted"
	needC := testSignal(model.SignalNeed, 0.65, time.Hour)
	needC.Title = "Security review support"
	hiring := testSignal(model.SignalHiring, 0.68, time.Hour)
	hiring.Title = "First sales leadership hire"
	risk := testSignal(model.SignalRisk, 0.9, time.Hour)
	risk.Title = "Key engineer departed"
	traction := testSignal(model.SignalTraction, 0.9, time.Hour)

	actions := p.Plan([]model.Signal{needA, hiring, needB, risk, traction, needC}, "c1")

	// email + share_resource + request_intro + flag_for_review + log_to_crm;
	// traction contributes no secondary action and need collapses to one.
	require.Len(t, actions, 5)

	share := actions[1]
	assert.Equal(t, model.ActionShareResource, share.Type)
	assert.False(t, share.RequiresApproval)
	assert.Equal(t, []string{needA.ID, needB.ID, needC.ID}, share.SignalIDs)
	assert.Contains(t, share.Description, "SOC2 readiness help requested")
	assert.Contains(t, share.Description, "Pricing model advice wanted")
	assert.NotContains(t, share.Description, "Security review support", "only two titles cited")

	intro := actions[2]
	assert.Equal(t, model.ActionRequestIntro, intro.Type)
	assert.True(t, intro.RequiresApproval)
	assert.Equal(t, []string{hiring.ID}, intro.SignalIDs)
	assert.Contains(t, intro.Description, "First sales leadership hire")

	flag := actions[3]
	assert.Equal(t, model.ActionFlagForReview, flag.Type)
	assert.False(t, flag.RequiresApproval)
	assert.Equal(t, []string{risk.ID}, flag.SignalIDs)
}

func TestPlanGroupOrderFollowsFirstOccurrence(t *testing.T) {
	t.Parallel()

	p := NewActionPlanner()
	hiring := testSignal(model.SignalHiring, 0.7, time.Hour)
	need := testSignal(model.SignalNeed, 0.8, time.Hour)

	actions := p.Plan([]model.Signal{hiring, need}, "c1")

	require.Len(t, actions, 4)
	assert.Equal(t, model.ActionRequestIntro, actions[1].Type)
	assert.Equal(t, model.ActionShareResource, actions[2].Type)
}

func TestPlanNeverMarksExecuted(t *testing.T) {
	t.Parallel()

	p := NewActionPlanner()
	actions := p.Plan([]model.Signal{testSignal(model.SignalNeed, 0.8, time.Hour)}, "c1")

	for _, a := range actions {
		assert.False(t, a.Executed)
		assert.Equal(t, "c1", a.CompanyID)
	}
}
