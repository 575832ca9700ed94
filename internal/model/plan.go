package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// ActionType classifies a unit of follow-up work.
type ActionType string

const (
	ActionSendEmail        ActionType = "send_email"
	ActionSendSlackDM      ActionType = "send_slack_dm"
	ActionCreateDraft      ActionType = "create_draft"
	ActionScheduleReminder ActionType = "schedule_reminder"
	ActionLogToCRM         ActionType = "log_to_crm"
	ActionShareResource    ActionType = "share_resource"
	ActionRequestIntro     ActionType = "request_intro"
	ActionFlagForReview    ActionType = "flag_for_review"
)

// ParseActionType validates an action type label from an external payload.
func ParseActionType(s string) (ActionType, error) {
	switch a := ActionType(s); a {
	case ActionSendEmail, ActionSendSlackDM, ActionCreateDraft, ActionScheduleReminder,
		ActionLogToCRM, ActionShareResource, ActionRequestIntro, ActionFlagForReview:
		return a, nil
	}
	return "", eris.Errorf("model: unknown action type %q", s)
}

// PlannedAction is one unit of follow-up work derived from signals.
// Executed is owned by the dispatcher, never by the planning core.
type PlannedAction struct {
	ID               string      `json:"id"`
	Type             ActionType  `json:"type"`
	CompanyID        string      `json:"company_id"`
	Description      string      `json:"description"`
	SignalIDs        []string    `json:"signal_ids,omitempty"`
	Channel          ChannelType `json:"channel,omitempty"`
	Content          string      `json:"content,omitempty"`
	RequiresApproval bool        `json:"requires_approval"`
	Executed         bool        `json:"executed"`
}

// NewPlannedAction creates a PlannedAction with a fresh ID. Actions require
// approval unless the planner explicitly marks them safe to auto-run.
func NewPlannedAction(typ ActionType, companyID, description string, signalIDs []string, requiresApproval bool) PlannedAction {
	return PlannedAction{
		ID:               uuid.NewString(),
		Type:             typ,
		CompanyID:        companyID,
		Description:      description,
		SignalIDs:        signalIDs,
		RequiresApproval: requiresApproval,
	}
}

// ReengagementPlan bundles the prioritized signals, proposed actions, and
// generated outreach produced by one successful evaluation. Approved and
// Executed are flipped externally after review and dispatch.
type ReengagementPlan struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	CompanyID       string          `json:"company_id"`
	Signals         []Signal        `json:"signals"`
	Actions         []PlannedAction `json:"actions"`
	OutreachMessage string          `json:"outreach_message"`
	Reasoning       string          `json:"reasoning"`
	Confidence      float64         `json:"confidence"`
	CreatedAt       time.Time       `json:"created_at"`
	Approved        bool            `json:"approved"`
	Executed        bool            `json:"executed"`
}

// NewReengagementPlan creates a ReengagementPlan with a fresh ID and
// creation timestamp.
func NewReengagementPlan(userID, companyID string) ReengagementPlan {
	return ReengagementPlan{
		ID:        uuid.NewString(),
		UserID:    userID,
		CompanyID: companyID,
		CreatedAt: time.Now().UTC(),
	}
}
