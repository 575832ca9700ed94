package model

import (
	"time"

	"github.com/google/uuid"
)

// Interaction records a past touchpoint with a company. Immutable once
// created; the most recent one gates re-engagement timing.
type Interaction struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	CompanyID       string    `json:"company_id"`
	Type            string    `json:"type"`
	OccurredAt      time.Time `json:"occurred_at"`
	Summary         string    `json:"summary"`
	Notes           string    `json:"notes,omitempty"`
	Outcome         string    `json:"outcome,omitempty"`
	FollowUpTrigger string    `json:"follow_up_trigger,omitempty"`
	TopicsDiscussed []string  `json:"topics_discussed,omitempty"`
}

// NewInteraction creates an Interaction with a fresh ID.
func NewInteraction(userID, companyID, interactionType string, occurredAt time.Time, summary string) Interaction {
	return Interaction{
		ID:         uuid.NewString(),
		UserID:     userID,
		CompanyID:  companyID,
		Type:       interactionType,
		OccurredAt: occurredAt,
		Summary:    summary,
	}
}
