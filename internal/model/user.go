package model

import (
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// ChannelType identifies an outreach delivery channel.
type ChannelType string

const (
	ChannelEmail    ChannelType = "email"
	ChannelSlack    ChannelType = "slack"
	ChannelWhatsApp ChannelType = "whatsapp"
	ChannelTelegram ChannelType = "telegram"
)

// ParseChannelType validates a channel label from an external payload.
func ParseChannelType(s string) (ChannelType, error) {
	switch c := ChannelType(s); c {
	case ChannelEmail, ChannelSlack, ChannelWhatsApp, ChannelTelegram:
		return c, nil
	}
	return "", eris.Errorf("model: unknown channel type %q", s)
}

// UserProfile describes the investor on whose behalf plans are built.
// Read-only input to evaluation and outreach generation.
type UserProfile struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Email             string        `json:"email"`
	FundName          string        `json:"fund_name,omitempty"`
	FundFocus         []string      `json:"fund_focus,omitempty"`
	ThesisKeywords    []string      `json:"thesis_keywords,omitempty"`
	CommunicationTone string        `json:"communication_tone,omitempty"`
	AvailabilitySlots []string      `json:"availability_slots,omitempty"`
	PreferredChannels []ChannelType `json:"preferred_channels,omitempty"`
}

// NewUserProfile creates a UserProfile with a fresh ID and the default
// communication tone.
func NewUserProfile(name, email string) UserProfile {
	return UserProfile{
		ID:                uuid.NewString(),
		Name:              name,
		Email:             email,
		CommunicationTone: "professional",
	}
}
