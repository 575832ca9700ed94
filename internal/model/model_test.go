package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignalType(t *testing.T) {
	t.Parallel()

	valid := []string{
		"traction", "hiring", "funding", "partnership",
		"product_launch", "need", "risk", "executive_change",
	}
	for _, label := range valid {
		t.Run(label, func(t *testing.T) {
			t.Parallel()
			typ, err := ParseSignalType(label)
			require.NoError(t, err)
			assert.Equal(t, label, string(typ))
		})
	}

	_, err := ParseSignalType("acquisition")
	assert.Error(t, err)
}

func TestParseSignalSource(t *testing.T) {
	t.Parallel()

	src, err := ParseSignalSource("linkedin")
	require.NoError(t, err)
	assert.Equal(t, SourceLinkedIn, src)

	_, err = ParseSignalSource("carrier_pigeon")
	assert.Error(t, err)
}

func TestParseActionType(t *testing.T) {
	t.Parallel()

	a, err := ParseActionType("log_to_crm")
	require.NoError(t, err)
	assert.Equal(t, ActionLogToCRM, a)

	_, err = ParseActionType("send_fax")
	assert.Error(t, err)
}

func TestParseChannelType(t *testing.T) {
	t.Parallel()

	c, err := ParseChannelType("slack")
	require.NoError(t, err)
	assert.Equal(t, ChannelSlack, c)

	_, err = ParseChannelType("pager")
	assert.Error(t, err)
}

func TestSignalIsActionable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		typ        SignalType
		confidence float64
		threshold  float64
		want       bool
	}{
		{"above threshold", SignalTraction, 0.8, 0.6, true},
		{"at threshold", SignalFunding, 0.6, 0.6, true},
		{"below threshold", SignalHiring, 0.4, 0.6, false},
		{"risk never actionable", SignalRisk, 0.95, 0.6, false},
		{"zero threshold", SignalNeed, 0.01, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := Signal{Type: tt.typ, Confidence: tt.confidence}
			assert.Equal(t, tt.want, s.IsActionable(tt.threshold))
		})
	}
}

func TestConstructorsAssignIDs(t *testing.T) {
	t.Parallel()

	s := NewSignal("c1", SignalTraction, SourceManual, "t", "d", "e", 0.7)
	assert.NotEmpty(t, s.ID)
	assert.False(t, s.DetectedAt.IsZero())

	c := NewCompany("Northwind AI")
	assert.NotEmpty(t, c.ID)

	u := NewUserProfile("Alex Chen", "alex@sagovc.com")
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "professional", u.CommunicationTone)

	p := NewReengagementPlan(u.ID, c.ID)
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.Approved)
	assert.False(t, p.Executed)

	a := NewPlannedAction(ActionSendEmail, c.ID, "draft email", []string{s.ID}, true)
	assert.NotEmpty(t, a.ID)
	assert.True(t, a.RequiresApproval)
	assert.False(t, a.Executed)
}
