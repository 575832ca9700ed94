package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// SignalType classifies what a detected signal says about a company.
type SignalType string

const (
	SignalTraction        SignalType = "traction"
	SignalHiring          SignalType = "hiring"
	SignalFunding         SignalType = "funding"
	SignalPartnership     SignalType = "partnership"
	SignalProductLaunch   SignalType = "product_launch"
	SignalNeed            SignalType = "need"
	SignalRisk            SignalType = "risk"
	SignalExecutiveChange SignalType = "executive_change"
)

// ParseSignalType validates a signal type label from an external payload.
func ParseSignalType(s string) (SignalType, error) {
	switch t := SignalType(s); t {
	case SignalTraction, SignalHiring, SignalFunding, SignalPartnership,
		SignalProductLaunch, SignalNeed, SignalRisk, SignalExecutiveChange:
		return t, nil
	}
	return "", eris.Errorf("model: unknown signal type %q", s)
}

// SignalSource identifies the channel a signal was detected on.
type SignalSource string

const (
	SourceGmail       SignalSource = "gmail"
	SourceSlack       SignalSource = "slack"
	SourceLinkedIn    SignalSource = "linkedin"
	SourceTwitter     SignalSource = "twitter"
	SourceNews        SignalSource = "news"
	SourceCrunchbase  SignalSource = "crunchbase"
	SourceCompanySite SignalSource = "company_site"
	SourceManual      SignalSource = "manual"
)

// ParseSignalSource validates a signal source label from an external payload.
func ParseSignalSource(s string) (SignalSource, error) {
	switch src := SignalSource(s); src {
	case SourceGmail, SourceSlack, SourceLinkedIn, SourceTwitter,
		SourceNews, SourceCrunchbase, SourceCompanySite, SourceManual:
		return src, nil
	}
	return "", eris.Errorf("model: unknown signal source %q", s)
}

// Signal is a discrete, timestamped piece of evidence about a company's
// trajectory, with a probability-like confidence score in [0, 1].
type Signal struct {
	ID          string       `json:"id"`
	CompanyID   string       `json:"company_id"`
	Type        SignalType   `json:"type"`
	Source      SignalSource `json:"source"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Evidence    string       `json:"evidence"`
	Confidence  float64      `json:"confidence"`
	SourceURL   string       `json:"source_url,omitempty"`
	DetectedAt  time.Time    `json:"detected_at"`
	Embedding   []float64    `json:"embedding,omitempty"`
}

// NewSignal creates a Signal with a fresh ID and detection timestamp.
func NewSignal(companyID string, typ SignalType, source SignalSource, title, description, evidence string, confidence float64) Signal {
	return Signal{
		ID:          uuid.NewString(),
		CompanyID:   companyID,
		Type:        typ,
		Source:      source,
		Title:       title,
		Description: description,
		Evidence:    evidence,
		Confidence:  confidence,
		DetectedAt:  time.Now().UTC(),
	}
}

// IsActionable reports whether the signal clears the confidence threshold
// and is not a risk signal. Risk signals are reviewed, never acted on.
func (s Signal) IsActionable(threshold float64) bool {
	return s.Confidence >= threshold && s.Type != SignalRisk
}
