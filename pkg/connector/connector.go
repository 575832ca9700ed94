// Package connector defines the channel abstraction shared by the
// messaging integrations (Slack, Gmail, Telegram).
package connector

import (
	"context"
	"time"

	"github.com/sago-ventures/reengage-cli/internal/model"
)

// Message is a channel-agnostic inbound message used as raw material for
// signal detection.
type Message struct {
	ID        string             `json:"id"`
	Source    model.SignalSource `json:"source"`
	Sender    string             `json:"sender"`
	Recipient string             `json:"recipient,omitempty"`
	Subject   string             `json:"subject,omitempty"`
	Body      string             `json:"body"`
	Timestamp time.Time          `json:"timestamp"`
	ThreadID  string             `json:"thread_id,omitempty"`
}

// Connector is a messaging channel that can be polled for inbound
// messages and used to deliver outreach.
type Connector interface {
	// Source identifies the channel for signal attribution.
	Source() model.SignalSource

	// Connect validates credentials and prepares the connector for use.
	Connect(ctx context.Context) error

	// Disconnect releases any held resources. Safe to call when not connected.
	Disconnect(ctx context.Context) error

	// FetchMessages returns inbound messages received at or after since,
	// newest first.
	FetchMessages(ctx context.Context, since time.Time) ([]Message, error)

	// SendMessage delivers content to the recipient on this channel and
	// returns the channel-native message ID.
	SendMessage(ctx context.Context, recipient, content string) (string, error)

	// HealthCheck reports whether the channel is currently reachable.
	HealthCheck(ctx context.Context) error
}
