// Package telegram adapts a Telegram bot to the connector interface.
package telegram

import (
	"context"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rotisserie/eris"

	"github.com/sago-ventures/reengage-cli/internal/model"
	"github.com/sago-ventures/reengage-cli/pkg/connector"
)

// Client adapts a Telegram bot to the connector interface. The bot is
// created lazily on Connect so construction never touches the network.
type Client struct {
	token    string
	endpoint string
	http     tgbotapi.HTTPClient
	api      *tgbotapi.BotAPI
}

// Option configures the client.
type Option func(*Client)

// WithEndpoint overrides the Bot API endpoint. Used by tests.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient overrides the HTTP client used by the bot.
func WithHTTPClient(hc tgbotapi.HTTPClient) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates a Telegram connector for the given bot token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:    token,
		endpoint: tgbotapi.APIEndpoint,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Source() model.SignalSource {
	return model.SourceManual
}

// Connect builds the bot API handle, which validates the token via getMe.
func (c *Client) Connect(_ context.Context) error {
	if c.api != nil {
		return nil
	}
	var (
		api *tgbotapi.BotAPI
		err error
	)
	if c.http != nil {
		api, err = tgbotapi.NewBotAPIWithClient(c.token, c.endpoint, c.http)
	} else {
		api, err = tgbotapi.NewBotAPIWithAPIEndpoint(c.token, c.endpoint)
	}
	if err != nil {
		return eris.Wrap(err, "telegram: create bot")
	}
	c.api = api
	return nil
}

// Disconnect drops the bot handle.
func (c *Client) Disconnect(_ context.Context) error {
	c.api = nil
	return nil
}

// HealthCheck verifies the token is still valid.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.api == nil {
		return c.Connect(ctx)
	}
	if _, err := c.api.GetMe(); err != nil {
		return eris.Wrap(err, "telegram: get me")
	}
	return nil
}

// FetchMessages drains pending bot updates and returns text messages
// received at or after since.
func (c *Client) FetchMessages(_ context.Context, since time.Time) ([]connector.Message, error) {
	if c.api == nil {
		return nil, eris.New("telegram: not connected")
	}

	updates, err := c.api.GetUpdates(tgbotapi.UpdateConfig{Limit: 100, Timeout: 0})
	if err != nil {
		return nil, eris.Wrap(err, "telegram: get updates")
	}

	var out []connector.Message
	for _, u := range updates {
		if u.Message == nil || u.Message.Text == "" {
			continue
		}
		ts := time.Unix(int64(u.Message.Date), 0).UTC()
		if ts.Before(since) {
			continue
		}
		out = append(out, connector.Message{
			ID:        strconv.Itoa(u.Message.MessageID),
			Source:    model.SourceManual,
			Sender:    strconv.FormatInt(u.Message.From.ID, 10),
			Body:      u.Message.Text,
			Timestamp: ts,
			ThreadID:  strconv.FormatInt(u.Message.Chat.ID, 10),
		})
	}
	return out, nil
}

// SendMessage posts content to the recipient chat ID.
func (c *Client) SendMessage(_ context.Context, recipient, content string) (string, error) {
	if c.api == nil {
		return "", eris.New("telegram: not connected")
	}

	chatID, err := strconv.ParseInt(recipient, 10, 64)
	if err != nil {
		return "", eris.Wrapf(err, "telegram: invalid chat id %q", recipient)
	}

	msg := tgbotapi.NewMessage(chatID, content)
	msg.DisableWebPagePreview = true

	sent, err := c.api.Send(msg)
	if err != nil {
		return "", eris.Wrap(err, "telegram: send message")
	}
	return strconv.Itoa(sent.MessageID), nil
}
