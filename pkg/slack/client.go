// Package slack is a minimal Slack Web API client covering the calls the
// re-engagement workflow needs: reading channel history and posting DMs.
package slack

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sago-ventures/reengage-cli/internal/model"
	"github.com/sago-ventures/reengage-cli/pkg/connector"
)

const defaultBaseURL = "https://slack.com/api"

// Slack Tier 3 methods allow ~50 requests per minute.
const requestsPerMinute = 50

// Client talks to the Slack Web API.
type Client interface {
	connector.Connector
	SetChannel(channelID string)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithChannel sets the channel polled by FetchMessages.
func WithChannel(channelID string) Option {
	return func(c *httpClient) {
		c.channelID = channelID
	}
}

type httpClient struct {
	botToken  string
	baseURL   string
	channelID string
	http      *http.Client
	limiter   *rate.Limiter
}

// NewClient creates a Slack Web API client authenticated with a bot token.
func NewClient(botToken string, opts ...Option) Client {
	c := &httpClient{
		botToken: botToken,
		baseURL:  defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(time.Minute/requestsPerMinute), 5),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Source() model.SignalSource {
	return model.SourceSlack
}

func (c *httpClient) SetChannel(channelID string) {
	c.channelID = channelID
}

// apiEnvelope is the common wrapper on every Web API response.
type apiEnvelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type authTestResponse struct {
	apiEnvelope
	UserID string `json:"user_id"`
	Team   string `json:"team"`
}

type historyResponse struct {
	apiEnvelope
	Messages []historyMessage `json:"messages"`
}

type historyMessage struct {
	Type     string `json:"type"`
	User     string `json:"user"`
	Text     string `json:"text"`
	TS       string `json:"ts"`
	ThreadTS string `json:"thread_ts,omitempty"`
}

type postMessageResponse struct {
	apiEnvelope
	TS      string `json:"ts"`
	Channel string `json:"channel"`
}

type openConversationResponse struct {
	apiEnvelope
	Channel struct {
		ID string `json:"id"`
	} `json:"channel"`
}

// Connect verifies the bot token via auth.test.
func (c *httpClient) Connect(ctx context.Context) error {
	var resp authTestResponse
	if err := c.call(ctx, "auth.test", url.Values{}, &resp); err != nil {
		return err
	}
	return nil
}

// Disconnect is a no-op; the Web API is stateless.
func (c *httpClient) Disconnect(_ context.Context) error {
	return nil
}

// HealthCheck re-runs the token check.
func (c *httpClient) HealthCheck(ctx context.Context) error {
	return c.Connect(ctx)
}

// FetchMessages reads conversation history for the configured channel. Bot
// and system messages are skipped.
func (c *httpClient) FetchMessages(ctx context.Context, since time.Time) ([]connector.Message, error) {
	if c.channelID == "" {
		return nil, eris.New("slack: no channel configured")
	}

	params := url.Values{}
	params.Set("channel", c.channelID)
	params.Set("oldest", strconv.FormatInt(since.Unix(), 10))
	params.Set("limit", "200")

	var resp historyResponse
	if err := c.call(ctx, "conversations.history", params, &resp); err != nil {
		return nil, err
	}

	var out []connector.Message
	for _, m := range resp.Messages {
		if m.Type != "message" || m.User == "" || m.Text == "" {
			continue
		}
		out = append(out, connector.Message{
			ID:        m.TS,
			Source:    model.SourceSlack,
			Sender:    m.User,
			Body:      m.Text,
			Timestamp: parseSlackTS(m.TS),
			ThreadID:  m.ThreadTS,
		})
	}
	return out, nil
}

// SendMessage opens a DM with the recipient user ID and posts content.
func (c *httpClient) SendMessage(ctx context.Context, recipient, content string) (string, error) {
	openParams := url.Values{}
	openParams.Set("users", recipient)

	var open openConversationResponse
	if err := c.call(ctx, "conversations.open", openParams, &open); err != nil {
		return "", err
	}

	postParams := url.Values{}
	postParams.Set("channel", open.Channel.ID)
	postParams.Set("text", content)

	var post postMessageResponse
	if err := c.call(ctx, "chat.postMessage", postParams, &post); err != nil {
		return "", err
	}
	return post.TS, nil
}

// call posts form-encoded params to a Web API method and decodes the
// response, surfacing Slack's ok=false errors.
func (c *httpClient) call(ctx context.Context, method string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "slack: rate limiter")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/"+method, strings.NewReader(params.Encode()))
	if err != nil {
		return eris.Wrapf(err, "slack: create request %s", method)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.botToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "slack: call %s", method)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrapf(err, "slack: read response %s", method)
	}
	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("slack: %s unexpected status %d: %s", method, resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "slack: unmarshal %s response", method)
	}

	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err == nil && !env.OK {
		return eris.Errorf("slack: %s failed: %s", method, env.Error)
	}
	return nil
}

// parseSlackTS converts a Slack "seconds.micros" timestamp string.
func parseSlackTS(ts string) time.Time {
	parts := strings.SplitN(ts, ".", 2)
	sec, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}
	}
	var micros int64
	if len(parts) == 2 {
		micros, _ = strconv.ParseInt(parts[1], 10, 64)
	}
	return time.Unix(sec, micros*1000).UTC()
}
