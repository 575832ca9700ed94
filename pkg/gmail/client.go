// Package gmail is a minimal Gmail REST API client. Outbound mail is
// created as a draft rather than sent directly, so the investor reviews
// every message before it leaves the account.
package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
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

const defaultBaseURL = "https://gmail.googleapis.com/gmail/v1"

// Client talks to the Gmail REST API for a single mailbox.
type Client interface {
	connector.Connector
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

type httpClient struct {
	accessToken string
	userEmail   string
	baseURL     string
	http        *http.Client
	limiter     *rate.Limiter
}

// NewClient creates a Gmail client for the given mailbox, authenticated
// with an OAuth access token.
func NewClient(accessToken, userEmail string, opts ...Option) Client {
	c := &httpClient{
		accessToken: accessToken,
		userEmail:   userEmail,
		baseURL:     defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Source() model.SignalSource {
	return model.SourceGmail
}

type profileResponse struct {
	EmailAddress string `json:"emailAddress"`
}

type listMessagesResponse struct {
	Messages []struct {
		ID       string `json:"id"`
		ThreadID string `json:"threadId"`
	} `json:"messages"`
}

type messageResponse struct {
	ID           string `json:"id"`
	ThreadID     string `json:"threadId"`
	Snippet      string `json:"snippet"`
	InternalDate string `json:"internalDate"`
	Payload      struct {
		Headers []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"headers"`
	} `json:"payload"`
}

type draftResponse struct {
	ID string `json:"id"`
}

// Connect verifies the token by fetching the mailbox profile.
func (c *httpClient) Connect(ctx context.Context) error {
	var profile profileResponse
	if err := c.get(ctx, "/users/me/profile", nil, &profile); err != nil {
		return err
	}
	if c.userEmail == "" {
		c.userEmail = profile.EmailAddress
	}
	return nil
}

// Disconnect is a no-op; the REST API is stateless.
func (c *httpClient) Disconnect(_ context.Context) error {
	return nil
}

// HealthCheck re-validates the token.
func (c *httpClient) HealthCheck(ctx context.Context) error {
	return c.Connect(ctx)
}

// FetchMessages lists inbox messages received after since and resolves
// each one's headers and snippet.
func (c *httpClient) FetchMessages(ctx context.Context, since time.Time) ([]connector.Message, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("in:inbox after:%d", since.Unix()))
	params.Set("maxResults", "50")

	var list listMessagesResponse
	if err := c.get(ctx, "/users/me/messages", params, &list); err != nil {
		return nil, err
	}

	var out []connector.Message
	for _, ref := range list.Messages {
		var msg messageResponse
		if err := c.get(ctx, "/users/me/messages/"+ref.ID, url.Values{"format": []string{"metadata"}}, &msg); err != nil {
			return nil, err
		}

		m := connector.Message{
			ID:        msg.ID,
			Source:    model.SourceGmail,
			Recipient: c.userEmail,
			Body:      msg.Snippet,
			ThreadID:  msg.ThreadID,
			Timestamp: parseInternalDate(msg.InternalDate),
		}
		for _, h := range msg.Payload.Headers {
			switch h.Name {
			case "From":
				m.Sender = h.Value
			case "Subject":
				m.Subject = h.Value
			}
		}
		out = append(out, m)
	}
	return out, nil
}

// SendMessage creates a draft addressed to the recipient. The first line
// of content is treated as the subject when it starts with "Subject:".
func (c *httpClient) SendMessage(ctx context.Context, recipient, content string) (string, error) {
	subject := "Reconnecting"
	body := content
	if strings.HasPrefix(content, "Subject:") {
		if idx := strings.Index(content, "\n"); idx > 0 {
			subject = strings.TrimSpace(strings.TrimPrefix(content[:idx], "Subject:"))
			body = strings.TrimLeft(content[idx+1:], "\n")
		}
	}

	raw := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		c.userEmail, recipient, subject, body)

	payload := map[string]any{
		"message": map[string]string{
			"raw": base64.URLEncoding.EncodeToString([]byte(raw)),
		},
	}
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return "", eris.Wrap(err, "gmail: marshal draft")
	}

	var draft draftResponse
	if err := c.post(ctx, "/users/me/drafts", reqBody, &draft); err != nil {
		return "", err
	}
	return draft.ID, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return eris.Wrapf(err, "gmail: create request %s", path)
	}
	return c.do(req, path, out)
}

func (c *httpClient) post(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return eris.Wrapf(err, "gmail: create request %s", path)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

func (c *httpClient) do(req *http.Request, path string, out any) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return eris.Wrap(err, "gmail: rate limiter")
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "gmail: call %s", path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrapf(err, "gmail: read response %s", path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return eris.Errorf("gmail: %s unexpected status %d: %s", path, resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "gmail: unmarshal %s response", path)
	}
	return nil
}

// parseInternalDate converts Gmail's millisecond epoch string.
func parseInternalDate(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
