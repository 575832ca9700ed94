package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sago-ventures/reengage-cli/internal/model"
)

func TestConnect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me/profile", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"emailAddress": "alex@fund.vc"}`))
	}))
	defer srv.Close()

	c := NewClient("tok-123", "", WithBaseURL(srv.URL))
	require.NoError(t, c.Connect(context.Background()))
}

func TestConnect_BadToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"code": 401}}`))
	}))
	defer srv.Close()

	c := NewClient("bad", "alex@fund.vc", WithBaseURL(srv.URL))
	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 401")
}

func TestFetchMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/me/messages":
			assert.Contains(t, r.URL.Query().Get("q"), "in:inbox after:")
			_, _ = w.Write([]byte(`{"messages": [{"id": "m1", "threadId": "t1"}]}`))
		case "/users/me/messages/m1":
			assert.Equal(t, "metadata", r.URL.Query().Get("format"))
			_, _ = w.Write([]byte(`{
				"id": "m1",
				"threadId": "t1",
				"snippet": "We just crossed 500k ARR and signed two enterprise logos",
				"internalDate": "1767225600000",
				"payload": {"headers": [
					{"name": "From", "value": "founder@northwind.ai"},
					{"name": "Subject", "value": "Quick update"}
				]}
			}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClient("tok-123", "alex@fund.vc", WithBaseURL(srv.URL))
	msgs, err := c.FetchMessages(context.Background(), time.Unix(1767000000, 0))
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, model.SourceGmail, msgs[0].Source)
	assert.Equal(t, "founder@northwind.ai", msgs[0].Sender)
	assert.Equal(t, "Quick update", msgs[0].Subject)
	assert.Equal(t, "alex@fund.vc", msgs[0].Recipient)
	assert.Equal(t, int64(1767225600), msgs[0].Timestamp.Unix())
}

func TestSendMessage_CreatesDraft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/me/drafts", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var payload struct {
			Message struct {
				Raw string `json:"raw"`
			} `json:"message"`
		}
		require.NoError(t, json.Unmarshal(body, &payload))
		raw, err := base64.URLEncoding.DecodeString(payload.Message.Raw)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "To: founder@northwind.ai")
		assert.Contains(t, string(raw), "Subject: Catching up")
		assert.Contains(t, string(raw), "Hi Northwind AI team,")

		_, _ = w.Write([]byte(`{"id": "draft-9"}`))
	}))
	defer srv.Close()

	c := NewClient("tok-123", "alex@fund.vc", WithBaseURL(srv.URL))
	id, err := c.SendMessage(context.Background(), "founder@northwind.ai",
		"Subject: Catching up\n\nHi Northwind AI team,\n\nCongrats on the progress.")
	require.NoError(t, err)
	assert.Equal(t, "draft-9", id)
}

func TestParseInternalDate(t *testing.T) {
	assert.Equal(t, int64(1767225600), parseInternalDate("1767225600000").Unix())
	assert.True(t, parseInternalDate("not-a-number").IsZero())
}
