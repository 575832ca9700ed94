package slack

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sago-ventures/reengage-cli/internal/model"
)

func TestConnect(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "success",
			body: `{"ok": true, "user_id": "U123", "team": "fund"}`,
		},
		{
			name:    "bad_token",
			body:    `{"ok": false, "error": "invalid_auth"}`,
			wantErr: "invalid_auth",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/auth.test", r.URL.Path)
				assert.Equal(t, "Bearer xoxb-test", r.Header.Get("Authorization"))
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient("xoxb-test", WithBaseURL(srv.URL))
			err := c.Connect(context.Background())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestFetchMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/conversations.history", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "C999", r.FormValue("channel"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"ok": true,
			"messages": [
				{"type": "message", "user": "U1", "text": "we just closed our first enterprise pilot", "ts": "1767225600.000100"},
				{"type": "message", "user": "", "text": "bot noise", "ts": "1767225700.000000"},
				{"type": "channel_join", "user": "U2", "text": "joined", "ts": "1767225800.000000"}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient("xoxb-test", WithBaseURL(srv.URL), WithChannel("C999"))
	msgs, err := c.FetchMessages(context.Background(), time.Unix(1767000000, 0))
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "U1", msgs[0].Sender)
	assert.Equal(t, model.SourceSlack, msgs[0].Source)
	assert.Contains(t, msgs[0].Body, "enterprise pilot")
	assert.Equal(t, int64(1767225600), msgs[0].Timestamp.Unix())
}

func TestFetchMessages_NoChannel(t *testing.T) {
	c := NewClient("xoxb-test")
	_, err := c.FetchMessages(context.Background(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no channel configured")
}

func TestSendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/conversations.open":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "U42", r.FormValue("users"))
			_, _ = w.Write([]byte(`{"ok": true, "channel": {"id": "D777"}}`))
		case "/chat.postMessage":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "D777", r.FormValue("channel"))
			assert.Equal(t, "hello from the fund", r.FormValue("text"))
			_, _ = w.Write([]byte(`{"ok": true, "ts": "1767225900.000200", "channel": "D777"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClient("xoxb-test", WithBaseURL(srv.URL))
	id, err := c.SendMessage(context.Background(), "U42", "hello from the fund")
	require.NoError(t, err)
	assert.Equal(t, "1767225900.000200", id)
}

func TestParseSlackTS(t *testing.T) {
	ts := parseSlackTS("1767225600.000100")
	assert.Equal(t, int64(1767225600), ts.Unix())
	assert.True(t, parseSlackTS("garbage").IsZero())
}
