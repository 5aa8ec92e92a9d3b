package gmail_tools

import (
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/workspace-mcp/internal/auth"
	"github.com/teemow/workspace-mcp/internal/tools/batch"
	"github.com/teemow/workspace-mcp/internal/tools/tooltest"
)

func fakeGmail(t *testing.T, calls *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/users/me/messages"):
			assert.Equal(t, "is:unread", r.URL.Query().Get("q"))
			assert.Equal(t, "2", r.URL.Query().Get("maxResults"))
			tooltest.WriteJSON(w, map[string]any{
				"messages":           []map[string]string{{"id": "m1", "threadId": "t1"}, {"id": "m2", "threadId": "t2"}},
				"nextPageToken":      "next",
				"resultSizeEstimate": 40,
			})
		case strings.Contains(path, "/users/me/messages/"):
			id := path[strings.LastIndex(path, "/")+1:]
			if id == "missing" {
				w.WriteHeader(http.StatusNotFound)
				tooltest.WriteJSON(w, map[string]any{"error": map[string]any{"code": 404, "message": "Requested entity was not found."}})
				return
			}
			assert.Equal(t, "metadata", r.URL.Query().Get("format"))
			tooltest.WriteJSON(w, map[string]any{
				"id":       id,
				"threadId": "t-" + id,
				"snippet":  "hello " + id,
				"labelIds": []string{"INBOX", "UNREAD"},
				"payload": map[string]any{
					"headers": []map[string]string{
						{"name": "From", "value": "alice@example.com"},
						{"name": "Subject", "value": "Subject " + id},
						{"name": "Date", "value": "Mon, 1 Jan 2024 10:00:00 +0000"},
					},
				},
			})
		default:
			t.Errorf("unexpected request %s", path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestGmailListMessages(t *testing.T) {
	var calls atomic.Int32
	api := tooltest.NewAPI(t, fakeGmail(t, &calls))
	sc := tooltest.NewServerContext(t, api)
	tooltest.PutToken(t, sc, tooltest.DefaultSession, time.Hour)

	s := tooltest.NewMCPServer()
	require.NoError(t, RegisterGmailTools(s, sc))

	var out ListResult
	tooltest.Call(t, s, "gmail_list_messages", map[string]any{"query": "is:unread", "maxResults": 2.0}).DecodeData(t, &out)

	require.Len(t, out.Messages, 2)
	assert.Equal(t, "m1", out.Messages[0].ID)
	assert.Equal(t, "Subject m1", out.Messages[0].Subject)
	assert.Equal(t, "alice@example.com", out.Messages[1].From)
	assert.Equal(t, "next", out.NextPageToken)
	assert.Equal(t, int64(40), out.ResultSizeEstimate)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGmailGetMessage(t *testing.T) {
	var calls atomic.Int32
	api := tooltest.NewAPI(t, fakeGmail(t, &calls))
	sc := tooltest.NewServerContext(t, api)
	tooltest.PutToken(t, sc, "sess-7", time.Hour)

	s := tooltest.NewMCPServer()
	require.NoError(t, RegisterGmailTools(s, sc))

	t.Run("single id", func(t *testing.T) {
		var msg MessageSummary
		tooltest.Call(t, s, "gmail_get_message", map[string]any{"sessionId": "sess-7", "messageId": "m9"}).DecodeData(t, &msg)
		assert.Equal(t, "m9", msg.ID)
		assert.Equal(t, "t-m9", msg.ThreadID)
		assert.Equal(t, []string{"INBOX", "UNREAD"}, msg.LabelIDs)
	})

	t.Run("array with a missing id", func(t *testing.T) {
		var summary batch.Summary
		tooltest.Call(t, s, "gmail_get_message", map[string]any{
			"sessionId": "sess-7",
			"messageId": []any{"m1", "missing"},
		}).DecodeData(t, &summary)
		assert.Equal(t, 2, summary.Total)
		assert.Equal(t, 1, summary.Failed)
		assert.Contains(t, summary.Results[1].Error, "missing")
	})

	t.Run("json array string", func(t *testing.T) {
		var summary batch.Summary
		tooltest.Call(t, s, "gmail_get_message", map[string]any{
			"sessionId": "sess-7",
			"messageId": `["m1","m2"]`,
		}).DecodeData(t, &summary)
		assert.Equal(t, 2, summary.Total)
		assert.Equal(t, 2, summary.Successful)
		require.Len(t, summary.Results, 2)
		assert.Equal(t, "m1", summary.Results[0].ID)
		assert.Equal(t, "m2", summary.Results[1].ID)
	})

	t.Run("api error", func(t *testing.T) {
		res := tooltest.Call(t, s, "gmail_get_message", map[string]any{"sessionId": "sess-7", "messageId": "missing"})
		assert.True(t, res.IsError)
		require.NotNil(t, res.Error)
		assert.Equal(t, "api_error", res.Error.Kind)
		assert.Contains(t, res.Error.Message, "404")
	})
}

func TestGmailToolsAuthErrors(t *testing.T) {
	var calls atomic.Int32
	api := tooltest.NewAPI(t, fakeGmail(t, &calls))
	sc := tooltest.NewServerContext(t, api)
	tooltest.PutToken(t, sc, "sess-expired", -time.Minute)

	s := tooltest.NewMCPServer()
	require.NoError(t, RegisterGmailTools(s, sc))

	tests := []struct {
		name string
		args map[string]any
		kind auth.Kind
	}{
		{"no grant for default session", map[string]any{"messageId": "m1"}, auth.KindNotAuthenticated},
		{"expired grant", map[string]any{"sessionId": "sess-expired", "messageId": "m1"}, auth.KindTokenExpired},
		{"missing message id", map[string]any{"sessionId": "sess-expired"}, auth.KindInvalidRequest},
		{"bad session id type", map[string]any{"sessionId": 7.0, "messageId": "m1"}, auth.KindInvalidRequest},
		{"max results out of range", map[string]any{"maxResults": 500.0}, auth.KindInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := "gmail_get_message"
			if _, ok := tt.args["maxResults"]; ok {
				tool = "gmail_list_messages"
			}
			res := tooltest.Call(t, s, tool, tt.args)
			assert.True(t, res.IsError)
			assert.False(t, res.Success)
			require.NotNil(t, res.Error)
			assert.Equal(t, string(tt.kind), res.Error.Kind)
		})
	}

	assert.Zero(t, calls.Load())
}
