package calendar_tools

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/workspace-mcp/internal/auth"
	"github.com/teemow/workspace-mcp/internal/tools/tooltest"
)

func TestCalendarListEvents(t *testing.T) {
	api := tooltest.NewAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/calendars/team@example.com/events"), r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "true", q.Get("singleEvents"))
		assert.Equal(t, "startTime", q.Get("orderBy"))
		assert.Equal(t, "2024-01-01T00:00:00Z", q.Get("timeMin"))
		assert.Equal(t, "2024-01-08T00:00:00Z", q.Get("timeMax"))
		assert.Equal(t, "5", q.Get("maxResults"))

		tooltest.WriteJSON(w, map[string]any{
			"timeZone": "Europe/Berlin",
			"items": []map[string]any{
				{
					"id":        "e1",
					"summary":   "Standup",
					"start":     map[string]string{"dateTime": "2024-01-02T09:00:00+01:00"},
					"end":       map[string]string{"dateTime": "2024-01-02T09:15:00+01:00"},
					"organizer": map[string]string{"email": "lead@example.com"},
					"attendees": []map[string]string{{"email": "a@example.com"}, {"email": "b@example.com"}},
				},
				{
					"id":      "e2",
					"summary": "Holiday",
					"start":   map[string]string{"date": "2024-01-05"},
					"end":     map[string]string{"date": "2024-01-06"},
				},
			},
		})
	})
	sc := tooltest.NewServerContext(t, api)
	tooltest.PutToken(t, sc, tooltest.DefaultSession, time.Hour)

	s := tooltest.NewMCPServer()
	require.NoError(t, RegisterCalendarTools(s, sc))

	var out ListResult
	tooltest.Call(t, s, "calendar_list_events", map[string]any{
		"calendarId": "team@example.com",
		"timeMin":    "2024-01-01T00:00:00Z",
		"timeMax":    "2024-01-08T00:00:00Z",
		"maxResults": 5.0,
	}).DecodeData(t, &out)

	assert.Equal(t, "Europe/Berlin", out.TimeZone)
	require.Len(t, out.Events, 2)
	assert.Equal(t, "Standup", out.Events[0].Summary)
	assert.Equal(t, "lead@example.com", out.Events[0].Organizer)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, out.Events[0].Attendees)
	assert.False(t, out.Events[0].AllDay)
	assert.True(t, out.Events[1].AllDay)
	assert.Equal(t, "2024-01-05", out.Events[1].Start)
}

func TestCalendarListEventsInvalidArguments(t *testing.T) {
	sc := tooltest.NewServerContext(t, nil)
	tooltest.PutToken(t, sc, tooltest.DefaultSession, time.Hour)

	s := tooltest.NewMCPServer()
	require.NoError(t, RegisterCalendarTools(s, sc))

	for _, args := range []map[string]any{
		{"timeMin": "yesterday"},
		{"timeMin": "2024-01-08T00:00:00Z", "timeMax": "2024-01-01T00:00:00Z"},
		{"maxResults": 0.0},
		{"maxResults": 2.5},
		{"calendarId": 12.0},
	} {
		res := tooltest.Call(t, s, "calendar_list_events", args)
		require.NotNil(t, res.Error, "%v", args)
		assert.Equal(t, string(auth.KindInvalidRequest), res.Error.Kind)
	}
}
