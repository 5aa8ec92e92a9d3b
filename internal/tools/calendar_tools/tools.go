package calendar_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	calendar "google.golang.org/api/calendar/v3"

	"github.com/teemow/workspace-mcp/internal/auth"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

const (
	defaultCalendarID = "primary"
	defaultMaxResults = 25
	maxMaxResults     = 250
)

// Event is the projection of a calendar event returned by the tool.
type Event struct {
	ID          string   `json:"id"`
	Summary     string   `json:"summary,omitempty"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location,omitempty"`
	Status      string   `json:"status,omitempty"`
	Start       string   `json:"start,omitempty"`
	End         string   `json:"end,omitempty"`
	AllDay      bool     `json:"allDay,omitempty"`
	Organizer   string   `json:"organizer,omitempty"`
	Attendees   []string `json:"attendees,omitempty"`
	HangoutLink string   `json:"hangoutLink,omitempty"`
	HTMLLink    string   `json:"htmlLink,omitempty"`
}

// ListResult is returned by calendar_list_events.
type ListResult struct {
	CalendarID    string  `json:"calendarId"`
	TimeZone      string  `json:"timeZone,omitempty"`
	Events        []Event `json:"events"`
	NextPageToken string  `json:"nextPageToken,omitempty"`
}

// RegisterCalendarTools registers all Calendar tools with the MCP server.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listTool := mcp.NewTool("calendar_list_events",
		mcp.WithDescription("List events of a calendar in a time range, expanded into single instances and ordered by start time"),
		common.WithSessionID(),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (default: 'primary')"),
		),
		mcp.WithString("timeMin",
			mcp.Description("Lower bound (exclusive) for event end time, RFC3339, e.g. '2024-01-01T00:00:00Z'. Defaults to now."),
		),
		mcp.WithString("timeMax",
			mcp.Description("Upper bound (exclusive) for event start time, RFC3339"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description(fmt.Sprintf("Maximum number of events (1-%d, default %d)", maxMaxResults, defaultMaxResults)),
		),
		mcp.WithString("pageToken",
			mcp.Description("Token from a previous call to fetch the next page"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(listTool, common.InstrumentedToolHandler("calendar_list_events",
		common.Operation{Service: instrumentation.ServiceCalendar, Name: instrumentation.OperationList}, sc, handleListEvents))

	return nil
}

func handleListEvents(ctx context.Context, call *common.Call) (any, error) {
	calendarID, err := call.String("calendarId", defaultCalendarID)
	if err != nil {
		return nil, err
	}
	timeMin, err := timeArg(call, "timeMin")
	if err != nil {
		return nil, err
	}
	timeMax, err := timeArg(call, "timeMax")
	if err != nil {
		return nil, err
	}
	if timeMin.IsZero() {
		timeMin = time.Now()
	}
	if !timeMax.IsZero() && !timeMax.After(timeMin) {
		return nil, auth.InvalidRequest("timeMax must be after timeMin")
	}
	maxResults, err := call.Int("maxResults", defaultMaxResults, 1, maxMaxResults)
	if err != nil {
		return nil, err
	}
	pageToken, err := call.String("pageToken", "")
	if err != nil {
		return nil, err
	}

	client, err := call.Client(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := client.Calendar(ctx)
	if err != nil {
		return nil, err
	}

	list := svc.Events.List(calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(timeMin.Format(time.RFC3339)).
		MaxResults(int64(maxResults)).
		Context(ctx)
	if !timeMax.IsZero() {
		list = list.TimeMax(timeMax.Format(time.RFC3339))
	}
	if pageToken != "" {
		list = list.PageToken(pageToken)
	}

	resp, err := list.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	result := ListResult{
		CalendarID:    calendarID,
		TimeZone:      resp.TimeZone,
		Events:        make([]Event, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
	}
	for _, item := range resp.Items {
		result.Events = append(result.Events, toEvent(item))
	}
	return result, nil
}

func timeArg(call *common.Call, name string) (time.Time, error) {
	raw, err := call.String(name, "")
	if err != nil || raw == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, auth.InvalidRequest(fmt.Sprintf("%s must be an RFC3339 timestamp: %v", name, err))
	}
	return t, nil
}

func toEvent(item *calendar.Event) Event {
	e := Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Location:    item.Location,
		Status:      item.Status,
		HangoutLink: item.HangoutLink,
		HTMLLink:    item.HtmlLink,
	}
	e.Start, e.AllDay = eventTime(item.Start)
	e.End, _ = eventTime(item.End)
	if item.Organizer != nil {
		e.Organizer = item.Organizer.Email
	}
	for _, a := range item.Attendees {
		e.Attendees = append(e.Attendees, a.Email)
	}
	return e
}

// eventTime returns the timestamp of t and whether it is an all-day date.
func eventTime(t *calendar.EventDateTime) (string, bool) {
	if t == nil {
		return "", false
	}
	if t.DateTime != "" {
		return t.DateTime, false
	}
	return t.Date, t.Date != ""
}
