package gmail_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/batch"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

const (
	defaultMaxResults = 10
	maxMaxResults     = 100
)

// metadataHeaders are the headers requested with format=metadata.
var metadataHeaders = []string{"From", "To", "Cc", "Subject", "Date"}

// MessageSummary is the projection of a message returned by the tools.
type MessageSummary struct {
	ID       string   `json:"id"`
	ThreadID string   `json:"threadId"`
	LabelIDs []string `json:"labelIds,omitempty"`
	Snippet  string   `json:"snippet,omitempty"`
	From     string   `json:"from,omitempty"`
	To       string   `json:"to,omitempty"`
	Cc       string   `json:"cc,omitempty"`
	Subject  string   `json:"subject,omitempty"`
	Date     string   `json:"date,omitempty"`
}

// ListResult is returned by gmail_list_messages.
type ListResult struct {
	Messages           []MessageSummary `json:"messages"`
	NextPageToken      string           `json:"nextPageToken,omitempty"`
	ResultSizeEstimate int64            `json:"resultSizeEstimate"`
}

// RegisterGmailTools registers all Gmail tools with the MCP server.
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listTool := mcp.NewTool("gmail_list_messages",
		mcp.WithDescription("List Gmail messages matching a search query, with sender, subject and date for each"),
		common.WithSessionID(),
		mcp.WithString("query",
			mcp.Description("Gmail search query, e.g. 'is:unread from:alice@example.com'"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description(fmt.Sprintf("Maximum number of messages (1-%d, default %d)", maxMaxResults, defaultMaxResults)),
		),
		mcp.WithString("pageToken",
			mcp.Description("Token from a previous call to fetch the next page"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(listTool, common.InstrumentedToolHandler("gmail_list_messages",
		common.Operation{Service: instrumentation.ServiceGmail, Name: instrumentation.OperationList}, sc, handleListMessages))

	getTool := mcp.NewTool("gmail_get_message",
		mcp.WithDescription("Get headers, labels and snippet of one or more Gmail messages"),
		common.WithSessionID(),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description(fmt.Sprintf(`Message id, or a JSON array of up to %d message ids (e.g. ["id1","id2"])`, batch.MaxItems)),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(getTool, common.InstrumentedToolHandler("gmail_get_message",
		common.Operation{Service: instrumentation.ServiceGmail, Name: instrumentation.OperationGet}, sc, handleGetMessage))

	return nil
}

func handleListMessages(ctx context.Context, call *common.Call) (any, error) {
	query, err := call.String("query", "")
	if err != nil {
		return nil, err
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
	svc, err := client.Gmail(ctx)
	if err != nil {
		return nil, err
	}

	list := svc.Users.Messages.List("me").MaxResults(int64(maxResults)).Context(ctx)
	if query != "" {
		list = list.Q(query)
	}
	if pageToken != "" {
		list = list.PageToken(pageToken)
	}
	resp, err := list.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}
	summary, err := batch.Process(ctx, ids, func(ctx context.Context, id string) (any, error) {
		return getMessage(ctx, svc, id)
	})
	if err != nil {
		return nil, err
	}

	result := ListResult{
		Messages:           make([]MessageSummary, 0, len(ids)),
		NextPageToken:      resp.NextPageToken,
		ResultSizeEstimate: resp.ResultSizeEstimate,
	}
	for _, r := range summary.Results {
		if msg, ok := r.Data.(MessageSummary); ok {
			result.Messages = append(result.Messages, msg)
		} else {
			// Deleted between list and get; keep the id so the page stays aligned.
			result.Messages = append(result.Messages, MessageSummary{ID: r.ID})
		}
	}
	return result, nil
}

func handleGetMessage(ctx context.Context, call *common.Call) (any, error) {
	param := call.Request.GetArguments()["messageId"]
	ids, err := batch.ParseStringOrArray(param, "messageId")
	if err != nil {
		return nil, err
	}

	client, err := call.Client(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := client.Gmail(ctx)
	if err != nil {
		return nil, err
	}

	if !batch.IsBatch(param) {
		return getMessage(ctx, svc, ids[0])
	}

	return batch.Process(ctx, ids, func(ctx context.Context, id string) (any, error) {
		return getMessage(ctx, svc, id)
	})
}

func getMessage(ctx context.Context, svc *gmail.Service, id string) (MessageSummary, error) {
	msg, err := svc.Users.Messages.Get("me", id).
		Format("metadata").
		MetadataHeaders(metadataHeaders...).
		Context(ctx).
		Do()
	if err != nil {
		return MessageSummary{}, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	return summarize(msg), nil
}

func summarize(msg *gmail.Message) MessageSummary {
	s := MessageSummary{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		LabelIDs: msg.LabelIds,
		Snippet:  msg.Snippet,
	}
	if msg.Payload == nil {
		return s
	}
	for _, h := range msg.Payload.Headers {
		switch h.Name {
		case "From":
			s.From = h.Value
		case "To":
			s.To = h.Value
		case "Cc":
			s.Cc = h.Value
		case "Subject":
			s.Subject = h.Value
		case "Date":
			s.Date = h.Value
		}
	}
	return s
}
