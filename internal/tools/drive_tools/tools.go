package drive_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"google.golang.org/api/googleapi"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

const (
	defaultPageSize = 25
	maxPageSize     = 1000
)

// fileFields limits the response to what File carries.
const fileFields googleapi.Field = "nextPageToken, files(id, name, mimeType, modifiedTime, size, webViewLink, parents, owners(emailAddress))"

// File is the projection of a Drive file returned by the tool.
type File struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	MimeType     string   `json:"mimeType"`
	ModifiedTime string   `json:"modifiedTime,omitempty"`
	Size         int64    `json:"size,omitempty"`
	WebViewLink  string   `json:"webViewLink,omitempty"`
	Parents      []string `json:"parents,omitempty"`
	Owners       []string `json:"owners,omitempty"`
}

// ListResult is returned by drive_list_files.
type ListResult struct {
	Files         []File `json:"files"`
	NextPageToken string `json:"nextPageToken,omitempty"`
}

// RegisterDriveTools registers all Drive tools with the MCP server.
func RegisterDriveTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listTool := mcp.NewTool("drive_list_files",
		mcp.WithDescription("List Google Drive files, optionally filtered with a Drive search query"),
		common.WithSessionID(),
		mcp.WithString("query",
			mcp.Description("Drive search query, e.g. \"name contains 'report' and trashed = false\""),
		),
		mcp.WithNumber("pageSize",
			mcp.Description(fmt.Sprintf("Maximum number of files (1-%d, default %d)", maxPageSize, defaultPageSize)),
		),
		mcp.WithString("pageToken",
			mcp.Description("Token from a previous call to fetch the next page"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(listTool, common.InstrumentedToolHandler("drive_list_files",
		common.Operation{Service: instrumentation.ServiceDrive, Name: instrumentation.OperationList}, sc, handleListFiles))

	return nil
}

func handleListFiles(ctx context.Context, call *common.Call) (any, error) {
	query, err := call.String("query", "")
	if err != nil {
		return nil, err
	}
	pageSize, err := call.Int("pageSize", defaultPageSize, 1, maxPageSize)
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
	svc, err := client.Drive(ctx)
	if err != nil {
		return nil, err
	}

	list := svc.Files.List().
		PageSize(int64(pageSize)).
		Fields(fileFields).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx)
	if query != "" {
		list = list.Q(query)
	}
	if pageToken != "" {
		list = list.PageToken(pageToken)
	}

	resp, err := list.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	result := ListResult{
		Files:         make([]File, 0, len(resp.Files)),
		NextPageToken: resp.NextPageToken,
	}
	for _, f := range resp.Files {
		file := File{
			ID:           f.Id,
			Name:         f.Name,
			MimeType:     f.MimeType,
			ModifiedTime: f.ModifiedTime,
			Size:         f.Size,
			WebViewLink:  f.WebViewLink,
			Parents:      f.Parents,
		}
		for _, o := range f.Owners {
			file.Owners = append(file.Owners, o.EmailAddress)
		}
		result.Files = append(result.Files, file)
	}
	return result, nil
}
