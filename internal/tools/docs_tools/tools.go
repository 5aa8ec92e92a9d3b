package docs_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	docs "google.golang.org/api/docs/v1"

	"github.com/teemow/workspace-mcp/internal/auth"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

// Document is returned by docs_get_document.
type Document struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title"`
	RevisionID string `json:"revisionId,omitempty"`
	Format     string `json:"format"`
	Text       string `json:"text"`
}

// Output formats of docs_get_document.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

// RegisterDocsTools registers all Docs tools with the MCP server.
func RegisterDocsTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	getDocumentTool := mcp.NewTool("docs_get_document",
		mcp.WithDescription("Get the title and content of a Google Doc as plain text or Markdown"),
		common.WithSessionID(),
		mcp.WithString("documentId",
			mcp.Required(),
			mcp.Description("The ID of the Google Doc"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: text (default) or markdown"),
			mcp.Enum(FormatText, FormatMarkdown),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(getDocumentTool, common.InstrumentedToolHandler("docs_get_document",
		common.Operation{Service: instrumentation.ServiceDocs, Name: instrumentation.OperationGet}, sc, handleGetDocument))

	return nil
}

func handleGetDocument(ctx context.Context, call *common.Call) (any, error) {
	documentID, err := call.RequireString("documentId")
	if err != nil {
		return nil, err
	}
	format, err := call.String("format", FormatText)
	if err != nil {
		return nil, err
	}
	if format != FormatText && format != FormatMarkdown {
		return nil, auth.InvalidRequest("format must be text or markdown")
	}

	client, err := call.Client(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := client.Docs(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := svc.Documents.Get(documentID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	out := Document{
		DocumentID: doc.DocumentId,
		Title:      doc.Title,
		RevisionID: doc.RevisionId,
		Format:     format,
	}
	if format == FormatMarkdown {
		out.Text = Markdown(doc)
	} else {
		out.Text = PlainText(doc)
	}
	return out, nil
}

// PlainText extracts the text of the document body.
func PlainText(doc *docs.Document) string {
	if doc.Body == nil {
		return ""
	}
	var sb strings.Builder
	writeContent(&sb, doc.Body.Content)
	return sb.String()
}

func writeContent(sb *strings.Builder, content []*docs.StructuralElement) {
	for _, el := range content {
		switch {
		case el.Paragraph != nil:
			for _, pe := range el.Paragraph.Elements {
				if pe.TextRun != nil {
					sb.WriteString(pe.TextRun.Content)
				}
			}
		case el.Table != nil:
			for _, row := range el.Table.TableRows {
				for i, cell := range row.TableCells {
					if i > 0 {
						sb.WriteString("\t")
					}
					var cellText strings.Builder
					writeContent(&cellText, cell.Content)
					sb.WriteString(strings.TrimRight(cellText.String(), "\n"))
				}
				sb.WriteString("\n")
			}
		case el.TableOfContents != nil:
			writeContent(sb, el.TableOfContents.Content)
		}
	}
}
