package slides_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	slides "google.golang.org/api/slides/v1"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

// Slide is the text of a single slide.
type Slide struct {
	ObjectID string `json:"objectId"`
	Index    int    `json:"index"`
	Text     string `json:"text"`
}

// Presentation is returned by slides_get_presentation.
type Presentation struct {
	PresentationID string  `json:"presentationId"`
	Title          string  `json:"title"`
	SlideCount     int     `json:"slideCount"`
	Slides         []Slide `json:"slides"`
}

// RegisterSlidesTools registers all Slides tools with the MCP server.
func RegisterSlidesTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	getTool := mcp.NewTool("slides_get_presentation",
		mcp.WithDescription("Get the title and per-slide text of a Google Slides presentation"),
		common.WithSessionID(),
		mcp.WithString("presentationId",
			mcp.Required(),
			mcp.Description("The ID of the presentation"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(getTool, common.InstrumentedToolHandler("slides_get_presentation",
		common.Operation{Service: instrumentation.ServiceSlides, Name: instrumentation.OperationGet}, sc, handleGetPresentation))

	return nil
}

func handleGetPresentation(ctx context.Context, call *common.Call) (any, error) {
	presentationID, err := call.RequireString("presentationId")
	if err != nil {
		return nil, err
	}

	client, err := call.Client(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := client.Slides(ctx)
	if err != nil {
		return nil, err
	}

	p, err := svc.Presentations.Get(presentationID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get presentation: %w", err)
	}

	out := Presentation{
		PresentationID: p.PresentationId,
		Title:          p.Title,
		SlideCount:     len(p.Slides),
		Slides:         make([]Slide, 0, len(p.Slides)),
	}
	for i, page := range p.Slides {
		out.Slides = append(out.Slides, Slide{
			ObjectID: page.ObjectId,
			Index:    i,
			Text:     pageText(page.PageElements),
		})
	}
	return out, nil
}

// pageText joins the text of all shapes and tables on a slide, one
// element per line.
func pageText(elements []*slides.PageElement) string {
	var parts []string
	for _, el := range elements {
		switch {
		case el.Shape != nil:
			if t := textContent(el.Shape.Text); t != "" {
				parts = append(parts, t)
			}
		case el.Table != nil:
			for _, row := range el.Table.TableRows {
				cells := make([]string, 0, len(row.TableCells))
				for _, cell := range row.TableCells {
					cells = append(cells, textContent(cell.Text))
				}
				parts = append(parts, strings.Join(cells, "\t"))
			}
		case el.ElementGroup != nil:
			if t := pageText(el.ElementGroup.Children); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, "\n")
}

func textContent(tc *slides.TextContent) string {
	if tc == nil {
		return ""
	}
	var sb strings.Builder
	for _, te := range tc.TextElements {
		if te.TextRun != nil {
			sb.WriteString(te.TextRun.Content)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
