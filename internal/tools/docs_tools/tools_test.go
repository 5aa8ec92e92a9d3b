package docs_tools

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	docs "google.golang.org/api/docs/v1"

	"github.com/teemow/workspace-mcp/internal/tools/tooltest"
)

func paragraph(text string) *docs.StructuralElement {
	return &docs.StructuralElement{Paragraph: &docs.Paragraph{
		Elements: []*docs.ParagraphElement{{TextRun: &docs.TextRun{Content: text}}},
	}}
}

func TestPlainText(t *testing.T) {
	doc := &docs.Document{Body: &docs.Body{Content: []*docs.StructuralElement{
		paragraph("Title\n"),
		{Table: &docs.Table{TableRows: []*docs.TableRow{
			{TableCells: []*docs.TableCell{
				{Content: []*docs.StructuralElement{paragraph("a\n")}},
				{Content: []*docs.StructuralElement{paragraph("b\n")}},
			}},
		}}},
		paragraph("End\n"),
	}}}

	assert.Equal(t, "Title\na\tb\nEnd\n", PlainText(doc))
	assert.Empty(t, PlainText(&docs.Document{}))
}

func TestDocsGetDocument(t *testing.T) {
	api := tooltest.NewAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/documents/doc-1"), r.URL.Path)
		tooltest.WriteJSON(w, docs.Document{
			DocumentId: "doc-1",
			Title:      "Plan",
			RevisionId: "rev-3",
			Body:       &docs.Body{Content: []*docs.StructuralElement{paragraph("Hello world\n")}},
		})
	})
	sc := tooltest.NewServerContext(t, api)
	tooltest.PutToken(t, sc, tooltest.DefaultSession, time.Hour)

	s := tooltest.NewMCPServer()
	require.NoError(t, RegisterDocsTools(s, sc))

	var out Document
	tooltest.Call(t, s, "docs_get_document", map[string]any{"documentId": "doc-1"}).DecodeData(t, &out)
	assert.Equal(t, Document{DocumentID: "doc-1", Title: "Plan", RevisionID: "rev-3", Format: FormatText, Text: "Hello world\n"}, out)

	tooltest.Call(t, s, "docs_get_document", map[string]any{"documentId": "doc-1", "format": "markdown"}).DecodeData(t, &out)
	assert.Equal(t, FormatMarkdown, out.Format)
	assert.Equal(t, "Hello world\n\n", out.Text)
}

func TestDocsGetDocumentRequiresID(t *testing.T) {
	sc := tooltest.NewServerContext(t, nil)
	s := tooltest.NewMCPServer()
	require.NoError(t, RegisterDocsTools(s, sc))

	for _, args := range []map[string]any{nil, {"documentId": ""}, {"documentId": 3.0}, {"documentId": "doc-1", "format": "pdf"}} {
		res := tooltest.Call(t, s, "docs_get_document", args)
		require.NotNil(t, res.Error)
		assert.Equal(t, "invalid_request", res.Error.Kind)
	}
}
