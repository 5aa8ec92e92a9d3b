package drive_tools

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/workspace-mcp/internal/tools/tooltest"
)

func TestDriveListFiles(t *testing.T) {
	api := tooltest.NewAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/files"), r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "name contains 'report'", q.Get("q"))
		assert.Equal(t, "10", q.Get("pageSize"))
		assert.Equal(t, "tok", q.Get("pageToken"))
		assert.Contains(t, q.Get("fields"), "files(")

		tooltest.WriteJSON(w, map[string]any{
			"nextPageToken": "more",
			"files": []map[string]any{
				{
					"id":           "f1",
					"name":         "Q1 report",
					"mimeType":     "application/vnd.google-apps.document",
					"modifiedTime": "2024-01-02T10:00:00Z",
					"size":         "2048",
					"owners":       []map[string]string{{"emailAddress": "alice@example.com"}},
				},
			},
		})
	})
	sc := tooltest.NewServerContext(t, api)
	tooltest.PutToken(t, sc, tooltest.DefaultSession, time.Hour)

	s := tooltest.NewMCPServer()
	require.NoError(t, RegisterDriveTools(s, sc))

	var out ListResult
	tooltest.Call(t, s, "drive_list_files", map[string]any{
		"query":     "name contains 'report'",
		"pageSize":  10.0,
		"pageToken": "tok",
	}).DecodeData(t, &out)

	require.Len(t, out.Files, 1)
	assert.Equal(t, "Q1 report", out.Files[0].Name)
	assert.Equal(t, int64(2048), out.Files[0].Size)
	assert.Equal(t, []string{"alice@example.com"}, out.Files[0].Owners)
	assert.Equal(t, "more", out.NextPageToken)
}

func TestDriveListFilesTokenExpired(t *testing.T) {
	sc := tooltest.NewServerContext(t, nil)
	tooltest.PutToken(t, sc, tooltest.DefaultSession, -time.Second)

	s := tooltest.NewMCPServer()
	require.NoError(t, RegisterDriveTools(s, sc))

	res := tooltest.Call(t, s, "drive_list_files", nil)
	assert.True(t, res.IsError)
	require.NotNil(t, res.Error)
	assert.Equal(t, "token_expired", res.Error.Kind)
	assert.Contains(t, res.Error.Message, "re-authenticate")
}
