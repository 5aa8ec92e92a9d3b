package sheets_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-mcp/internal/auth"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

// Values is returned by sheets_get_values.
type Values struct {
	SpreadsheetID  string  `json:"spreadsheetId"`
	Range          string  `json:"range"`
	MajorDimension string  `json:"majorDimension,omitempty"`
	Values         [][]any `json:"values"`
}

// RegisterSheetsTools registers all Sheets tools with the MCP server.
func RegisterSheetsTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	getValuesTool := mcp.NewTool("sheets_get_values",
		mcp.WithDescription("Read cell values from a range of a Google Sheets spreadsheet"),
		common.WithSessionID(),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("Range in A1 notation, e.g. 'Sheet1!A1:D10'"),
		),
		mcp.WithString("majorDimension",
			mcp.Description("ROWS (default) or COLUMNS"),
			mcp.Enum("ROWS", "COLUMNS"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(getValuesTool, common.InstrumentedToolHandler("sheets_get_values",
		common.Operation{Service: instrumentation.ServiceSheets, Name: instrumentation.OperationGet}, sc, handleGetValues))

	return nil
}

func handleGetValues(ctx context.Context, call *common.Call) (any, error) {
	spreadsheetID, err := call.RequireString("spreadsheetId")
	if err != nil {
		return nil, err
	}
	readRange, err := call.RequireString("range")
	if err != nil {
		return nil, err
	}
	dimension, err := call.String("majorDimension", "ROWS")
	if err != nil {
		return nil, err
	}
	if dimension != "ROWS" && dimension != "COLUMNS" {
		return nil, auth.InvalidRequest("majorDimension must be ROWS or COLUMNS")
	}

	client, err := call.Client(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := client.Sheets(ctx)
	if err != nil {
		return nil, err
	}

	vr, err := svc.Spreadsheets.Values.Get(spreadsheetID, readRange).
		MajorDimension(dimension).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get values: %w", err)
	}

	values := make([][]any, 0, len(vr.Values))
	for _, row := range vr.Values {
		values = append(values, row)
	}

	return Values{
		SpreadsheetID:  spreadsheetID,
		Range:          vr.Range,
		MajorDimension: vr.MajorDimension,
		Values:         values,
	}, nil
}
