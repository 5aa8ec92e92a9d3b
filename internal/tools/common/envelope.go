package common

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"google.golang.org/api/googleapi"

	"github.com/teemow/workspace-mcp/internal/auth"
)

// KindAPIError is reported when the Workspace API rejects a call.
const KindAPIError = "api_error"

// KindInternal is reported for failures with no more specific kind.
const KindInternal = "internal_error"

// Envelope is the JSON body of every tool result.
type Envelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   *EnvelopeError `json:"error,omitempty"`
}

// EnvelopeError describes a failed call.
type EnvelopeError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Success wraps data in a success envelope.
func Success(data any) *mcp.CallToolResult {
	body, err := json.MarshalIndent(Envelope{Success: true, Data: data}, "", "  ")
	if err != nil {
		return Failure(fmt.Errorf("failed to encode result: %w", err))
	}
	return mcp.NewToolResultText(string(body))
}

// Failure wraps err in an error envelope. The result has IsError set.
func Failure(err error) *mcp.CallToolResult {
	ee := ErrorOf(err)
	body, _ := json.MarshalIndent(Envelope{Error: &ee}, "", "  ")
	return mcp.NewToolResultError(string(body))
}

// ErrorOf classifies err for the envelope.
func ErrorOf(err error) EnvelopeError {
	if kind := auth.KindOf(err); kind != "" {
		return EnvelopeError{Kind: string(kind), Message: auth.MessageOf(err)}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error()
		}
		return EnvelopeError{Kind: KindAPIError, Message: fmt.Sprintf("Google API returned %d: %s", apiErr.Code, msg)}
	}

	return EnvelopeError{Kind: KindInternal, Message: err.Error()}
}
