package batch

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/workspace-mcp/internal/auth"
)

func TestParseStringOrArray(t *testing.T) {
	tooMany := make([]any, MaxItems+1)
	for i := range tooMany {
		tooMany[i] = strconv.Itoa(i)
	}
	raw, err := json.Marshal(tooMany)
	require.NoError(t, err)
	tooManyJSON := string(raw)

	tests := []struct {
		name    string
		input   any
		want    []string
		wantErr bool
	}{
		{name: "single string", input: "id1", want: []string{"id1"}},
		{name: "array of strings", input: []any{"id1", "id2", "id3"}, want: []string{"id1", "id2", "id3"}},
		{name: "nil input", input: nil, wantErr: true},
		{name: "empty string", input: "", wantErr: true},
		{name: "empty array", input: []any{}, wantErr: true},
		{name: "array with non-string", input: []any{"id1", 123}, wantErr: true},
		{name: "array with empty string", input: []any{"id1", ""}, wantErr: true},
		{name: "number", input: 42.0, wantErr: true},
		{name: "too many ids", input: tooMany, wantErr: true},
		{name: "json array string", input: `["id1", "id2"]`, want: []string{"id1", "id2"}},
		{name: "json array string with spaces", input: ` ["id1"]`, want: []string{"id1"}},
		{name: "empty json array string", input: "[]", wantErr: true},
		{name: "json array string with empty id", input: `["id1", ""]`, wantErr: true},
		{name: "json array string with number", input: `["id1", 2]`, wantErr: true},
		{name: "malformed json array string", input: `["id1"`, wantErr: true},
		{name: "too many ids in json string", input: tooManyJSON, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStringOrArray(tt.input, "messageId")
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, auth.ErrInvalidRequest)
				assert.Contains(t, auth.MessageOf(err), "messageId")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsBatch(t *testing.T) {
	assert.True(t, IsBatch([]any{"a"}))
	assert.True(t, IsBatch(`["a","b"]`))
	assert.False(t, IsBatch("a"))
	assert.False(t, IsBatch(nil))
	assert.False(t, IsBatch(3.0))
}

func TestProcessKeepsOrderAndPartialFailures(t *testing.T) {
	ids := []string{"a", "bad", "c", "d", "e", "f", "g"}

	summary, err := Process(context.Background(), ids, func(_ context.Context, id string) (any, error) {
		if id == "bad" {
			return nil, errors.New("not found")
		}
		return "value-" + id, nil
	})
	require.NoError(t, err)

	assert.Equal(t, 7, summary.Total)
	assert.Equal(t, 6, summary.Successful)
	assert.Equal(t, 1, summary.Failed)
	for i, r := range summary.Results {
		assert.Equal(t, ids[i], r.ID)
	}
	assert.Equal(t, "not found", summary.Results[1].Error)
	assert.False(t, summary.Results[1].Success)
	assert.Equal(t, "value-c", summary.Results[2].Data)
}

func TestProcessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Process(ctx, []string{"a", "b"}, func(context.Context, string) (any, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Result{{ID: "1", Success: true}, {ID: "2"}, {ID: "3", Success: true}})
	assert.Equal(t, Summary{
		Total:      3,
		Successful: 2,
		Failed:     1,
		Results:    []Result{{ID: "1", Success: true}, {ID: "2"}, {ID: "3", Success: true}},
	}, s)
}
