package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/teemow/workspace-mcp/internal/auth"
)

// MaxItems bounds the number of ids in one call.
const MaxItems = 50

// concurrency bounds in-flight API calls per batch.
const concurrency = 5

// Result is the outcome for one id.
type Result struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Summary aggregates the results of a batch.
type Summary struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// ParseStringOrArray accepts a string, an array of strings, or a string
// holding a JSON array of strings. Empty values, non-string items and more
// than MaxItems ids are invalid requests.
func ParseStringOrArray(param any, paramName string) ([]string, error) {
	if param == nil {
		return nil, auth.InvalidRequest(paramName + " is required")
	}

	var result []string
	switch v := param.(type) {
	case string:
		if v == "" {
			return nil, auth.InvalidRequest(paramName + " cannot be empty")
		}
		if isJSONArray(v) {
			var items []any
			if err := json.Unmarshal([]byte(v), &items); err != nil {
				return nil, auth.InvalidRequest(paramName + " is not a valid JSON array")
			}
			return ParseStringOrArray(items, paramName)
		}
		result = []string{v}
	case []any:
		if len(v) == 0 {
			return nil, auth.InvalidRequest(paramName + " cannot be empty")
		}
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, auth.InvalidRequest(fmt.Sprintf("%s[%d] must be a string", paramName, i))
			}
			if str == "" {
				return nil, auth.InvalidRequest(fmt.Sprintf("%s[%d] cannot be empty", paramName, i))
			}
			result = append(result, str)
		}
	default:
		return nil, auth.InvalidRequest(paramName + " must be a string or array of strings")
	}

	if len(result) > MaxItems {
		return nil, auth.InvalidRequest(fmt.Sprintf("%s accepts at most %d ids", paramName, MaxItems))
	}
	return result, nil
}

// IsBatch reports whether param asks for several ids, either as an array or
// as a JSON array string.
func IsBatch(param any) bool {
	switch v := param.(type) {
	case []any:
		return true
	case string:
		return isJSONArray(v)
	}
	return false
}

func isJSONArray(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "[")
}

// Process runs fn for every id and returns the results in input order.
// It returns early only when ctx is cancelled.
func Process(ctx context.Context, ids []string, fn func(ctx context.Context, id string) (any, error)) (Summary, error) {
	results := make([]Result, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := fn(gctx, id)
			if err != nil {
				results[i] = Result{ID: id, Error: err.Error()}
				return nil
			}
			results[i] = Result{ID: id, Success: true, Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	return Summarize(results), nil
}

// Summarize counts successes and failures.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results), Results: results}
	for _, r := range results {
		if r.Success {
			s.Successful++
		} else {
			s.Failed++
		}
	}
	return s
}
