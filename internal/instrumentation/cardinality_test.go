package instrumentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/auth/login", "/auth/login"},
		{"/auth/callback", "/auth/callback"},
		{"/mcp/", "/mcp"},
		{"/healthz", "/healthz"},
		{"/", PathOther},
		{"/wp-admin", PathOther},
		{"/auth/callback/extra", PathOther},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, PathLabel(tt.path))
		})
	}
}
