package cmd

import (
	"bytes"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/workspace-mcp/internal/auth"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv(configEnvVar, "")
	for k, v := range baseEnv() {
		t.Setenv(k, v)
	}
}

func TestFormatAuthStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   auth.Status
		expected string
	}{
		{
			name:     "authenticated",
			status:   auth.Status{Authenticated: true, TokenInfo: &auth.TokenInfo{}},
			expected: text.FgGreen.Sprint("Authenticated"),
		},
		{
			name:     "expired",
			status:   auth.Status{Authenticated: true, TokenInfo: &auth.TokenInfo{Expired: true}},
			expected: text.FgYellow.Sprint("Expired"),
		},
		{
			name:     "not authenticated",
			status:   auth.Status{AuthURL: "http://localhost:8080/auth/login"},
			expected: text.FgYellow.Sprint("Not authenticated"),
		},
		{
			name:     "store unavailable",
			status:   auth.Status{Message: "Authentication status service unavailable"},
			expected: text.FgRed.Sprint("Unavailable"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatAuthStatus(tt.status))
		})
	}
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	printStatus(&buf, auth.Status{
		Authenticated: true,
		TokenInfo: &auth.TokenInfo{
			SessionID:       "sess-1",
			HasAccessToken:  true,
			HasRefreshToken: true,
			ExpiryDate:      "2026-01-01T00:00:00Z",
			Scopes:          []string{"scope-a", "scope-b"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "sess-1")
	assert.Contains(t, out, "2026-01-01T00:00:00Z")
	assert.Contains(t, out, "scope-a")
	assert.Contains(t, out, "scope-b")
	assert.NotContains(t, out, "Login:")
}

func TestAuthLoginURLCmd(t *testing.T) {
	setBaseEnv(t)

	cmd := newAuthLoginURLCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--state", "sess-42"})
	require.NoError(t, cmd.Execute())

	url := out.String()
	assert.Contains(t, url, "client_id=client-id")
	assert.Contains(t, url, "state=sess-42")
	assert.Contains(t, url, "access_type=offline")
	assert.Contains(t, url, "prompt=consent")
}

func TestAuthLoginURLCmd_InvalidState(t *testing.T) {
	setBaseEnv(t)

	cmd := newAuthLoginURLCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--state", "default"})
	require.Error(t, cmd.Execute())
}

func TestAuthStatusCmd_NotAuthenticated(t *testing.T) {
	setBaseEnv(t)

	cmd := newAuthStatusCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--session", "sess-unknown"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Not authenticated")
	assert.Contains(t, out.String(), "/auth/login")
}
