package google

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandScopes(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []string
		wantErr bool
	}{
		{
			name: "aliases",
			in:   []string{"gmail.readonly", "drive.readonly"},
			want: []string{
				"https://www.googleapis.com/auth/gmail.readonly",
				"https://www.googleapis.com/auth/drive.readonly",
			},
		},
		{
			name: "full urls pass through and dedupe",
			in:   []string{"https://www.googleapis.com/auth/calendar.readonly", "calendar.readonly"},
			want: []string{"https://www.googleapis.com/auth/calendar.readonly"},
		},
		{
			name: "openid",
			in:   []string{"openid", " email "},
			want: []string{"openid", "https://www.googleapis.com/auth/userinfo.email"},
		},
		{name: "unknown alias", in: []string{"contacts"}, wantErr: true},
		{name: "empty", in: []string{"", " "}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandScopes(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultReadOnlyScopes_AllResolve(t *testing.T) {
	got, err := ExpandScopes(DefaultReadOnlyScopes)
	require.NoError(t, err)
	assert.Len(t, got, len(DefaultReadOnlyScopes))
}
