package google

import (
	"fmt"
	"strings"

	calendar "google.golang.org/api/calendar/v3"
	docs "google.golang.org/api/docs/v1"
	drive "google.golang.org/api/drive/v3"
	gmail "google.golang.org/api/gmail/v1"
	sheets "google.golang.org/api/sheets/v4"
	slides "google.golang.org/api/slides/v1"
)

// ScopeAliases maps short scope names accepted in configuration to scope URLs.
var ScopeAliases = map[string]string{
	"openid": "openid",
	"email":  "https://www.googleapis.com/auth/userinfo.email",

	"gmail":          gmail.MailGoogleComScope,
	"gmail.readonly": gmail.GmailReadonlyScope,
	"gmail.modify":   gmail.GmailModifyScope,

	"calendar":          calendar.CalendarScope,
	"calendar.readonly": calendar.CalendarReadonlyScope,

	"drive":          drive.DriveScope,
	"drive.readonly": drive.DriveReadonlyScope,

	"docs":          docs.DocumentsScope,
	"docs.readonly": docs.DocumentsReadonlyScope,

	"sheets":          sheets.SpreadsheetsScope,
	"sheets.readonly": sheets.SpreadsheetsReadonlyScope,

	"slides":          slides.PresentationsScope,
	"slides.readonly": slides.PresentationsReadonlyScope,
}

// DefaultReadOnlyScopes is a convenient read-only scope set covering every tool.
var DefaultReadOnlyScopes = []string{
	"gmail.readonly",
	"calendar.readonly",
	"drive.readonly",
	"docs.readonly",
	"sheets.readonly",
	"slides.readonly",
}

// ExpandScopes resolves aliases to scope URLs, keeps full URLs as they are and
// drops duplicates while preserving order.
func ExpandScopes(scopes []string) ([]string, error) {
	out := make([]string, 0, len(scopes))
	seen := make(map[string]bool, len(scopes))

	for _, s := range scopes {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		resolved, ok := ScopeAliases[s]
		if !ok {
			if !strings.HasPrefix(s, "https://") {
				return nil, fmt.Errorf("unknown scope %q", s)
			}
			resolved = s
		}
		if !seen[resolved] {
			seen[resolved] = true
			out = append(out, resolved)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no scopes configured")
	}
	return out, nil
}
