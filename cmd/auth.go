package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/teemow/workspace-mcp/internal/auth"
	"github.com/teemow/workspace-mcp/internal/google"
	"github.com/teemow/workspace-mcp/internal/logging"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/session"
)

const authStatusTimeout = 10 * time.Second

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Inspect and start session authentication",
	}
	cmd.AddCommand(newAuthLoginURLCmd())
	cmd.AddCommand(newAuthStatusCmd())
	return cmd
}

func newAuthLoginURLCmd() *cobra.Command {
	flags := &configFlags{}
	var state string

	cmd := &cobra.Command{
		Use:   "login-url",
		Short: "Print the Google consent URL",
		Long: `Print the Google consent URL. With --state the grant is stored under that
session id once the browser returns to the callback; without it the server
generates a session id and shows it on the callback page.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if state != "" {
				if _, err := session.ParseKey(state); err != nil {
					return fmt.Errorf("invalid --state: %w", err)
				}
			}
			cfg, err := loadConfig(cmd, flags, os.LookupEnv)
			if err != nil {
				return err
			}
			conf, err := google.NewOAuthConfig(cfg.Google)
			if err != nil {
				return err
			}

			// Building the URL needs no token store.
			fmt.Fprintln(cmd.OutOrStdout(), auth.NewFlow(conf, nil).LoginURL(state))
			return nil
		},
	}

	flags.register(cmd, false)
	cmd.Flags().StringVar(&state, "state", "", "Session id to store the grant under")
	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	flags := &configFlags{}
	var sessionID string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the authentication status of a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags, os.LookupEnv)
			if err != nil {
				return err
			}
			sc, err := server.NewServerContext(cmd.Context(), cfg,
				server.WithLogger(logging.New(logging.Options{Format: cfg.Logging.Format, Debug: cfg.Logging.Debug})))
			if err != nil {
				return err
			}
			defer func() { _ = sc.Shutdown() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), authStatusTimeout)
			defer cancel()

			printStatus(cmd.OutOrStdout(), sc.Status().Read(ctx, session.FromArgument(sessionID)))
			return nil
		},
	}

	flags.register(cmd, false)
	cmd.Flags().StringVar(&sessionID, "session", "", "Session id (default: the configured default session)")
	return cmd
}

// printStatus renders a status report for a terminal.
func printStatus(w io.Writer, st auth.Status) {
	if st.TokenInfo != nil {
		fmt.Fprintf(w, "  Session:   %s\n", st.SessionID)
	}
	fmt.Fprintf(w, "  Status:    %s\n", formatAuthStatus(st))

	if info := st.TokenInfo; info != nil {
		fmt.Fprintf(w, "  Expires:   %s\n", formatExpiry(info))
		if info.HasRefreshToken {
			fmt.Fprintf(w, "  Refresh:   %s\n", text.FgGreen.Sprint("Stored"))
		} else {
			fmt.Fprintf(w, "  Refresh:   %s\n", text.FgHiBlack.Sprint("None"))
		}
		if len(info.Scopes) > 0 {
			fmt.Fprintf(w, "  Scopes:    %s\n", strings.Join(info.Scopes, "\n             "))
		}
	}

	if st.Message != "" {
		fmt.Fprintf(w, "  Message:   %s\n", st.Message)
	}
	if st.AuthURL != "" {
		fmt.Fprintf(w, "  Login:     %s\n", st.AuthURL)
	}
}

func formatAuthStatus(st auth.Status) string {
	switch {
	case st.TokenInfo != nil && st.Expired:
		return text.FgYellow.Sprint("Expired")
	case st.Authenticated:
		return text.FgGreen.Sprint("Authenticated")
	case st.AuthURL != "":
		return text.FgYellow.Sprint("Not authenticated")
	default:
		return text.FgRed.Sprint("Unavailable")
	}
}

func formatExpiry(info *auth.TokenInfo) string {
	if info.Expired {
		return text.FgYellow.Sprintf("%s (expired)", info.ExpiryDate)
	}
	return info.ExpiryDate
}
