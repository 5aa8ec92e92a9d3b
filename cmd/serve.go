package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/teemow/workspace-mcp/internal/config"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/logging"
	"github.com/teemow/workspace-mcp/internal/resources"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/auth_tools"
	"github.com/teemow/workspace-mcp/internal/tools/calendar_tools"
	"github.com/teemow/workspace-mcp/internal/tools/docs_tools"
	"github.com/teemow/workspace-mcp/internal/tools/drive_tools"
	"github.com/teemow/workspace-mcp/internal/tools/gmail_tools"
	"github.com/teemow/workspace-mcp/internal/tools/sheets_tools"
	"github.com/teemow/workspace-mcp/internal/tools/slides_tools"
)

const metricsStartupTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	flags := &configFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server together with the OAuth
bootstrap endpoints (/auth/login, /auth/callback).

Supports multiple transport types:
  - stdio: Standard input/output (default). The auth endpoints still listen
    on --http-addr so the browser has a redirect target.
  - streamable-http: MCP is served on /mcp next to the auth endpoints.

Required configuration (env, config file or flags):
  GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, GOOGLE_REDIRECT_URI, GOOGLE_SCOPES,
  DEFAULT_SESSION_ID and, for the valkey store, VALKEY_URL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags, os.LookupEnv)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return runServe(ctx, cfg)
		},
	}

	flags.register(cmd, true)
	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	logger := logging.New(logging.Options{Format: cfg.Logging.Format, Debug: cfg.Logging.Debug})
	slog.SetDefault(logger)

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	sc, err := server.NewServerContext(ctx, cfg,
		server.WithLogger(logger),
		server.WithMetrics(provider.Metrics()),
		server.WithAuditLogger(instrumentation.NewAuditLogger(logger, instrConfig.AuditLogging)),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := sc.Shutdown(); err != nil {
			logger.Warn("server context shutdown failed", logging.Err(err))
		}
	}()

	mcpSrv, err := newMCPServer(sc)
	if err != nil {
		return err
	}

	// The HTTP listener always serves the bootstrap flow; /mcp is only
	// mounted for the streamable-http transport.
	var httpMCP *mcpserver.MCPServer
	if cfg.Server.Transport == config.TransportStreamableHTTP {
		httpMCP = mcpSrv
	}
	httpSrv, err := server.NewHTTPServer(sc, httpMCP)
	if err != nil {
		return err
	}
	if err := httpSrv.Listen(); err != nil {
		return err
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	var metricsServer *server.MetricsServer
	if cfg.Server.MetricsEnabled && provider.Enabled() {
		metricsServer, err = startMetricsServer(gctx, g, cfg.Server.MetricsAddr, provider, logger)
		if err != nil {
			return err
		}
	}

	g.Go(func() error {
		if err := httpSrv.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	if cfg.Server.Transport == config.TransportStdio {
		g.Go(func() error {
			// The process ends with the stdio session.
			defer stop()
			stdio := mcpserver.NewStdioServer(mcpSrv)
			stdio.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))
			if err := stdio.Listen(gctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("stdio server failed: %w", err)
			}
			return nil
		})
	}

	logger.Info("workspace-mcp started",
		slog.String("version", version),
		slog.String("transport", cfg.Server.Transport),
		slog.String("http_addr", httpSrv.Addr()),
		slog.String("store", cfg.Store.Type))

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

// startMetricsServer starts the metrics server in g and waits until its port
// is bound, so a bind failure stops startup.
func startMetricsServer(ctx context.Context, g *errgroup.Group, addr string, provider *instrumentation.Provider, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		InstrumentationProvider: provider,
		Logger:                  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	ready := make(chan struct{})
	failed := make(chan error, 1)
	g.Go(func() error {
		err := metricsServer.StartWithReadySignal(ready)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
			return fmt.Errorf("metrics server failed: %w", err)
		}
		return nil
	})

	select {
	case <-ready:
		return metricsServer, nil
	case err := <-failed:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(metricsStartupTimeout):
		return nil, errors.New("metrics server startup timed out")
	}
}

// newMCPServer creates the MCP server with every tool and resource registered.
func newMCPServer(sc *server.ServerContext) (*mcpserver.MCPServer, error) {
	mcpSrv := mcpserver.NewMCPServer("workspace-mcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)

	if err := registerAllTools(mcpSrv, sc); err != nil {
		return nil, err
	}
	resources.RegisterAuthResources(mcpSrv, sc)
	resources.RegisterUserResources(mcpSrv, sc)

	return mcpSrv, nil
}

// registerAllTools registers all MCP tools. Shared by serve and generate-docs.
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext) error {
	type toolRegistration struct {
		name     string
		register func(*mcpserver.MCPServer, *server.ServerContext) error
	}

	registrations := []toolRegistration{
		{name: "Auth", register: auth_tools.RegisterAuthTools},
		{name: "Gmail", register: gmail_tools.RegisterGmailTools},
		{name: "Calendar", register: calendar_tools.RegisterCalendarTools},
		{name: "Drive", register: drive_tools.RegisterDriveTools},
		{name: "Docs", register: docs_tools.RegisterDocsTools},
		{name: "Sheets", register: sheets_tools.RegisterSheetsTools},
		{name: "Slides", register: slides_tools.RegisterSlidesTools},
	}

	for _, reg := range registrations {
		if err := reg.register(mcpSrv, sc); err != nil {
			return fmt.Errorf("failed to register %s tools: %w", reg.name, err)
		}
	}
	return nil
}
