package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-mcp/internal/auth"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
)

// MCPEndpointPath is where the streamable HTTP transport is mounted.
const MCPEndpointPath = "/mcp"

const (
	httpReadHeaderTimeout = 10 * time.Second
	httpIdleTimeout       = 120 * time.Second
	// minWriteTimeout leaves room for the callback's code exchange.
	minWriteTimeout = 10 * time.Second
)

// HTTPServer serves the bootstrap flow, health probes and, when an MCP
// server is attached, the streamable HTTP transport.
type HTTPServer struct {
	sc         *ServerContext
	mcpServer  *mcpserver.MCPServer
	health     *HealthChecker
	httpServer *http.Server
	listener   net.Listener
	logger     *slog.Logger
}

// NewHTTPServer creates an HTTPServer. mcpServer may be nil, in which case
// only the auth and health routes are served (stdio mode).
func NewHTTPServer(sc *ServerContext, mcpServer *mcpserver.MCPServer) (*HTTPServer, error) {
	if err := validateRedirectURI(sc.Config().Google.RedirectURI); err != nil {
		return nil, err
	}

	s := &HTTPServer{
		sc:        sc,
		mcpServer: mcpServer,
		health:    NewHealthChecker(sc),
		logger:    sc.Logger().With(slog.String("component", "http")),
	}

	writeTimeout := sc.Config().Auth.ExchangeTimeout + 5*time.Second
	if writeTimeout < minWriteTimeout {
		writeTimeout = minWriteTimeout
	}

	s.httpServer = &http.Server{
		Addr:              sc.Config().Server.HTTPAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: httpReadHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       httpIdleTimeout,
	}
	return s, nil
}

// Handler returns the routed handler wrapped with request metrics.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	flow := s.sc.Flow()
	mux.HandleFunc(auth.LoginPath, flow.HandleLogin)
	mux.HandleFunc(auth.CallbackPath, flow.HandleCallback)

	s.health.RegisterHealthEndpoints(mux)

	if s.mcpServer != nil {
		mux.Handle(MCPEndpointPath, withoutWriteDeadline(mcpserver.NewStreamableHTTPServer(s.mcpServer,
			mcpserver.WithEndpointPath(MCPEndpointPath),
		), s.logger))
	}

	return instrumentHTTP(mux, s.sc.Metrics())
}

// Health returns the health checker, e.g. to flip readiness during shutdown.
func (s *HTTPServer) Health() *HealthChecker {
	return s.health
}

// Listen binds the configured address. Addr reports the bound address afterwards.
func (s *HTTPServer) Listen() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *HTTPServer) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Serve accepts connections until Shutdown. It calls Listen if needed.
// http.ErrServerClosed is returned after a graceful shutdown.
func (s *HTTPServer) Serve() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	s.logger.Info("HTTP server listening",
		slog.String("addr", s.Addr()),
		slog.Bool("mcp", s.mcpServer != nil))
	return s.httpServer.Serve(s.listener)
}

// Shutdown marks the server not ready and drains connections.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	return s.httpServer.Shutdown(ctx)
}

// withoutWriteDeadline lifts the server WriteTimeout for one route. The
// timeout is sized for the auth callback, while MCP event streams and large
// tool calls may legitimately run longer.
func withoutWriteDeadline(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
			logger.Debug("cannot clear write deadline", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working through the wrapper.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func instrumentHTTP(next http.Handler, metrics *instrumentation.Metrics) http.Handler {
	if metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// validateRedirectURI requires HTTPS for the OAuth redirect target.
// HTTP is allowed only for loopback hosts (localhost, 127.0.0.1, ::1).
func validateRedirectURI(redirectURI string) error {
	if redirectURI == "" {
		return fmt.Errorf("redirect URI cannot be empty")
	}

	u, err := url.Parse(redirectURI)
	if err != nil {
		return fmt.Errorf("invalid redirect URI: %w", err)
	}

	switch u.Scheme {
	case "https":
	case "http":
		host := u.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			return fmt.Errorf("redirect URI must use HTTPS outside localhost (got: %s)", redirectURI)
		}
	default:
		return fmt.Errorf("invalid redirect URI scheme %q: must be http (localhost only) or https", u.Scheme)
	}
	return nil
}
