package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/workspace-mcp/internal/config"
)

// configEnvVar names a YAML config file when --config is not given.
const configEnvVar = "WORKSPACE_MCP_CONFIG"

// configFlags are the command-line overrides shared by commands that load
// the process configuration. A flag only wins when it was set explicitly.
type configFlags struct {
	configPath     string
	defaultSession string
	storeType      string
	valkeyURL      string
	logFormat      string
	debug          bool

	// serve only
	transport      string
	httpAddr       string
	metricsEnabled bool
	metricsAddr    string
}

func (f *configFlags) register(cmd *cobra.Command, serve bool) {
	fs := cmd.Flags()
	fs.StringVar(&f.configPath, "config", "", "Path to a YAML config file. Can also use "+configEnvVar+" env var.")
	fs.StringVar(&f.defaultSession, "default-session", "", "Session id used when a call names none. Can also use DEFAULT_SESSION_ID env var.")
	fs.StringVar(&f.storeType, "store-type", config.StoreTypeValkey, "Token store type: valkey or memory. Can also use STORE_TYPE env var.")
	fs.StringVar(&f.valkeyURL, "valkey-url", "", "Valkey server address (host:port or valkey:// URL). Can also use VALKEY_URL env var.")
	fs.StringVar(&f.logFormat, "log-format", "text", "Log format: text or json. Can also use LOG_FORMAT env var.")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug logging")

	if !serve {
		return
	}
	fs.StringVar(&f.transport, "transport", config.TransportStdio, "Transport type: stdio or streamable-http. Can also use MCP_TRANSPORT env var.")
	fs.StringVar(&f.httpAddr, "http-addr", config.DefaultHTTPAddr, "HTTP server address for the auth endpoints (and /mcp with streamable-http). Can also use HTTP_ADDR env var.")
	fs.BoolVar(&f.metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	fs.StringVar(&f.metricsAddr, "metrics-addr", config.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")
}

// apply copies every explicitly set flag into cfg.
func (f *configFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("default-session") {
		cfg.Session.DefaultID = f.defaultSession
	}
	if changed("store-type") {
		cfg.Store.Type = f.storeType
	}
	if changed("valkey-url") {
		cfg.Store.Valkey.URL = f.valkeyURL
	}
	if changed("log-format") {
		cfg.Logging.Format = f.logFormat
	}
	if changed("debug") {
		cfg.Logging.Debug = f.debug
	}
	if changed("transport") {
		cfg.Server.Transport = f.transport
	}
	if changed("http-addr") {
		cfg.Server.HTTPAddr = f.httpAddr
	}
	if changed("metrics-enabled") {
		cfg.Server.MetricsEnabled = f.metricsEnabled
	}
	if changed("metrics-addr") {
		cfg.Server.MetricsAddr = f.metricsAddr
	}
}

// loadConfig layers defaults, the optional YAML file, the environment and
// explicit flags, then validates the result.
func loadConfig(cmd *cobra.Command, f *configFlags, lookup config.LookupFunc) (config.Config, error) {
	cfg := config.Default()

	path := f.configPath
	if !cmd.Flags().Changed("config") {
		if v, ok := lookup(configEnvVar); ok {
			path = v
		}
	}
	if path != "" {
		var err error
		if cfg, err = config.LoadFile(path, cfg); err != nil {
			return cfg, err
		}
	}

	if err := config.ApplyEnv(&cfg, lookup); err != nil {
		return cfg, fmt.Errorf("invalid environment: %w", err)
	}
	f.apply(cmd, &cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
