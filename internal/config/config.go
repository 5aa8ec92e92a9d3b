package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store types.
const (
	StoreTypeValkey = "valkey"
	StoreTypeMemory = "memory"
)

// Transports.
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// Defaults.
const (
	DefaultHTTPAddr        = ":8080"
	DefaultMetricsAddr     = ":9090"
	DefaultExchangeTimeout = 30 * time.Second
	DefaultTokenTTL        = 30 * 24 * time.Hour
	DefaultShutdownTimeout = 30 * time.Second
)

// Config is the complete process configuration.
type Config struct {
	Google  GoogleConfig  `yaml:"google"`
	Session SessionConfig `yaml:"session"`
	Store   StoreConfig   `yaml:"store"`
	Auth    AuthConfig    `yaml:"auth"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// GoogleConfig identifies this server as an OAuth client.
type GoogleConfig struct {
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	RedirectURI  string `yaml:"redirectUri"`
	// Scopes are full scope URLs or short aliases such as "gmail.readonly".
	Scopes []string `yaml:"scopes"`
}

// SessionConfig controls session resolution.
type SessionConfig struct {
	// DefaultID is used when a call does not name a session.
	DefaultID string `yaml:"defaultId"`
}

// StoreConfig selects and configures the token store backend.
type StoreConfig struct {
	Type   string        `yaml:"type"`
	TTL    time.Duration `yaml:"ttl"`
	Valkey ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig holds Valkey connection settings.
type ValkeyConfig struct {
	URL        string `yaml:"url"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TLSEnabled bool   `yaml:"tlsEnabled"`
}

// AuthConfig tunes the bootstrap flow.
type AuthConfig struct {
	ExchangeTimeout time.Duration `yaml:"exchangeTimeout"`
}

// ServerConfig controls the listeners.
type ServerConfig struct {
	Transport       string        `yaml:"transport"`
	HTTPAddr        string        `yaml:"httpAddr"`
	MetricsEnabled  bool          `yaml:"metricsEnabled"`
	MetricsAddr     string        `yaml:"metricsAddr"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Format string `yaml:"format"`
	Debug  bool   `yaml:"debug"`
}

// Default returns a Config populated with defaults only.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Type: StoreTypeValkey,
			TTL:  DefaultTokenTTL,
		},
		Auth: AuthConfig{
			ExchangeTimeout: DefaultExchangeTimeout,
		},
		Server: ServerConfig{
			Transport:       TransportStdio,
			HTTPAddr:        DefaultHTTPAddr,
			MetricsEnabled:  true,
			MetricsAddr:     DefaultMetricsAddr,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Format: "text",
		},
	}
}

// LoadFile reads a YAML file on top of base. Unknown keys are rejected.
func LoadFile(path string, base Config) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return base, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg := base
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return base, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// LookupFunc looks up an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides cfg with any environment variables that are set and non-empty.
// Malformed numeric, boolean or duration values are reported together.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = ParseList(v)
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("GOOGLE_CLIENT_ID", &cfg.Google.ClientID)
	str("GOOGLE_CLIENT_SECRET", &cfg.Google.ClientSecret)
	str("GOOGLE_REDIRECT_URI", &cfg.Google.RedirectURI)
	list("GOOGLE_SCOPES", &cfg.Google.Scopes)

	str("DEFAULT_SESSION_ID", &cfg.Session.DefaultID)

	str("STORE_TYPE", &cfg.Store.Type)
	duration("TOKEN_TTL", &cfg.Store.TTL)
	str("VALKEY_URL", &cfg.Store.Valkey.URL)
	str("VALKEY_PASSWORD", &cfg.Store.Valkey.Password)
	integer("VALKEY_DB", &cfg.Store.Valkey.DB)
	boolean("VALKEY_TLS_ENABLED", &cfg.Store.Valkey.TLSEnabled)

	duration("OAUTH_EXCHANGE_TIMEOUT", &cfg.Auth.ExchangeTimeout)

	str("MCP_TRANSPORT", &cfg.Server.Transport)
	str("HTTP_ADDR", &cfg.Server.HTTPAddr)
	boolean("METRICS_ENABLED", &cfg.Server.MetricsEnabled)
	str("METRICS_ADDR", &cfg.Server.MetricsAddr)

	str("LOG_FORMAT", &cfg.Logging.Format)
	boolean("DEBUG", &cfg.Logging.Debug)

	return errors.Join(errs...)
}

// Validate checks that every required value is present and that enumerated
// values are known. All problems are returned together.
func (c *Config) Validate() error {
	var errs []error
	required := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
		}
	}

	required("GOOGLE_CLIENT_ID", c.Google.ClientID)
	required("GOOGLE_CLIENT_SECRET", c.Google.ClientSecret)
	required("GOOGLE_REDIRECT_URI", c.Google.RedirectURI)
	if len(c.Google.Scopes) == 0 {
		errs = append(errs, errors.New("GOOGLE_SCOPES is required"))
	}
	required("DEFAULT_SESSION_ID", c.Session.DefaultID)

	switch c.Store.Type {
	case StoreTypeValkey:
		required("VALKEY_URL", c.Store.Valkey.URL)
	case StoreTypeMemory:
	default:
		errs = append(errs, fmt.Errorf("unsupported store type %q (supported: valkey, memory)", c.Store.Type))
	}
	if c.Store.TTL <= 0 {
		errs = append(errs, errors.New("token TTL must be positive"))
	}

	if c.Auth.ExchangeTimeout <= 0 {
		errs = append(errs, errors.New("OAUTH_EXCHANGE_TIMEOUT must be positive"))
	}

	switch c.Server.Transport {
	case TransportStdio, TransportStreamableHTTP:
	default:
		errs = append(errs, fmt.Errorf("unsupported transport type %q (supported: stdio, streamable-http)", c.Server.Transport))
	}
	required("HTTP_ADDR", c.Server.HTTPAddr)

	return errors.Join(errs...)
}

// ParseList splits s on commas and whitespace, dropping empty elements.
// Returns nil if nothing remains.
func ParseList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}
