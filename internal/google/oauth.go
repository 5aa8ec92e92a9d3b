package google

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/teemow/workspace-mcp/internal/config"
)

// NewOAuthConfig builds the OAuth2 client configuration for Google.
func NewOAuthConfig(cfg config.GoogleConfig) (*oauth2.Config, error) {
	scopes, err := ExpandScopes(cfg.Scopes)
	if err != nil {
		return nil, err
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("google client id and secret are required")
	}
	if cfg.RedirectURI == "" {
		return nil, fmt.Errorf("google redirect URI is required")
	}

	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       scopes,
	}, nil
}

// newBaseTransport returns the transport used under the OAuth transport.
// HTTP/2 is disabled to avoid protocol errors seen with some Google endpoints.
func newBaseTransport() http.RoundTripper {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ForceAttemptHTTP2:     false,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// ExchangeHTTPClient returns the HTTP client used for the code exchange.
// Pass it to Exchange through the oauth2.HTTPClient context key.
func ExchangeHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: newBaseTransport(),
	}
}
