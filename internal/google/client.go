package google

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	docs "google.golang.org/api/docs/v1"
	drive "google.golang.org/api/drive/v3"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
	slides "google.golang.org/api/slides/v1"

	"github.com/teemow/workspace-mcp/internal/session"
)

// Client is an authorized Google Workspace client for one session.
// It is cheap to build and is not meant to be cached across calls.
type Client struct {
	session    session.Key
	oauth      *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	options    []option.ClientOption
}

// NewClient wraps token in a non-refreshing HTTP client. Extra options are
// passed to every service constructor.
func NewClient(key session.Key, conf *oauth2.Config, token *oauth2.Token, opts ...option.ClientOption) *Client {
	return NewClientWithBase(key, conf, token, newBaseTransport(), opts...)
}

// NewClientWithBase is like NewClient with a caller supplied base transport.
func NewClientWithBase(key session.Key, conf *oauth2.Config, token *oauth2.Token, base http.RoundTripper, opts ...option.ClientOption) *Client {
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(token),
			Base:   base,
		},
	}
	return &Client{
		session:    key,
		oauth:      conf,
		token:      token,
		httpClient: httpClient,
		options:    opts,
	}
}

// Session returns the session this client acts for.
func (c *Client) Session() session.Key {
	return c.session
}

// OAuthConfig returns the client identity the grant was issued to.
func (c *Client) OAuthConfig() *oauth2.Config {
	return c.oauth
}

// Token returns the grant the client was built from.
func (c *Client) Token() *oauth2.Token {
	return c.token
}

// HTTPClient returns the authorized HTTP client.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

func (c *Client) serviceOptions() []option.ClientOption {
	return append([]option.ClientOption{option.WithHTTPClient(c.httpClient)}, c.options...)
}

// Gmail returns a Gmail API service.
func (c *Client) Gmail(ctx context.Context) (*gmail.Service, error) {
	svc, err := gmail.NewService(ctx, c.serviceOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return svc, nil
}

// Calendar returns a Calendar API service.
func (c *Client) Calendar(ctx context.Context) (*calendar.Service, error) {
	svc, err := calendar.NewService(ctx, c.serviceOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return svc, nil
}

// Drive returns a Drive API service.
func (c *Client) Drive(ctx context.Context) (*drive.Service, error) {
	svc, err := drive.NewService(ctx, c.serviceOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return svc, nil
}

// Docs returns a Docs API service.
func (c *Client) Docs(ctx context.Context) (*docs.Service, error) {
	svc, err := docs.NewService(ctx, c.serviceOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docs service: %w", err)
	}
	return svc, nil
}

// Sheets returns a Sheets API service.
func (c *Client) Sheets(ctx context.Context) (*sheets.Service, error) {
	svc, err := sheets.NewService(ctx, c.serviceOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}
	return svc, nil
}

// Slides returns a Slides API service.
func (c *Client) Slides(ctx context.Context) (*slides.Service, error) {
	svc, err := slides.NewService(ctx, c.serviceOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Slides service: %w", err)
	}
	return svc, nil
}
