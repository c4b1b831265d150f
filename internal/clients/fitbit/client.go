// Package fitbit talks to the Fitbit Web API: the OAuth2 authorization code
// flow plus the few daily endpoints the app reads.
package fitbit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	authURL  = "https://www.fitbit.com/oauth2/authorize"
	tokenURL = "https://api.fitbit.com/oauth2/token"
	apiURL   = "https://api.fitbit.com"

	// Scopes requested at authorization.
	Scopes = "heartrate sleep activity"

	// Tokens that come back without expires_in are assumed to live 8 hours.
	defaultTokenLifetime = 8 * time.Hour
	// Ask for a one-year grant.
	grantLifetimeSeconds = "31536000"
)

// Client is a Fitbit API client. The zero OAuth config means Fitbit is not
// configured; see Configured.
type Client struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	apiBase    string
}

type Option func(*Client)

// WithBaseURLs points the client at another server, used by tests.
func WithBaseURLs(auth, token, api string) Option {
	return func(c *Client) {
		c.oauth.Endpoint.AuthURL = auth
		c.oauth.Endpoint.TokenURL = token
		c.apiBase = api
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient builds a client. redirectURL is where Fitbit sends the user back
// with the authorization code.
func NewClient(clientID, clientSecret, redirectURL string, opts ...Option) *Client {
	c := &Client{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{Scopes},
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiBase:    apiURL,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Configured() bool {
	return c.oauth.ClientID != "" && c.oauth.ClientSecret != ""
}

// AuthURL is the consent page URL carrying state back to the callback.
func (c *Client) AuthURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("expires_in", grantLifetimeSeconds))
}

func (c *Client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// Exchange trades an authorization code for tokens.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := c.oauth.Exchange(c.oauthContext(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("fitbit code exchange: %w", err)
	}
	return withDefaultExpiry(tok), nil
}

// Refresh gets a new access token from a refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	src := c.oauth.TokenSource(c.oauthContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("fitbit token refresh: %w", err)
	}
	return withDefaultExpiry(tok), nil
}

func withDefaultExpiry(tok *oauth2.Token) *oauth2.Token {
	if tok.Expiry.IsZero() {
		tok.Expiry = time.Now().Add(defaultTokenLifetime)
	}
	return tok
}

// StatusError is returned when the API answers with a non-200 status.
type StatusError struct {
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fitbit %s: status %d: %s", e.Path, e.Status, e.Body)
}

func (c *Client) getJSON(ctx context.Context, accessToken, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fitbit %s: %w", path, err)
	}
	defer resp.Body.Close()

	log.WithFields(log.Fields{
		"path":        path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("fitbit request")

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{Path: path, Status: resp.StatusCode, Body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("fitbit %s: decode: %w", path, err)
	}
	return nil
}
