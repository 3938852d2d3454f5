package gsc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
)

// OAuth scopes for the two API surfaces.
const (
	ScopeWebmasters = "https://www.googleapis.com/auth/webmasters"
	ScopeIndexing   = "https://www.googleapis.com/auth/indexing"
)

// Default REST endpoints; overridable for tests.
const (
	defaultWebmastersBase = "https://www.googleapis.com/webmasters/v3"
	defaultIndexingBase   = "https://indexing.googleapis.com/v3"
)

// ErrNotInitialized is returned by every operation invoked before a
// successful Init. No network call is attempted in that state.
var ErrNotInitialized = errors.New("search client not initialized")

// Waiter gates indexing requests; satisfied by *rate.Limiter.
type Waiter interface {
	Wait(ctx context.Context) error
}

// HTTPClientFactory builds an authorized HTTP client for one OAuth scope.
// The default factory runs the service-account signed-JWT flow.
type HTTPClientFactory func(ctx context.Context, key ServiceAccountKey, scope string) (*http.Client, error)

// Client talks to the Search Console sitemaps collection and the Indexing
// API with a shared credential.
type Client struct {
	creds    CredentialSource
	property string
	logger   *zap.Logger

	webmastersBase string
	indexingBase   string
	factory        HTTPClientFactory
	limiter        Waiter

	webClient *http.Client
	idxClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithEndpoints overrides the API base URLs (tests point these at httptest
// servers).
func WithEndpoints(webmastersBase, indexingBase string) Option {
	return func(c *Client) {
		c.webmastersBase = webmastersBase
		c.indexingBase = indexingBase
	}
}

// WithHTTPClientFactory overrides how authorized clients are built.
func WithHTTPClientFactory(f HTTPClientFactory) Option {
	return func(c *Client) { c.factory = f }
}

// WithLimiter overrides the indexing throttle.
func WithLimiter(w Waiter) Option {
	return func(c *Client) { c.limiter = w }
}

// NewClient constructs an unauthorized Client; call Init before use.
// property is the Search Console property the sitemaps belong to, e.g.
// "https://studyvault.example.com/".
func NewClient(creds CredentialSource, property string, limiter Waiter, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		creds:          creds,
		property:       property,
		logger:         logger,
		webmastersBase: defaultWebmastersBase,
		indexingBase:   defaultIndexingBase,
		factory:        jwtClientFactory,
		limiter:        limiter,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init loads the credential and builds one authorized client per scope. It
// reports failure as an error; it never panics past the API boundary.
func (c *Client) Init(ctx context.Context) error {
	key, err := c.creds.Load()
	if err != nil {
		return fmt.Errorf("load search credential: %w", err)
	}
	if err := key.Validate(); err != nil {
		return fmt.Errorf("invalid search credential: %w", err)
	}
	webClient, err := c.factory(ctx, key, ScopeWebmasters)
	if err != nil {
		return fmt.Errorf("authorize webmasters scope: %w", err)
	}
	idxClient, err := c.factory(ctx, key, ScopeIndexing)
	if err != nil {
		return fmt.Errorf("authorize indexing scope: %w", err)
	}
	c.webClient = webClient
	c.idxClient = idxClient
	c.logger.Info("search client authorized", zap.String("client_email", key.ClientEmail))
	return nil
}

// Initialized reports whether Init has completed successfully.
func (c *Client) Initialized() bool {
	return c.webClient != nil && c.idxClient != nil
}

func (c *Client) ensureInit() error {
	if !c.Initialized() {
		return ErrNotInitialized
	}
	return nil
}

func jwtClientFactory(ctx context.Context, key ServiceAccountKey, scope string) (*http.Client, error) {
	tokenURL := key.TokenURI
	if tokenURL == "" {
		tokenURL = google.JWTTokenURL
	}
	cfg := &jwt.Config{
		Email:      key.ClientEmail,
		PrivateKey: []byte(key.PrivateKey),
		TokenURL:   tokenURL,
		Scopes:     []string{scope},
	}
	client := cfg.Client(ctx)
	client.Timeout = 30 * time.Second
	return client, nil
}

// do issues a request and enforces a 2xx response, returning the body.
func (c *Client) do(req *http.Request, client *http.Client) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("close response body", zap.Error(closeErr))
		}
	}()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, truncate(body, 256))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
