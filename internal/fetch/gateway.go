package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/esmgis/platcrawl/internal/model"
	"github.com/esmgis/platcrawl/internal/store"
)

// idPlaceholder is the template token replaced by the canonical map ID.
const idPlaceholder = "{id}"

// Gateway fetches documents from the origin into the store.
//
// Design decision: The gateway owns both the HTTP round-trip and the
// store write because the rest of the system reasons in terms of a single
// operation: "make this ID present in the store". Splitting the two would
// force every phase to repeat the exists/download/write dance.
type Gateway struct {
	// client performs the HTTP requests.
	client *http.Client

	// urlTemplate is the origin URL with an {id} placeholder.
	urlTemplate string

	// st is the document store the gateway writes into.
	st *store.Store

	// userAgent is the User-Agent header to send.
	userAgent string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	// logger reports fetch attempts and outcomes.
	logger *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.client.Timeout = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(g *Gateway) {
		g.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) Option {
	return func(g *Gateway) {
		g.maxBodySize = size
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithHTTPClient replaces the HTTP client entirely.
// Useful for tests and for callers that need custom transports.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) {
		g.client = client
	}
}

// New creates a Gateway writing into the given store.
// The template must contain the {id} placeholder; config validation
// guarantees this for templates that come from the CLI.
func New(urlTemplate string, st *store.Store, opts ...Option) *Gateway {
	g := &Gateway{
		client:      &http.Client{Timeout: 30 * time.Second},
		urlTemplate: urlTemplate,
		st:          st,
		userAgent:   "platcrawl/1.0",
		maxBodySize: 50 * 1024 * 1024,
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.logger == nil {
		g.logger = slog.Default()
	}

	return g
}

// URL returns the origin URL for a map ID.
func (g *Gateway) URL(id model.MapID) string {
	return strings.ReplaceAll(g.urlTemplate, idPlaceholder, id.String())
}

// Fetch makes the document for id present in the store.
//
// If the document already exists, Fetch returns nil without touching the
// network. A non-nil error means the ID could not be retrieved; callers
// treat that as terminal for the ID within the current phase.
func (g *Gateway) Fetch(ctx context.Context, id model.MapID) error {
	if g.st.Exists(id) {
		g.logger.Debug("skipping fetch, document already stored", "id", id.String())
		return nil
	}

	url := g.URL(id)
	g.logger.Info("downloading document", "id", id.String(), "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", id, err)
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch failed for %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fetch failed for %s: unexpected status %d", id, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, g.maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read body for %s: %w", id, err)
	}

	if err := g.st.Write(id, body); err != nil {
		return err
	}

	g.logger.Info("document stored", "id", id.String(), "bytes", len(body))
	return nil
}
