package crawler

import (
	"context"
	"log/slog"

	"github.com/esmgis/platcrawl/internal/model"
)

// Gateway makes a document present in the store.
type Gateway interface {
	Fetch(ctx context.Context, id model.MapID) error
}

// TextSource returns the page texts of a stored document.
type TextSource interface {
	PageTexts(id model.MapID) ([]string, error)
}

// ReferenceFinder extracts candidate references from page texts.
type ReferenceFinder interface {
	Extract(pageTexts []string, self model.MapID) []model.MapID
}

// Result summarizes one traversal run.
type Result struct {
	// Processed is the number of documents fetched and scanned.
	Processed int

	// Failed is the number of documents that could not be fetched.
	Failed int
}

// Crawler walks the reference graph of one community breadth-first.
type Crawler struct {
	gateway  Gateway
	source   TextSource
	finder   ReferenceFinder
	throttle *Throttle
	logger   *slog.Logger
}

// CrawlerOption configures a Crawler.
type CrawlerOption func(*Crawler)

// WithThrottle sets the shared request throttle.
func WithThrottle(t *Throttle) CrawlerOption {
	return func(c *Crawler) {
		c.throttle = t
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) CrawlerOption {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// NewCrawler creates a Crawler.
func NewCrawler(gateway Gateway, source TextSource, finder ReferenceFinder, opts ...CrawlerOption) *Crawler {
	c := &Crawler{
		gateway: gateway,
		source:  source,
		finder:  finder,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.throttle == nil {
		c.throttle = NewThrottle(0)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Crawl runs a breadth-first traversal from the seed.
//
// Each dequeued ID is fetched once; a fetch failure marks the ID failed
// and the traversal moves on. References extracted from a fetched sheet
// are enqueued only if they are not already processed, failed, or
// queued, so no ID is ever fetched twice. Extraction errors are logged
// and treated as "no references"; they never abort the run.
//
// The only error Crawl returns is the context's, with the counts
// accumulated up to the interruption.
func (c *Crawler) Crawl(ctx context.Context, seed model.MapID) (Result, error) {
	frontier := []model.MapID{seed}
	queued := map[model.MapID]struct{}{seed: {}}
	processed := make(map[model.MapID]struct{})
	failed := make(map[model.MapID]struct{})

	c.logger.Info("starting traversal", "seed", seed.String())

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return Result{Processed: len(processed), Failed: len(failed)}, err
		}

		current := frontier[0]
		frontier = frontier[1:]
		delete(queued, current)

		if _, done := processed[current]; done {
			continue
		}
		if _, done := failed[current]; done {
			continue
		}

		c.logger.Info("processing map",
			"id", current.String(),
			"completed", len(processed),
			"queued", len(frontier))

		if err := c.gateway.Fetch(ctx, current); err != nil {
			if ctx.Err() != nil {
				return Result{Processed: len(processed), Failed: len(failed)}, ctx.Err()
			}
			c.logger.Warn("fetch failed", "id", current.String(), "error", err)
			failed[current] = struct{}{}
			continue
		}
		processed[current] = struct{}{}

		if err := c.throttle.Wait(ctx); err != nil {
			return Result{Processed: len(processed), Failed: len(failed)}, err
		}

		pages, err := c.source.PageTexts(current)
		if err != nil {
			c.logger.Warn("text extraction failed, no references followed",
				"id", current.String(), "error", err)
			continue
		}

		for _, ref := range c.finder.Extract(pages, current) {
			if _, done := processed[ref]; done {
				continue
			}
			if _, done := failed[ref]; done {
				continue
			}
			if _, inQueue := queued[ref]; inQueue {
				continue
			}
			c.logger.Debug("reference found", "id", current.String(), "ref", ref.String())
			frontier = append(frontier, ref)
			queued[ref] = struct{}{}
		}
	}

	c.logger.Info("traversal complete",
		"seed", seed.String(),
		"processed", len(processed),
		"failed", len(failed))

	return Result{Processed: len(processed), Failed: len(failed)}, nil
}
