package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/esmgis/platcrawl/internal/config"
	"github.com/esmgis/platcrawl/internal/model"
	"github.com/esmgis/platcrawl/internal/store"
)

// Driver runs the hybrid crawl over every configured community and
// aggregates the results into a run summary.
//
// Design decision: We use a separate Driver rather than adding
// multi-community logic to Pipeline because it keeps the Pipeline
// focused on a single community and lets the Driver own run-level
// concerns (concurrency, the final store scan, the summary).
type Driver struct {
	// pipelineFactory creates a fresh pipeline for each community.
	pipelineFactory func() *Pipeline

	// st is scanned after all crawls finish for the exact stored counts.
	st *store.Store

	// concurrency is the maximum number of communities crawled at once.
	// The shared throttle keeps the request rate global, so raising this
	// only overlaps the non-network work.
	concurrency int

	// logger is used for run-level logging.
	logger *slog.Logger

	mu sync.Mutex
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithDriverLogger sets a custom logger for the driver.
func WithDriverLogger(logger *slog.Logger) DriverOption {
	return func(d *Driver) {
		d.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent community
// crawls. Default is 1: communities run one after another.
func WithConcurrency(n int) DriverOption {
	return func(d *Driver) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// NewDriver creates a Driver.
//
// The pipelineFactory is called once per community so that pipeline
// state never leaks between communities.
func NewDriver(pipelineFactory func() *Pipeline, st *store.Store, opts ...DriverOption) *Driver {
	d := &Driver{
		pipelineFactory: pipelineFactory,
		st:              st,
		concurrency:     1,
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = slog.Default()
	}

	return d
}

// Run crawls every seed's community and returns the aggregated summary.
//
// A failing community never stops the others; its error is recorded in
// its report. The summary keeps seed order regardless of completion
// order, and its stored-document counts come from scanning the store
// after the last crawl finishes.
func (d *Driver) Run(ctx context.Context, seeds []config.Seed) (*model.RunSummary, error) {
	d.logger.Info("starting run",
		"communities", len(seeds),
		"concurrency", d.concurrency,
	)

	summary := model.NewRunSummary()
	summary.Communities = make([]*model.CommunityReport, len(seeds))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for i, seed := range seeds {
		g.Go(func() error {
			report := d.crawlCommunity(ctx, seed)
			report.Elapsed = time.Since(report.DateStarted)

			d.mu.Lock()
			summary.Communities[i] = report
			d.mu.Unlock()

			return nil
		})
	}

	// Goroutines record their failures in the reports, so Wait only
	// surfaces a programming error.
	if err := g.Wait(); err != nil {
		return summary, err
	}

	summary.Elapsed = time.Since(summary.DateStarted)

	counts, err := d.st.CountByCommunity()
	if err != nil {
		d.logger.Warn("failed to scan store for final counts", "error", err)
	} else {
		summary.StoredByCommunity = counts
		for _, n := range counts {
			summary.TotalStored += n
		}
	}

	d.logger.Info("run complete",
		"processed", summary.TotalProcessed(),
		"failed", summary.TotalFailed(),
		"stored", summary.TotalStored,
		"elapsed", summary.Elapsed,
	)

	return summary, nil
}

// crawlCommunity runs one community's pipeline and always returns a
// report, even when the seed is unusable.
func (d *Driver) crawlCommunity(ctx context.Context, seed config.Seed) *model.CommunityReport {
	seedID, err := seed.StartID()
	if err != nil {
		d.logger.Error("unusable seed", "community", seed.Community, "error", err)
		return &model.CommunityReport{
			Community:    seed.Community,
			Name:         seed.Name,
			DateStarted:  time.Now(),
			Error:        err,
			ErrorMessage: err.Error(),
		}
	}

	report := model.NewCommunityReport(seedID, seed.Name)

	d.logger.Info("crawling community",
		"community", report.Community,
		"name", report.Name,
		"seed", report.SeedID,
	)

	if err := d.pipelineFactory().Execute(ctx, report); err != nil {
		d.logger.Warn("community crawl ended early",
			"community", report.Community,
			"error", err,
		)
	}

	return report
}
