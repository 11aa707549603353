package pipeline

import (
	"context"
	"log/slog"
	"sort"

	"github.com/esmgis/platcrawl/internal/crawler"
	"github.com/esmgis/platcrawl/internal/model"
)

// Traverser runs a reference-following traversal from a seed.
type Traverser interface {
	Crawl(ctx context.Context, seed model.MapID) (crawler.Result, error)
}

// SweepProber runs a systematic sequence sweep over a community.
type SweepProber interface {
	Probe(ctx context.Context, community string) ([]model.MapID, error)
}

// TraverseStep runs the reference-following traversal (phase 1).
type TraverseStep struct {
	traverser Traverser
}

// NewTraverseStep creates a TraverseStep.
func NewTraverseStep(traverser Traverser) *TraverseStep {
	return &TraverseStep{traverser: traverser}
}

// Name returns the phase name.
func (s *TraverseStep) Name() string {
	return "traversal"
}

// Do runs the traversal from the report's seed and records the counts.
// The counts are recorded even when the traversal is interrupted.
func (s *TraverseStep) Do(ctx context.Context, report *model.CommunityReport) error {
	result, err := s.traverser.Crawl(ctx, report.Seed)
	report.TraversalProcessed = result.Processed
	report.TraversalFailed = result.Failed
	return err
}

// ProbeStep runs the systematic sweep (phase 2).
type ProbeStep struct {
	prober SweepProber
}

// NewProbeStep creates a ProbeStep.
func NewProbeStep(prober SweepProber) *ProbeStep {
	return &ProbeStep{prober: prober}
}

// Name returns the phase name.
func (s *ProbeStep) Name() string {
	return "systematic-sweep"
}

// Do sweeps the report's community and records the discovered IDs.
func (s *ProbeStep) Do(ctx context.Context, report *model.CommunityReport) error {
	discovered, err := s.prober.Probe(ctx, report.Community)
	report.SetDiscovered(discovered)
	return err
}

// ReextractStep re-runs reference extraction over every sheet the sweep
// discovered (phase 3). The sweep fetches documents without reading
// them, so their annotations have not been followed yet.
type ReextractStep struct {
	source crawler.TextSource
	finder crawler.ReferenceFinder
	index  crawler.StoreIndex
	logger *slog.Logger
}

// NewReextractStep creates a ReextractStep.
func NewReextractStep(source crawler.TextSource, finder crawler.ReferenceFinder, index crawler.StoreIndex, logger *slog.Logger) *ReextractStep {
	return &ReextractStep{source: source, finder: finder, index: index, logger: logger}
}

// Name returns the phase name.
func (s *ReextractStep) Name() string {
	return "re-extraction"
}

// Do extracts references from each discovered sheet and records the
// same-community ones not yet present in the store, deduplicated across
// all sheets and sorted. Unreadable sheets are skipped.
func (s *ReextractStep) Do(ctx context.Context, report *model.CommunityReport) error {
	pending := make(map[model.MapID]struct{})

	for _, id := range report.Discovered {
		if err := ctx.Err(); err != nil {
			return err
		}

		pages, err := s.source.PageTexts(id)
		if err != nil {
			s.logger.Warn("skipping unreadable sheet in re-extraction",
				"id", id.String(), "error", err)
			continue
		}

		for _, ref := range s.finder.Extract(pages, id) {
			if s.index.Exists(ref) {
				continue
			}
			pending[ref] = struct{}{}
		}
	}

	refs := make([]model.MapID, 0, len(pending))
	for id := range pending {
		refs = append(refs, id)
	}
	sort.Slice(refs, func(i, j int) bool {
		return refs[i].String() < refs[j].String()
	})

	report.SetPendingRefs(refs)
	return nil
}

// BackfillStep fetches the references the re-extraction pass found
// missing (phase 4).
type BackfillStep struct {
	gateway  crawler.Gateway
	throttle *crawler.Throttle
	logger   *slog.Logger
}

// NewBackfillStep creates a BackfillStep.
func NewBackfillStep(gateway crawler.Gateway, throttle *crawler.Throttle, logger *slog.Logger) *BackfillStep {
	return &BackfillStep{gateway: gateway, throttle: throttle, logger: logger}
}

// Name returns the phase name.
func (s *BackfillStep) Name() string {
	return "backfill"
}

// Do fetches every pending reference once, tallying successes and
// failures. A failure here is final: the ID was referenced but the
// origin has no document for it.
func (s *BackfillStep) Do(ctx context.Context, report *model.CommunityReport) error {
	for _, id := range report.PendingRefs {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.gateway.Fetch(ctx, id); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("backfill fetch failed", "id", id.String(), "error", err)
			report.AdditionalFailed++
		} else {
			report.AdditionalProcessed++
		}

		if err := s.throttle.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}
