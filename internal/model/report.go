package model

import (
	"time"
)

// CommunityReport accumulates the results of one community's hybrid crawl.
// It is created before phase 1 and mutated by each pipeline step in turn:
// traversal fills the traversal counts, probing fills Discovered,
// re-extraction fills PendingRefs, and backfill fills the additional counts.
type CommunityReport struct {
	// Community is the community prefix, e.g. "001".
	Community string `json:"community"`

	// Name is the human-readable community name from the seed list,
	// e.g. "goldfield". May be empty when the seed carries no name.
	Name string `json:"name,omitempty"`

	// Seed is the map ID the traversal phase started from.
	Seed MapID `json:"-"`

	// SeedID is the canonical string form of Seed, kept for JSON output.
	SeedID string `json:"seed"`

	// DateStarted is when the community's crawl began.
	DateStarted time.Time `json:"date_started"`

	// Elapsed is the wall-clock duration of the whole hybrid crawl.
	Elapsed time.Duration `json:"elapsed"`

	// TraversalProcessed is the number of maps fetched and reference-
	// extracted by the reference-following traversal (phase 1).
	TraversalProcessed int `json:"traversal_processed"`

	// TraversalFailed is the number of fetch failures during traversal.
	TraversalFailed int `json:"traversal_failed"`

	// Discovered holds the maps found by the systematic sweep (phase 2),
	// including maps already on disk from a prior run.
	Discovered []MapID `json:"-"`

	// DiscoveredIDs mirrors Discovered in canonical string form.
	DiscoveredIDs []string `json:"discovered"`

	// PendingRefs holds same-community references extracted from probed
	// maps (phase 3) that were not yet in the store.
	PendingRefs []MapID `json:"-"`

	// PendingRefIDs mirrors PendingRefs in canonical string form.
	PendingRefIDs []string `json:"pending_refs"`

	// AdditionalProcessed counts backfill fetches that succeeded (phase 4).
	AdditionalProcessed int `json:"additional_processed"`

	// AdditionalFailed counts backfill fetches that failed (phase 4).
	AdditionalFailed int `json:"additional_failed"`

	// PerformedPhases lists the phases that ran, in order.
	PerformedPhases []string `json:"performed_phases"`

	// Aborted indicates the crawl was cancelled before completing.
	Aborted bool `json:"aborted,omitempty"`

	// Error holds the first fatal error, if any. Not serialized directly.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewCommunityReport creates a report for one community crawl.
func NewCommunityReport(seed MapID, name string) *CommunityReport {
	return &CommunityReport{
		Community:   seed.Community(),
		Name:        name,
		Seed:        seed,
		SeedID:      seed.String(),
		DateStarted: time.Now(),
	}
}

// SetDiscovered records the probe results and their string mirror.
func (r *CommunityReport) SetDiscovered(ids []MapID) {
	r.Discovered = ids
	r.DiscoveredIDs = canonicalStrings(ids)
}

// SetPendingRefs records the re-extraction results and their string mirror.
func (r *CommunityReport) SetPendingRefs(ids []MapID) {
	r.PendingRefs = ids
	r.PendingRefIDs = canonicalStrings(ids)
}

// TotalProcessed returns the additive processed count across all phases.
//
// The phases are not deduplicated against each other: a map counted by
// traversal and rediscovered by the systematic sweep counts twice. This
// mirrors the accounting of the original retrieval tooling; the exact
// per-community document counts in RunSummary come from scanning the
// store instead.
func (r *CommunityReport) TotalProcessed() int {
	return r.TraversalProcessed + len(r.Discovered) + r.AdditionalProcessed
}

// TotalFailed returns the failure count across all phases.
func (r *CommunityReport) TotalFailed() int {
	return r.TraversalFailed + r.AdditionalFailed
}

// canonicalStrings converts IDs to their canonical string form.
func canonicalStrings(ids []MapID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// RunSummary is the externally observable result of a whole run: one
// CommunityReport per seed plus the grouped stored-document counts
// obtained by scanning the store after all crawls finish.
type RunSummary struct {
	// DateStarted is when the run began.
	DateStarted time.Time `json:"date_started"`

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed"`

	// Communities holds one report per configured seed, in seed order.
	Communities []*CommunityReport `json:"communities"`

	// StoredByCommunity maps community prefix to the number of documents
	// present in the store after the run. Unlike the additive phase
	// totals, these counts are exact.
	StoredByCommunity map[string]int `json:"stored_by_community"`

	// TotalStored is the total number of documents in the store.
	TotalStored int `json:"total_stored"`
}

// NewRunSummary creates an empty run summary stamped with the start time.
func NewRunSummary() *RunSummary {
	return &RunSummary{
		DateStarted:       time.Now(),
		Communities:       make([]*CommunityReport, 0),
		StoredByCommunity: make(map[string]int),
	}
}

// TotalProcessed sums the additive processed counts of all communities.
func (s *RunSummary) TotalProcessed() int {
	total := 0
	for _, r := range s.Communities {
		total += r.TotalProcessed()
	}
	return total
}

// TotalFailed sums the failure counts of all communities.
func (s *RunSummary) TotalFailed() int {
	total := 0
	for _, r := range s.Communities {
		total += r.TotalFailed()
	}
	return total
}

// Aborted reports whether any community crawl was cancelled.
func (s *RunSummary) Aborted() bool {
	for _, r := range s.Communities {
		if r.Aborted {
			return true
		}
	}
	return false
}
