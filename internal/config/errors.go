package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoSeeds is returned when the seed list is empty. Without at
	// least one (community, starting map) pair there is nothing to crawl.
	ErrNoSeeds = errors.New("no seeds configured: provide at least one community starting map")

	// ErrInvalidURLTemplate is returned when the origin URL template does
	// not contain the {id} placeholder that the map ID substitutes into.
	ErrInvalidURLTemplate = errors.New("invalid URL template: must contain the {id} placeholder")

	// ErrInvalidTimeout is returned when the per-request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidFetchDelay is returned when the inter-request delay is negative.
	// A negative delay is invalid; use 0 for no throttle.
	ErrInvalidFetchDelay = errors.New("invalid fetch delay: must be non-negative")

	// ErrInvalidMaxAttempts is returned when the systematic probe limit is
	// not positive. Zero attempts would skip the discovery sweep entirely;
	// disable probing by policy, not by a zero limit.
	ErrInvalidMaxAttempts = errors.New("invalid max probe attempts: must be positive")

	// ErrInvalidFailureCutoff is returned when the consecutive-failure
	// cutoff is not positive. A zero cutoff would stop the sweep before
	// the first attempt.
	ErrInvalidFailureCutoff = errors.New("invalid failure cutoff: must be positive")

	// ErrInvalidConcurrency is returned when the community concurrency is
	// not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrSeedMismatch is returned when a seed's starting map does not
	// belong to the seed's community prefix.
	ErrSeedMismatch = errors.New("seed starting map does not belong to its community")
)
