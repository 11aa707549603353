package config

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/esmgis/platcrawl/internal/model"
)

// Default configuration values.
// These values match the behavior of the county's original retrieval
// tooling where applicable.
const (
	// DefaultURLTemplate is the per-map download URL. The canonical map
	// ID string is substituted for the {id} placeholder.
	DefaultURLTemplate = "https://esmeraldanv.devnetwedge.com/PropertyImages/Platmaps/{id}.pdf"

	// DefaultOutputDir is the directory the downloaded plat maps are
	// stored in, relative to the working directory.
	DefaultOutputDir = "plat_maps"

	// DefaultFetchDelay is the pause between requests to the origin.
	// This is a deliberate throttle, not incidental latency: the county
	// server is small and a sequential 1-second cadence keeps the crawl
	// from overloading it. Do not lower this without a policy decision.
	DefaultFetchDelay = 1 * time.Second

	// DefaultTimeout is the per-request HTTP timeout. Scanned plat
	// sheets are a few MB at most; 30 seconds is generous.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxProbeAttempts bounds the systematic discovery sweep.
	// Sheet numbers run 01-99 in practice, so 100 covers the space.
	DefaultMaxProbeAttempts = 100

	// DefaultFailureCutoff stops the systematic sweep after this many
	// consecutive fetch failures. The sweep assumes a sparse tail rather
	// than interior gaps; ten misses in a row means the sequence ended.
	DefaultFailureCutoff = 10

	// DefaultConcurrency is the number of communities crawled at once.
	// 1 preserves the single-stream, rate-limited behavior; the throttle
	// is shared globally if this is raised.
	DefaultConcurrency = 1

	// DefaultMaxBodySize limits the response body size for one document.
	// Scanned sheets are large; 50MB leaves ample headroom while still
	// bounding memory.
	DefaultMaxBodySize = 50 * 1024 * 1024 // 50MB

	// DefaultUserAgent identifies platcrawl in HTTP requests so the
	// county can attribute the traffic.
	DefaultUserAgent = "platcrawl/1.0 (+https://github.com/esmgis/platcrawl)"

	// AppName is the application name used for XDG directory paths.
	AppName = "platcrawl"
)

// Seed is one (community, starting map) pair for the multi-community
// driver. The traversal phase starts from Start; probing and the grouped
// summary key off Community.
type Seed struct {
	// Community is the fixed-width community prefix, e.g. "001".
	Community string `yaml:"community"`

	// Start is the canonical ID of the map the traversal begins at,
	// e.g. "001-01".
	Start string `yaml:"start"`

	// Name is an optional human-readable community name used in reports,
	// e.g. "goldfield".
	Name string `yaml:"name,omitempty"`
}

// DefaultSeeds returns the known Esmeralda County communities and their
// starting maps. Community 000 (mining claims) and 101 are deliberately
// absent: 000 follows a different numbering convention and 101's contents
// are unverified.
func DefaultSeeds() []Seed {
	return []Seed{
		{Community: "001", Start: "001-01", Name: "goldfield"},
		{Community: "002", Start: "002-01", Name: "silver peak"},
		{Community: "003", Start: "003-01", Name: "gold point"},
		{Community: "004", Start: "004-01", Name: "lida"},
		{Community: "006", Start: "006-01", Name: "lida"},
		{Community: "007", Start: "007-01", Name: "dyer"},
	}
}

// Config holds all configuration options for platcrawl.
// This struct is populated from CLI flags and the optional .platcrawl
// file and passed through the application via dependency injection
// rather than global state.
type Config struct {
	// URLTemplate is the origin URL with an {id} placeholder for the
	// canonical map ID.
	URLTemplate string

	// OutputDir is the store directory for downloaded plat maps.
	// Existence of a file at the expected path is the sole cross-run
	// de-duplication signal.
	OutputDir string

	// FetchDelay is the minimum interval between origin requests.
	FetchDelay time.Duration

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// MaxProbeAttempts bounds the systematic discovery sweep per community.
	MaxProbeAttempts int

	// FailureCutoff is the consecutive-failure count that ends the sweep.
	FailureCutoff int

	// Concurrency is the number of communities crawled concurrently.
	// The request throttle remains global regardless of this value.
	Concurrency int

	// MaxBodySize is the maximum document size in bytes to read.
	MaxBodySize int64

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string

	// Seeds lists the communities to crawl, in order.
	Seeds []Seed

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON report output instead of the
	// human-readable format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of the
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report. When set, the
	// report is written there instead of stdout.
	ReportFile string

	// ConfigFilePath is the path to the configuration file. If empty,
	// the tool searches for .platcrawl in the current directory and then
	// in the user's home directory.
	ConfigFilePath string

	// DBDir is the directory for the run-history SQLite database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to record run history. A database
	// failure degrades to a warning; the store stays authoritative.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe defaults that reproduce the behavior of the
// original retrieval tooling. Users can override specific values after
// creation.
func NewConfig() *Config {
	return &Config{
		URLTemplate:      DefaultURLTemplate,
		OutputDir:        DefaultOutputDir,
		FetchDelay:       DefaultFetchDelay,
		Timeout:          DefaultTimeout,
		MaxProbeAttempts: DefaultMaxProbeAttempts,
		FailureCutoff:    DefaultFailureCutoff,
		Concurrency:      DefaultConcurrency,
		MaxBodySize:      DefaultMaxBodySize,
		UserAgent:        DefaultUserAgent,
		Seeds:            DefaultSeeds(),
	}
}

// XDGDataDir returns the XDG data directory for platcrawl.
// On Linux: ~/.local/share/platcrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for platcrawl.
// On Linux: ~/.config/platcrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first error found: fixing one error often makes others
// irrelevant. This is called once after CLI parsing, before any fetch.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}

	if !strings.Contains(c.URLTemplate, "{id}") {
		return ErrInvalidURLTemplate
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.FetchDelay < 0 {
		return ErrInvalidFetchDelay
	}

	if c.MaxProbeAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	if c.FailureCutoff <= 0 {
		return ErrInvalidFailureCutoff
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	for _, seed := range c.Seeds {
		if _, err := seed.StartID(); err != nil {
			return err
		}
	}

	return nil
}

// StartID parses the seed's starting map and verifies it belongs to the
// seed's community.
func (s Seed) StartID() (model.MapID, error) {
	id, err := model.ParseMapID(s.Start)
	if err != nil {
		return model.MapID{}, errors.Join(ErrSeedMismatch, err)
	}
	if id.Community() != s.Community {
		return model.MapID{}, ErrSeedMismatch
	}
	return id, nil
}
