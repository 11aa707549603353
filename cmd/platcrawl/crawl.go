package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/esmgis/platcrawl/internal/config"
	"github.com/esmgis/platcrawl/internal/crawler"
	"github.com/esmgis/platcrawl/internal/database"
	"github.com/esmgis/platcrawl/internal/extract"
	"github.com/esmgis/platcrawl/internal/fetch"
	"github.com/esmgis/platcrawl/internal/log"
	"github.com/esmgis/platcrawl/internal/model"
	"github.com/esmgis/platcrawl/internal/pipeline"
	"github.com/esmgis/platcrawl/internal/report"
	"github.com/esmgis/platcrawl/internal/store"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [community...]",
		Short: "Download plat maps from the county archive",
		Long: `Crawl downloads plat maps into the local store directory.

For each community it runs four phases:
1. Traversal  - follow cross-references starting from the seed map
2. Sweep      - try sequence numbers in order until the tail is reached
3. Re-extract - read references from the sheets the sweep found
4. Backfill   - fetch any referenced sheet still missing from the store

Already-downloaded maps are never fetched again, so re-running the
command only picks up what is missing.

Examples:
  # Crawl every known community
  platcrawl crawl

  # Crawl only Goldfield and Silver Peak
  platcrawl crawl 001 002

  # Slow the crawl down and write a markdown report
  platcrawl crawl --delay 3s --markdown -o report.md

  # Use a custom configuration file
  platcrawl crawl -c myconfig.yaml

Configuration file (.platcrawl) example:
  fetchDelay: 2s
  outputDir: /srv/plat_maps
  seeds:
    - community: "001"
      start: "001-01"
      name: goldfield`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().StringP("store", "s", config.DefaultOutputDir,
		"Directory the downloaded plat maps are stored in")
	cmd.Flags().DurationP("delay", "d", config.DefaultFetchDelay,
		"Minimum interval between requests to the county server")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for each request")
	cmd.Flags().IntP("max-attempts", "a", config.DefaultMaxProbeAttempts,
		"Highest sequence number the systematic sweep tries")
	cmd.Flags().Int("cutoff", config.DefaultFailureCutoff,
		"Consecutive sweep failures that end a community's sweep")
	cmd.Flags().IntP("batch", "b", config.DefaultConcurrency,
		"Number of communities crawled concurrently")
	cmd.Flags().String("url-template", config.DefaultURLTemplate,
		"Origin URL with an {id} placeholder")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .platcrawl in current or home directory)")

	// History flags
	cmd.Flags().Bool("no-db", false,
		"Skip recording run history in the local database")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCrawlConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger, counter := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("received shutdown signal, finishing current request...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger, counter)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildCrawlConfig creates a Config from the config file and flags.
// Precedence, lowest to highest: built-in defaults, the configuration
// file, explicitly set flags.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file path, error if not
	// found. Otherwise a missing file is fine.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	// Flags override the file only when actually set on the command line.
	if cmd.Flags().Changed("store") {
		if cfg.OutputDir, err = cmd.Flags().GetString("store"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("delay") {
		if cfg.FetchDelay, err = cmd.Flags().GetDuration("delay"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("timeout") {
		if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("max-attempts") {
		if cfg.MaxProbeAttempts, err = cmd.Flags().GetInt("max-attempts"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("cutoff") {
		if cfg.FailureCutoff, err = cmd.Flags().GetInt("cutoff"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("batch") {
		if cfg.Concurrency, err = cmd.Flags().GetInt("batch"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("url-template") {
		if cfg.URLTemplate, err = cmd.Flags().GetString("url-template"); err != nil {
			return nil, err
		}
	}

	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	cfg.DBDir = config.XDGDataDir()

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional arguments narrow the crawl to specific communities.
	if len(args) > 0 {
		cfg.Seeds, err = filterSeeds(cfg.Seeds, args)
		if err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// filterSeeds keeps only the seeds whose community is listed.
func filterSeeds(seeds []config.Seed, communities []string) ([]config.Seed, error) {
	byCommunity := make(map[string]config.Seed, len(seeds))
	known := make([]string, 0, len(seeds))
	for _, s := range seeds {
		byCommunity[s.Community] = s
		known = append(known, s.Community)
	}

	filtered := make([]config.Seed, 0, len(communities))
	for _, c := range communities {
		seed, ok := byCommunity[c]
		if !ok {
			return nil, fmt.Errorf("unknown community %q (known: %s)", c, strings.Join(known, ", "))
		}
		filtered = append(filtered, seed)
	}
	return filtered, nil
}

// runCrawl executes the crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, counter *log.CountingHandler) error {
	st, err := store.New(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("cannot use store directory: %w", err)
	}

	logger.Info("starting crawl",
		"store", st.Dir(),
		"communities", len(cfg.Seeds),
		"delay", cfg.FetchDelay,
	)

	// Open the history database. Failure degrades to a warning; the
	// store directory stays authoritative.
	var db *database.HistoryDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			logger.Warn("run history disabled, database unavailable", "error", err)
			db = nil
		} else {
			defer db.Close()
			logger.Info("database opened", "path", db.Path())
		}
	}

	throttle := crawler.NewThrottle(cfg.FetchDelay)
	gateway := fetch.New(cfg.URLTemplate, st,
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithLogger(logger),
	)
	source := extract.NewDocumentSource(st, extract.NewPDFReader())
	finder := extract.NewExtractor(extract.WithExtractorLogger(logger))

	factory := func() *pipeline.Pipeline {
		traverser := crawler.NewCrawler(gateway, source, finder,
			crawler.WithThrottle(throttle),
			crawler.WithLogger(logger),
		)
		prober := crawler.NewProber(gateway, st,
			crawler.WithProberThrottle(throttle),
			crawler.WithProberLogger(logger),
			crawler.WithMaxAttempts(cfg.MaxProbeAttempts),
			crawler.WithCutoff(cfg.FailureCutoff),
		)

		p := pipeline.New(pipeline.WithLogger(logger))
		p.AddSteps(
			pipeline.NewTraverseStep(traverser),
			pipeline.NewProbeStep(prober),
			pipeline.NewReextractStep(source, finder, st, logger),
			pipeline.NewBackfillStep(gateway, throttle, logger),
		)
		return p
	}

	driver := pipeline.NewDriver(factory, st,
		pipeline.WithDriverLogger(logger),
		pipeline.WithConcurrency(cfg.Concurrency),
	)

	summary, err := driver.Run(ctx, cfg.Seeds)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if outErr := outputReport(cfg, summary); outErr != nil {
		return outErr
	}

	if db != nil {
		// Persist even after an interrupt; the partial results are real.
		saveRunHistory(context.Background(), db, st, summary, logger)
	}

	if n := counter.WarnCount(); n > 0 {
		logger.Warn("crawl finished with warnings", "warnings", n)
	}

	if summary.Aborted() {
		return errors.New("crawl interrupted, partial results written")
	}
	return nil
}

// outputReport outputs the run summary in the requested format.
func outputReport(cfg *config.Config, summary *model.RunSummary) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(summary)
	return err
}

// saveRunHistory records the run and refreshes the document hashes.
// History failures are warnings: the store already holds the documents.
func saveRunHistory(ctx context.Context, db *database.HistoryDB, st *store.Store, summary *model.RunSummary, logger *slog.Logger) {
	if err := db.SaveRunSummary(ctx, summary); err != nil {
		logger.Warn("failed to record run", "error", err)
		return
	}

	ids, err := st.List()
	if err != nil {
		logger.Warn("failed to list store for document hashes", "error", err)
		return
	}

	records := make([]model.DocumentRecord, 0, len(ids))
	for _, id := range ids {
		content, err := st.Read(id)
		if err != nil {
			logger.Warn("failed to read document for hashing", "id", id.String(), "error", err)
			continue
		}
		records = append(records, model.NewDocumentRecord(id, content))
	}

	if err := db.UpsertDocuments(ctx, records); err != nil {
		logger.Warn("failed to record document hashes", "error", err)
		return
	}

	logger.Info("run history saved", "documents", len(records))
}
