package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/esmgis/platcrawl/internal/config"
)

// buildTestConfigFromFile loads a config file over the defaults.
func buildTestConfigFromFile(t *testing.T, path string) *config.Config {
	t.Helper()

	cfg := config.NewConfig()
	cf, err := config.LoadConfigFile(path)
	if err != nil {
		t.Fatalf("failed to load config file: %v", err)
	}
	cf.Apply(cfg)
	return cfg
}

// TestBuildCrawlConfig tests flag and file precedence.
func TestBuildCrawlConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults without flags", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		cfg, err := buildCrawlConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.FetchDelay != config.DefaultFetchDelay {
			t.Errorf("expected default delay, got %v", cfg.FetchDelay)
		}
		if len(cfg.Seeds) != len(config.DefaultSeeds()) {
			t.Errorf("expected the built-in seed list, got %d seeds", len(cfg.Seeds))
		}
		if !cfg.SaveToDB {
			t.Error("expected run history enabled by default")
		}
	})

	t.Run("explicit flags override defaults", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("delay", "5s"); err != nil {
			t.Fatal(err)
		}
		if err := cmd.Flags().Set("cutoff", "3"); err != nil {
			t.Fatal(err)
		}
		if err := cmd.Flags().Set("no-db", "true"); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildCrawlConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.FetchDelay != 5*time.Second {
			t.Errorf("expected 5s delay, got %v", cfg.FetchDelay)
		}
		if cfg.FailureCutoff != 3 {
			t.Errorf("expected cutoff 3, got %d", cfg.FailureCutoff)
		}
		if cfg.SaveToDB {
			t.Error("expected run history disabled")
		}
	})

	t.Run("config file applies under explicit flags", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "conf.yaml")
		content := "fetchDelay: 10s\nfailureCutoff: 4\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("config", path); err != nil {
			t.Fatal(err)
		}
		if err := cmd.Flags().Set("delay", "2s"); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildCrawlConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.FetchDelay != 2*time.Second {
			t.Errorf("expected the flag to win, got %v", cfg.FetchDelay)
		}
		if cfg.FailureCutoff != 4 {
			t.Errorf("expected the file value for cutoff, got %d", cfg.FailureCutoff)
		}
	})

	t.Run("missing explicit config file is an error", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("config", filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
			t.Fatal(err)
		}

		if _, err := buildCrawlConfig(cmd, nil); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})

	t.Run("positional arguments narrow the seed list", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		cfg, err := buildCrawlConfig(cmd, []string{"002", "007"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Seeds) != 2 {
			t.Fatalf("expected 2 seeds, got %d", len(cfg.Seeds))
		}
		if cfg.Seeds[0].Community != "002" || cfg.Seeds[1].Community != "007" {
			t.Errorf("unexpected seeds: %+v", cfg.Seeds)
		}
	})

	t.Run("unknown community is an error", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if _, err := buildCrawlConfig(cmd, []string{"999"}); err == nil {
			t.Error("expected error for unknown community")
		}
	})

	t.Run("conflicting report formats fail validation", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("json", "true"); err != nil {
			t.Fatal(err)
		}
		if err := cmd.Flags().Set("markdown", "true"); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildCrawlConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := cfg.Validate(); err == nil {
			t.Error("expected validation to reject conflicting formats")
		}
	})
}
