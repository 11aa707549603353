package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".platcrawl"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .platcrawl configuration file.
// Every field is optional; unset fields keep their defaults (or their
// flag-provided values, since flags are applied after the file).
type File struct {
	// URLTemplate overrides the origin URL template.
	URLTemplate string `yaml:"urlTemplate,omitempty"`

	// OutputDir overrides the plat-map store directory.
	OutputDir string `yaml:"outputDir,omitempty"`

	// FetchDelay overrides the inter-request throttle.
	FetchDelay Duration `yaml:"fetchDelay,omitempty"`

	// MaxProbeAttempts overrides the systematic sweep bound.
	MaxProbeAttempts int `yaml:"maxProbeAttempts,omitempty"`

	// FailureCutoff overrides the consecutive-failure cutoff.
	FailureCutoff int `yaml:"failureCutoff,omitempty"`

	// Seeds replaces the built-in community seed list entirely when set.
	Seeds []Seed `yaml:"seeds,omitempty"`
}

// LoadConfigFile loads crawl settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers
// should handle this error based on whether the path was explicitly
// specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// Apply copies the file's set fields onto the config.
// Unset (zero) fields leave the config untouched.
func (cf *File) Apply(cfg *Config) {
	if cf.URLTemplate != "" {
		cfg.URLTemplate = cf.URLTemplate
	}
	if cf.OutputDir != "" {
		cfg.OutputDir = cf.OutputDir
	}
	if !cf.FetchDelay.IsZero() {
		cfg.FetchDelay = cf.FetchDelay.Duration
	}
	if cf.MaxProbeAttempts != 0 {
		cfg.MaxProbeAttempts = cf.MaxProbeAttempts
	}
	if cf.FailureCutoff != 0 {
		cfg.FailureCutoff = cf.FailureCutoff
	}
	if len(cf.Seeds) > 0 {
		cfg.Seeds = cf.Seeds
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .platcrawl in the current directory
// 3. Look for .platcrawl in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if
// not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
