// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable Load reads the config path
// from.
const EnvironmentVariable = "RAINMETA_CONFIG"

// Config is the rainmeta configuration.
type Config struct {
	// Indexer configures the default subgraphs used to resolve
	// metas by hash.
	Indexer IndexerConfig `yaml:"indexer"`

	// Networks holds named subgraph sets, selected with
	// SubgraphsFor. A network's timeout, when set, replaces
	// Indexer.Timeout.
	Networks map[string]IndexerConfig `yaml:"networks,omitempty"`

	// Cache configures the local metastore.
	Cache CacheConfig `yaml:"cache"`

	// Decode configures the decode pipeline.
	Decode DecodeConfig `yaml:"decode"`

	// Log configures CLI logging.
	Log LogConfig `yaml:"log"`
}

// IndexerConfig lists metaboard subgraph endpoints.
type IndexerConfig struct {
	// Subgraphs are GraphQL endpoint URLs, queried concurrently.
	Subgraphs []string `yaml:"subgraphs"`

	// Timeout bounds one lookup across all subgraphs, as a Go
	// duration string.
	// Default: 30s
	Timeout string `yaml:"timeout,omitempty"`
}

// CacheConfig configures the on-disk metastore.
type CacheConfig struct {
	// Enabled persists resolved metas between runs.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Dir is the metastore directory.
	// Default: ${HOME}/.cache/rainmeta/metas
	Dir string `yaml:"dir"`
}

// DecodeConfig configures document decoding.
type DecodeConfig struct {
	// Workers bounds concurrent item decompression. Zero means
	// GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// LogConfig configures the CLI logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`

	// Format is one of auto, text, json. Auto picks text on a
	// terminal and JSON otherwise.
	// Default: auto
	Format string `yaml:"format"`
}

var logFormats = []string{"auto", "text", "json"}

// Default returns the configuration used when no file is given.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Indexer: IndexerConfig{
			Timeout: "30s",
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     filepath.Join(homeDir, ".cache", "rainmeta", "metas"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load loads configuration from the file named by RAINMETA_CONFIG.
// It fails if the variable is unset; callers that can run without a
// file use Default instead.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your rainmeta.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path on top of Default. Values
// in the file win; the only environment input is ${VAR} expansion in
// path and URL fields.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in
// paths and subgraph URLs.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Cache.Dir = expandVars(c.Cache.Dir, vars)
	for i, subgraph := range c.Indexer.Subgraphs {
		c.Indexer.Subgraphs[i] = expandVars(subgraph, vars)
	}
	for name, network := range c.Networks {
		for i, subgraph := range network.Subgraphs {
			network.Subgraphs[i] = expandVars(subgraph, vars)
		}
		c.Networks[name] = network
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns, looking in
// vars before the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// SubgraphsFor returns the subgraph set for a named network, or the
// default indexer set when network is empty.
func (c *Config) SubgraphsFor(network string) (IndexerConfig, error) {
	if network == "" {
		return c.Indexer, nil
	}
	selected, ok := c.Networks[network]
	if !ok {
		return IndexerConfig{}, fmt.Errorf("unknown network %q (configured: %v)", network, slices.Sorted(maps.Keys(c.Networks)))
	}
	if selected.Timeout == "" {
		selected.Timeout = c.Indexer.Timeout
	}
	return selected, nil
}

// TimeoutDuration parses Timeout, returning zero when it is unset.
func (i IndexerConfig) TimeoutDuration() (time.Duration, error) {
	if i.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(i.Timeout)
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	errs = append(errs, validateIndexer("indexer", c.Indexer)...)
	for _, name := range slices.Sorted(maps.Keys(c.Networks)) {
		network := c.Networks[name]
		if len(network.Subgraphs) == 0 {
			errs = append(errs, fmt.Errorf("networks.%s.subgraphs is empty", name))
		}
		errs = append(errs, validateIndexer("networks."+name, network)...)
	}

	if c.Cache.Enabled && c.Cache.Dir == "" {
		errs = append(errs, errors.New("cache.dir is required when the cache is enabled"))
	}

	if c.Decode.Workers < 0 {
		errs = append(errs, fmt.Errorf("decode.workers must not be negative (got %d)", c.Decode.Workers))
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", logFormats))
	}

	return errors.Join(errs...)
}

func validateIndexer(prefix string, indexer IndexerConfig) []error {
	var errs []error
	for i, subgraph := range indexer.Subgraphs {
		parsed, err := url.Parse(subgraph)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			errs = append(errs, fmt.Errorf("%s.subgraphs[%d] is not an http(s) URL: %q", prefix, i, subgraph))
		}
	}
	if timeout, err := indexer.TimeoutDuration(); err != nil {
		errs = append(errs, fmt.Errorf("%s.timeout: %w", prefix, err))
	} else if timeout < 0 {
		errs = append(errs, fmt.Errorf("%s.timeout must not be negative", prefix))
	}
	return errs
}

// EnsureCacheDir creates the cache directory when the cache is
// enabled.
func (c *Config) EnsureCacheDir() error {
	if !c.Cache.Enabled || c.Cache.Dir == "" {
		return nil
	}
	if err := os.MkdirAll(c.Cache.Dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", c.Cache.Dir, err)
	}
	return nil
}
