// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "rainmeta.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if len(cfg.Indexer.Subgraphs) != 0 {
		t.Errorf("expected no default subgraphs, got %v", cfg.Indexer.Subgraphs)
	}
	if cfg.Indexer.Timeout != "30s" {
		t.Errorf("expected timeout=30s, got %s", cfg.Indexer.Timeout)
	}
	if !cfg.Cache.Enabled {
		t.Error("expected cache enabled by default")
	}
	if !strings.HasSuffix(cfg.Cache.Dir, filepath.Join(".cache", "rainmeta", "metas")) {
		t.Errorf("unexpected default cache dir %s", cfg.Cache.Dir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoad_RequiresEnvironmentVariable(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when RAINMETA_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "RAINMETA_CONFIG environment variable not set") {
		t.Errorf("unexpected error message %q", err)
	}
}

func TestLoad_WithEnvironmentVariable(t *testing.T) {
	configPath := writeConfig(t, `
indexer:
  subgraphs:
    - https://example.com/subgraphs/metaboard
log:
  level: debug
`)
	t.Setenv(EnvironmentVariable, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if diff := cmp.Diff([]string{"https://example.com/subgraphs/metaboard"}, cfg.Indexer.Subgraphs); diff != "" {
		t.Errorf("subgraphs mismatch (-want +got):\n%s", diff)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Log.Level)
	}
	// Unset fields keep their defaults.
	if cfg.Indexer.Timeout != "30s" || cfg.Log.Format != "auto" {
		t.Errorf("defaults lost: timeout=%s format=%s", cfg.Indexer.Timeout, cfg.Log.Format)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("SUBGRAPH_HOST", "")

	configPath := writeConfig(t, `
indexer:
  subgraphs:
    - https://${SUBGRAPH_HOST:-api.example.com}/metaboard
  timeout: 5s
networks:
  flare:
    subgraphs:
      - https://flare.example.com/metaboard
cache:
  enabled: true
  dir: ${HOME}/metas
decode:
  workers: 4
log:
  level: warn
  format: json
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if got := cfg.Indexer.Subgraphs[0]; got != "https://api.example.com/metaboard" {
		t.Errorf("subgraph not expanded with default: %s", got)
	}
	if cfg.Cache.Dir != "/home/tester/metas" {
		t.Errorf("cache dir not expanded: %s", cfg.Cache.Dir)
	}
	if cfg.Decode.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Decode.Workers)
	}
	timeout, err := cfg.Indexer.TimeoutDuration()
	if err != nil || timeout != 5*time.Second {
		t.Errorf("TimeoutDuration = %v, %v; want 5s", timeout, err)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); !os.IsNotExist(err) {
		t.Errorf("missing file error = %v, want not-exist", err)
	}
	if _, err := LoadFile(writeConfig(t, "indexer: [not, a, map]")); err == nil {
		t.Error("expected parse error for malformed YAML")
	}
}

func TestEnvVarsDoNotOverride(t *testing.T) {
	t.Setenv("RAINMETA_CACHE_DIR", "/from/env")
	configPath := writeConfig(t, `
cache:
  dir: /from/file
`)
	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Cache.Dir != "/from/file" {
		t.Errorf("expected file value /from/file, got %s", cfg.Cache.Dir)
	}
}

func TestSubgraphsFor(t *testing.T) {
	cfg := Default()
	cfg.Indexer.Subgraphs = []string{"https://default.example.com"}
	cfg.Networks = map[string]IndexerConfig{
		"flare": {Subgraphs: []string{"https://flare.example.com"}},
		"base":  {Subgraphs: []string{"https://base.example.com"}, Timeout: "2s"},
	}

	selected, err := cfg.SubgraphsFor("")
	if err != nil || selected.Subgraphs[0] != "https://default.example.com" {
		t.Errorf("default network = %+v, %v", selected, err)
	}
	selected, err = cfg.SubgraphsFor("flare")
	if err != nil || selected.Subgraphs[0] != "https://flare.example.com" || selected.Timeout != "30s" {
		t.Errorf("flare = %+v, %v; want its subgraph with the default timeout", selected, err)
	}
	selected, err = cfg.SubgraphsFor("base")
	if err != nil || selected.Timeout != "2s" {
		t.Errorf("base = %+v, %v; want its own timeout", selected, err)
	}
	if _, err := cfg.SubgraphsFor("mainnet"); err == nil || !strings.Contains(err.Error(), "base flare") {
		t.Errorf("unknown network error = %v, want the configured names listed", err)
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("RAINMETA_TEST_UNSET", "")
	tests := []struct {
		input    string
		vars     map[string]string
		expected string
	}{
		{
			input:    "${HOME}/.cache",
			vars:     map[string]string{"HOME": "/home/user"},
			expected: "/home/user/.cache",
		},
		{
			input:    "${RAINMETA_TEST_UNSET:-/default}",
			vars:     map[string]string{},
			expected: "/default",
		},
		{
			input:    "${A}/${B}",
			vars:     map[string]string{"A": "first", "B": "second"},
			expected: "first/second",
		},
		{
			input:    "no variables here",
			vars:     map[string]string{},
			expected: "no variables here",
		},
	}

	for _, tt := range tests {
		result := expandVars(tt.input, tt.vars)
		if result != tt.expected {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(*Config)
		wantText string
	}{
		{
			name:   "valid default config",
			modify: func(c *Config) {},
		},
		{
			name:     "bad subgraph scheme",
			modify:   func(c *Config) { c.Indexer.Subgraphs = []string{"ftp://example.com"} },
			wantText: "indexer.subgraphs[0]",
		},
		{
			name:     "bad timeout",
			modify:   func(c *Config) { c.Indexer.Timeout = "soon" },
			wantText: "indexer.timeout",
		},
		{
			name: "empty network",
			modify: func(c *Config) {
				c.Networks = map[string]IndexerConfig{"flare": {}}
			},
			wantText: "networks.flare.subgraphs is empty",
		},
		{
			name:     "cache without dir",
			modify:   func(c *Config) { c.Cache.Dir = "" },
			wantText: "cache.dir",
		},
		{
			name: "disabled cache without dir",
			modify: func(c *Config) {
				c.Cache.Enabled = false
				c.Cache.Dir = ""
			},
		},
		{
			name:     "negative workers",
			modify:   func(c *Config) { c.Decode.Workers = -1 },
			wantText: "decode.workers",
		},
		{
			name:     "bad log level",
			modify:   func(c *Config) { c.Log.Level = "loud" },
			wantText: "log.level",
		},
		{
			name:     "bad log format",
			modify:   func(c *Config) { c.Log.Format = "xml" },
			wantText: "log.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantText == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantText)
			}
		})
	}
}

func TestValidateReportsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"
	cfg.Decode.Workers = -2

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	if lines := strings.Count(err.Error(), "\n") + 1; lines != 3 {
		t.Errorf("expected 3 joined errors, got %d: %v", lines, err)
	}
}

func TestEnsureCacheDir(t *testing.T) {
	cfg := Default()
	cfg.Cache.Dir = filepath.Join(t.TempDir(), "rainmeta", "metas")

	if err := cfg.EnsureCacheDir(); err != nil {
		t.Fatalf("EnsureCacheDir failed: %v", err)
	}
	info, err := os.Stat(cfg.Cache.Dir)
	if err != nil || !info.IsDir() {
		t.Errorf("cache dir not created: %v", err)
	}
}
