// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rainlanguage/rainmeta/cmd/rainmeta/cli"
	"github.com/rainlanguage/rainmeta/lib/config"
)

// configParams is embedded by commands that read the configuration
// file.
type configParams struct {
	ConfigPath string `flag:"config" desc:"configuration file (default: $RAINMETA_CONFIG, else built-in defaults)"`
}

// loadConfig reads the file named by --config, then the file named by
// RAINMETA_CONFIG, and falls back to the built-in defaults.
func (p configParams) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case p.ConfigPath != "":
		cfg, err = config.LoadFile(p.ConfigPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// commandLogger builds the stderr logger described by cfg.Log.
func commandLogger(cfg *config.Config, command string) *slog.Logger {
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	return cli.NewCommandLogger(level, cfg.Log.Format).With("command", command)
}
