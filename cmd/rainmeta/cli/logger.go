// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates a structured logger for CLI command
// operations, writing to stderr. format is "text", "json" or "auto".
// With "auto", a terminal gets slog.TextHandler and anything else
// (CI, scripts, pipes) gets slog.JSONHandler.
//
// Callers scope the logger with command-specific context via With():
//
//	logger := cli.NewCommandLogger(slog.LevelInfo, "auto").With(
//	    "command", "resolve",
//	    "hash", hash,
//	)
func NewCommandLogger(level slog.Level, format string) *slog.Logger {
	useText := format == "text"
	if format == "" || format == "auto" {
		useText = term.IsTerminal(int(os.Stderr.Fd()))
	}
	return newLogger(os.Stderr, level, useText)
}

func newLogger(w io.Writer, level slog.Level, text bool) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if text {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}
