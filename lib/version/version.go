// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports what build of rainmeta is running, for the
// "rainmeta version" command.
//
// Release builds stamp the variables with -ldflags:
//
//	go build -ldflags "-X github.com/rainlanguage/rainmeta/lib/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/rainmeta
//
// Builds that were not stamped fall back to the VCS settings the Go
// toolchain embeds, so "go install" from a checkout still reports a
// commit.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Stamped at build time. Unstamped values are filled from the
// embedded build info when it has them.
var (
	// GitCommit is the short revision rainmeta was built from.
	GitCommit = "unknown"

	// GitDirty is "true" when the working tree had local changes.
	GitDirty = "false"

	// BuildTime is the UTC commit or build timestamp.
	BuildTime = "unknown"

	// Version is the release version.
	Version = "0.1.0-dev"
)

// shortRevision is the length GitCommit is cut to when it comes from
// build info.
const shortRevision = 12

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	fillFromBuildSettings(info.Settings)
}

// fillFromBuildSettings copies vcs.* build settings into variables
// that were not stamped with -ldflags.
func fillFromBuildSettings(settings []debug.BuildSetting) {
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			if GitCommit == "unknown" && setting.Value != "" {
				GitCommit = setting.Value[:min(len(setting.Value), shortRevision)]
			}
		case "vcs.modified":
			if setting.Value == "true" {
				GitDirty = "true"
			}
		case "vcs.time":
			if BuildTime == "unknown" && setting.Value != "" {
				BuildTime = setting.Value
			}
		}
	}
}

// Info returns "version (commit[-dirty], time)".
func Info() string {
	dirty := ""
	if GitDirty == "true" {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, GitCommit, dirty, BuildTime)
}

// Full is Info followed by the Go toolchain and target platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
