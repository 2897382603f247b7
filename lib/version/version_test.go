// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	original := GitDirty
	t.Cleanup(func() { GitDirty = original })

	GitDirty = "false"
	clean := Info()
	if !strings.HasPrefix(clean, Version+" (") || strings.Contains(clean, "-dirty") {
		t.Errorf("Info() = %q", clean)
	}

	GitDirty = "true"
	if dirty := Info(); !strings.Contains(dirty, GitCommit+"-dirty") {
		t.Errorf("Info() = %q, want a -dirty commit", dirty)
	}
}

func TestFull(t *testing.T) {
	full := Full()
	for _, want := range []string{"Go: ", "Platform: "} {
		if !strings.Contains(full, want) {
			t.Errorf("Full() = %q, missing %q", full, want)
		}
	}
}

func TestFillFromBuildSettings(t *testing.T) {
	commit, dirty, built := GitCommit, GitDirty, BuildTime
	t.Cleanup(func() { GitCommit, GitDirty, BuildTime = commit, dirty, built })

	GitCommit, GitDirty, BuildTime = "unknown", "false", "unknown"
	fillFromBuildSettings([]debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.modified", Value: "true"},
		{Key: "vcs.time", Value: "2026-03-01T12:00:00Z"},
	})
	if GitCommit != "0123456789ab" || GitDirty != "true" || BuildTime != "2026-03-01T12:00:00Z" {
		t.Errorf("filled (%q, %q, %q)", GitCommit, GitDirty, BuildTime)
	}

	// Stamped values win over build info.
	GitCommit = "stamped"
	fillFromBuildSettings([]debug.BuildSetting{{Key: "vcs.revision", Value: "feedface"}})
	if GitCommit != "stamped" {
		t.Errorf("GitCommit = %q, want the stamped value", GitCommit)
	}
}
