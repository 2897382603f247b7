// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for rainmeta packages.
//
// The helpers bound every channel wait in a test with a timeout, so a
// broken synchronization point fails the test with a message instead
// of hanging the test binary.
package testutil
