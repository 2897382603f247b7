// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry holds the table of known meta kinds and validates
// decoded items against it.
//
// The built-in table ([Default]) is compiled in and read-only after
// package initialization, so concurrent validations share it without
// locking. Each structured kind is bound to a JSON Schema embedded
// from the schemas directory. Schemas are authored as JSONC so they
// can carry comments; the comments are stripped before parsing.
//
// Validation outcomes are soft. An unknown kind, a payload that does
// not parse, or a schema mismatch is reported in [Result.Err] for the
// caller to surface; none of them affects the decoding of other
// items.
package registry
