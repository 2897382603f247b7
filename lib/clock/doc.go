// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// The metastore stamps persisted records with the time they were
// stored and the resolver logs how long indexer lookups took. Both
// take a [Clock] so that tests can pin time with [Fake]:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	store, err := metastore.New(metastore.Options{Clock: fake})
//	fake.Advance(time.Minute)
package clock
