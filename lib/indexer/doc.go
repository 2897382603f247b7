// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

// Package indexer fetches emitted metas from metaboard subgraphs.
//
// A metaboard contract emits each meta with a subject; the subgraph
// indexes those events and serves them over GraphQL keyed by meta
// hash or subject. [Client] queries one subgraph and [MultiClient]
// races several, returning the first answer. Both satisfy
// resolver.Indexer.
//
// The subgraph does not check that a meta matches its hash. Callers
// verify the returned bytes before trusting them.
package indexer
