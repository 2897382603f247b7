// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

// Package metastore is a content-addressed cache of rain meta bytes.
//
// Entries are keyed by [meta.Hash] and checked with [Verify] before
// they are accepted: either the keccak256 of the bytes is the key, or
// the bytes are a document (or single item) containing an item whose
// content hash is the key. Documents stored with [Store.PutDocument]
// are also exploded into their items so each can be fetched on its
// own.
//
// The store also tracks dotrain sources by URI, which is how editors
// keep the hash of an open file current as it changes.
//
// With [Options.Dir] set, entries persist as one CBOR record per file
// with a BLAKE3 checksum, and are reloaded by [New].
package metastore
