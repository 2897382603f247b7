// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the shared CBOR encoding configuration.
//
// Rain meta items, cache records and CLI tooling all go through the
// same modes so that every package encodes identically. The encoder
// uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map keys,
// smallest integer encoding, no indefinite-length items. The same
// logical item always produces identical bytes, which is what makes
// content hashes over encoded items stable.
//
// For single values:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For CBOR sequences, where items are concatenated without a
// container:
//
//	item, rest, err := codec.SplitFirst(data)
//
// Meta item maps use integer keys, declared with the keyasint tag
// option:
//
//	Payload []byte `cbor:"0,keyasint"`
package codec
