// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

// Package meta implements the Rain metadata wire format.
//
// A Rain meta document is the 8-byte big-endian [DocumentMagic]
// followed by a CBOR sequence (RFC 8742) of item maps. There are no
// separators, length prefixes or item counts: each CBOR map is
// self-delimiting and the document ends exactly where the last map
// ends.
//
// Each item map uses small integer keys:
//
//	0  payload           byte string, mandatory
//	1  magic             unsigned integer, mandatory
//	2  content-type      text string, optional
//	3  content-encoding  text string, optional
//	4  content-language  text string, optional
//
// [EncodeItem] produces the canonical encoding of an item: keys in
// ascending order, definite lengths, smallest integer forms, and
// absent optional fields left out entirely. [DecodeItem] accepts one
// item from the front of a buffer and reports how many bytes it
// consumed so that [Cursor] can walk a document without any external
// length information.
//
// Content hashes ([Hash]) are keccak256 digests, the same function
// the on-chain MetaBoard uses to derive subjects. [HashOf] hashes the
// canonical identity form of an item, so the hash does not depend on
// which compression codec a publisher picked.
//
// Errors fall into three classes. [ErrNotRainMetaDocument] and
// [ErrTruncatedDocument] are fatal: item boundaries cannot be trusted
// past them. [ErrMalformedItem] and [ErrUnknownEnumValue] are
// item-local: the CBOR boundary of the item is known, so the rest of
// the document still decodes. The remaining sentinels are reported
// by the packages built on top of this one.
package meta
