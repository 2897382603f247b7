// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Hash is a 32-byte keccak256 digest. It names items and documents
// on chain (the MetaBoard "subject") and in indexer lookups.
type Hash [32]byte

// HashBytes returns the keccak256 digest of data. Use it for whole
// blobs such as a framed document.
func HashBytes(data []byte) Hash {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(data)
	var hash Hash
	copy(hash[:], hasher.Sum(nil))
	return hash
}

// HashOf returns the content hash of an item: keccak256 over the
// canonical encoding of its identity form. The payload must already
// be decompressed. ContentEncoding is cleared before encoding, so
// the same payload hashes identically whichever codec carried it.
// For items without a content encoding this is exactly the hash of
// EncodeItem(item).
func HashOf(item Item) (Hash, error) {
	identity := item
	identity.ContentEncoding = ContentEncodingNone
	encoded, err := EncodeItem(identity)
	if err != nil {
		return Hash{}, err
	}
	return HashBytes(encoded), nil
}

// IsZero reports whether the hash is all zero bytes.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// String returns the 0x-prefixed hex form.
func (h Hash) String() string {
	return FormatHash(h)
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(FormatHash(h)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// FormatHash returns the 0x-prefixed lowercase hex form of a hash,
// the format used by the subgraph and in CLI output.
func FormatHash(hash Hash) string {
	return "0x" + hex.EncodeToString(hash[:])
}

// ParseHash parses a 64-digit hex string, with or without the 0x
// prefix.
func ParseHash(s string) (Hash, error) {
	var hash Hash
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	decoded, err := hex.DecodeString(digits)
	if err != nil {
		return hash, fmt.Errorf("parsing meta hash: %w", err)
	}
	if len(decoded) != len(hash) {
		return hash, fmt.Errorf("meta hash is %d bytes, want %d", len(decoded), len(hash))
	}
	copy(hash[:], decoded)
	return hash, nil
}
