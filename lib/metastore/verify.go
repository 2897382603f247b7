// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package metastore

import (
	"fmt"

	"github.com/rainlanguage/rainmeta/lib/compression"
	"github.com/rainlanguage/rainmeta/lib/meta"
)

// Verify checks that data is content named by hash. It accepts data
// whose keccak256 is hash, a document containing an item whose
// content hash is hash, and a single encoded item whose content hash
// is hash. Anything else fails with meta.ErrHashMismatch.
func Verify(hash meta.Hash, data []byte) error {
	if meta.HashBytes(data) == hash {
		return nil
	}

	if meta.IsRainMetaDocument(data) {
		for item, err := range meta.Items(data) {
			if err != nil {
				if meta.IsFatal(err) {
					break
				}
				continue
			}
			if itemHash(item) == hash {
				return nil
			}
		}
	} else if item, consumed, err := meta.DecodeItem(data); err == nil && consumed == len(data) {
		if itemHash(item) == hash {
			return nil
		}
	}

	return fmt.Errorf("%w: %d bytes do not match %s", meta.ErrHashMismatch, len(data), hash)
}

// itemHash returns the content hash of a wire item, or the zero hash
// when its payload does not decompress.
func itemHash(wire meta.Item) meta.Hash {
	identity, err := identityItem(wire)
	if err != nil {
		return meta.Hash{}
	}
	hash, err := meta.HashOf(identity)
	if err != nil {
		return meta.Hash{}
	}
	return hash
}

// identityItem decompresses a wire item's payload and clears its
// content encoding.
func identityItem(wire meta.Item) (meta.Item, error) {
	payload, err := compression.Decompress(wire.ContentEncoding, wire.Payload)
	if err != nil {
		return meta.Item{}, err
	}
	identity := wire
	identity.Payload = payload
	identity.ContentEncoding = meta.ContentEncodingNone
	return identity, nil
}
