// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/rainlanguage/rainmeta/lib/codec"
)

// Item map keys.
const (
	keyPayload         = 0
	keyMagic           = 1
	keyContentType     = 2
	keyContentEncoding = 3
	keyContentLanguage = 4
)

// CBOR major types checked before a field is decoded.
const (
	majorUnsigned   = 0
	majorByteString = 2
	majorTextString = 3
)

// wireItem is the encoding shape of an item. Optional fields are
// omitted when empty so that absent values never appear as null.
type wireItem struct {
	Payload         []byte `cbor:"0,keyasint"`
	Magic           uint64 `cbor:"1,keyasint"`
	ContentType     string `cbor:"2,keyasint,omitempty"`
	ContentEncoding string `cbor:"3,keyasint,omitempty"`
	ContentLanguage string `cbor:"4,keyasint,omitempty"`
}

// EncodeItem returns the canonical CBOR encoding of item. Keys are
// always emitted in ascending order regardless of how the item was
// built, which keeps content hashes stable across implementations.
func EncodeItem(item Item) ([]byte, error) {
	if item.Magic == 0 {
		return nil, fmt.Errorf("%w: magic number is zero", ErrMalformedItem)
	}
	if int(item.ContentType) >= len(contentTypeNames) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEnumValue, item.ContentType)
	}
	if int(item.ContentEncoding) >= len(contentEncodingNames) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEnumValue, item.ContentEncoding)
	}
	if !utf8.ValidString(string(item.ContentLanguage)) {
		return nil, fmt.Errorf("%w: content-language is not valid UTF-8", ErrMalformedItem)
	}

	payload := item.Payload
	if payload == nil {
		payload = []byte{}
	}
	data, err := codec.Marshal(wireItem{
		Payload:         payload,
		Magic:           uint64(item.Magic),
		ContentType:     item.ContentType.String(),
		ContentEncoding: item.ContentEncoding.String(),
		ContentLanguage: string(item.ContentLanguage),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding meta item: %w", err)
	}
	return data, nil
}

// DecodeItem decodes the item at the front of data and returns it
// with the number of bytes it occupied. Bytes after the item are left
// alone; they usually belong to the next item of a document.
//
// Incomplete or ill-formed CBOR fails with ErrTruncatedDocument since
// the item's extent cannot be determined. A well-formed CBOR value
// that is not a valid item map fails with ErrMalformedItem or
// ErrUnknownEnumValue, and consumed still reports its extent.
func DecodeItem(data []byte) (Item, int, error) {
	raw, rest, err := codec.SplitFirst(data)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Item{}, 0, fmt.Errorf("%w: no item data", ErrTruncatedDocument)
		}
		return Item{}, 0, fmt.Errorf("%w: %w", ErrTruncatedDocument, err)
	}
	consumed := len(data) - len(rest)

	item, err := decodeItemMap(raw)
	return item, consumed, err
}

// decodeItemMap interprets one complete CBOR value as an item map.
func decodeItemMap(raw []byte) (Item, error) {
	var fields map[uint64]codec.RawMessage
	if err := codec.UnmarshalStrict(raw, &fields); err != nil {
		return Item{}, fmt.Errorf("%w: %w", ErrMalformedItem, err)
	}

	var item Item
	for key := range fields {
		if key > keyContentLanguage {
			return Item{}, fmt.Errorf("%w: unexpected key %d", ErrMalformedItem, key)
		}
	}

	payloadRaw, ok := fields[keyPayload]
	if !ok {
		return Item{}, fmt.Errorf("%w: missing payload", ErrMalformedItem)
	}
	if majorType(payloadRaw) != majorByteString {
		return Item{}, fmt.Errorf("%w: payload is not a byte string", ErrMalformedItem)
	}
	if err := codec.Unmarshal(payloadRaw, &item.Payload); err != nil {
		return Item{}, fmt.Errorf("%w: payload: %w", ErrMalformedItem, err)
	}
	if item.Payload == nil {
		item.Payload = []byte{}
	}

	magicRaw, ok := fields[keyMagic]
	if !ok {
		return Item{}, fmt.Errorf("%w: missing magic number", ErrMalformedItem)
	}
	if majorType(magicRaw) != majorUnsigned {
		return Item{}, fmt.Errorf("%w: magic number is not an unsigned integer", ErrMalformedItem)
	}
	var magic uint64
	if err := codec.Unmarshal(magicRaw, &magic); err != nil {
		return Item{}, fmt.Errorf("%w: magic number: %w", ErrMalformedItem, err)
	}
	item.Magic = Magic(magic)

	if value, ok := fields[keyContentType]; ok {
		text, err := decodeText(value, "content-type")
		if err != nil {
			return Item{}, err
		}
		if item.ContentType, err = ParseContentType(text); err != nil {
			return Item{}, err
		}
	}
	if value, ok := fields[keyContentEncoding]; ok {
		text, err := decodeText(value, "content-encoding")
		if err != nil {
			return Item{}, err
		}
		if item.ContentEncoding, err = ParseContentEncoding(text); err != nil {
			return Item{}, err
		}
	}
	if value, ok := fields[keyContentLanguage]; ok {
		text, err := decodeText(value, "content-language")
		if err != nil {
			return Item{}, err
		}
		item.ContentLanguage = ContentLanguage(text)
	}

	return item, nil
}

// decodeText decodes a text string field. Any other CBOR type is a
// malformed item.
func decodeText(raw codec.RawMessage, field string) (string, error) {
	if majorType(raw) != majorTextString {
		return "", fmt.Errorf("%w: %s is not a text string", ErrMalformedItem, field)
	}
	var text string
	if err := codec.Unmarshal(raw, &text); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrMalformedItem, field, err)
	}
	return text, nil
}

// majorType returns the CBOR major type of an encoded value.
func majorType(raw []byte) byte {
	if len(raw) == 0 {
		return 0xff
	}
	return raw[0] >> 5
}
