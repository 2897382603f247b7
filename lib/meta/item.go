// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"bytes"
	"fmt"
)

// Item is one decoded unit of a Rain meta document.
//
// Payload and Magic are mandatory. The zero values of ContentType,
// ContentEncoding and ContentLanguage mean the field is absent from
// the encoding. An absent ContentEncoding is treated as identity.
type Item struct {
	Payload         []byte
	Magic           Magic
	ContentType     ContentType
	ContentEncoding ContentEncoding
	ContentLanguage ContentLanguage
}

// Equal reports whether two items carry the same field values.
func (i Item) Equal(other Item) bool {
	return i.Magic == other.Magic &&
		i.ContentType == other.ContentType &&
		i.ContentEncoding == other.ContentEncoding &&
		i.ContentLanguage == other.ContentLanguage &&
		bytes.Equal(i.Payload, other.Payload)
}

// ContentType is the logical media type of a payload.
type ContentType uint8

const (
	ContentTypeNone ContentType = iota
	ContentTypeJSON
	ContentTypeCBOR
	ContentTypeOctetStream
	ContentTypeText
)

var contentTypeNames = [...]string{
	ContentTypeNone:        "",
	ContentTypeJSON:        "application/json",
	ContentTypeCBOR:        "application/cbor",
	ContentTypeOctetStream: "application/octet-stream",
	ContentTypeText:        "text/plain",
}

// String returns the media type as it appears on the wire, or the
// empty string for ContentTypeNone.
func (c ContentType) String() string {
	if int(c) < len(contentTypeNames) {
		return contentTypeNames[c]
	}
	return fmt.Sprintf("ContentType(%d)", uint8(c))
}

// Structured reports whether payloads of this type are parsed and
// checked against a schema.
func (c ContentType) Structured() bool {
	return c == ContentTypeJSON || c == ContentTypeCBOR
}

// ParseContentType maps a wire media type to a ContentType. Unknown
// values fail with ErrUnknownEnumValue.
func ParseContentType(s string) (ContentType, error) {
	for i, name := range contentTypeNames {
		if i != 0 && name == s {
			return ContentType(i), nil
		}
	}
	return ContentTypeNone, fmt.Errorf("%w: content-type %q", ErrUnknownEnumValue, s)
}

// ContentEncoding selects the compression codec applied to a payload.
type ContentEncoding uint8

const (
	ContentEncodingNone ContentEncoding = iota
	ContentEncodingIdentity
	ContentEncodingDeflate
	ContentEncodingGzip
	ContentEncodingZstd
	ContentEncodingLZ4
)

var contentEncodingNames = [...]string{
	ContentEncodingNone:     "",
	ContentEncodingIdentity: "identity",
	ContentEncodingDeflate:  "deflate",
	ContentEncodingGzip:     "gzip",
	ContentEncodingZstd:     "zstd",
	ContentEncodingLZ4:      "lz4",
}

// String returns the encoding name as it appears on the wire, or the
// empty string for ContentEncodingNone.
func (c ContentEncoding) String() string {
	if int(c) < len(contentEncodingNames) {
		return contentEncodingNames[c]
	}
	return fmt.Sprintf("ContentEncoding(%d)", uint8(c))
}

// IsIdentity reports whether the payload is stored uncompressed.
func (c ContentEncoding) IsIdentity() bool {
	return c == ContentEncodingNone || c == ContentEncodingIdentity
}

// ParseContentEncoding maps a wire encoding name to a
// ContentEncoding. Unknown values fail with ErrUnknownEnumValue.
func ParseContentEncoding(s string) (ContentEncoding, error) {
	for i, name := range contentEncodingNames {
		if i != 0 && name == s {
			return ContentEncoding(i), nil
		}
	}
	return ContentEncodingNone, fmt.Errorf("%w: content-encoding %q", ErrUnknownEnumValue, s)
}

// ContentLanguage is a free-form language tag such as "en". It has
// no effect on decoding.
type ContentLanguage string
