// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// Fatal framing errors. Decoding stops at the first one.
var (
	ErrNotRainMetaDocument = errors.New("not a rain meta document")
	ErrTruncatedDocument   = errors.New("truncated rain meta document")
)

// Item-local errors. The item is reported as failed and decoding of
// the remaining items continues.
var (
	ErrMalformedItem    = errors.New("malformed meta item")
	ErrUnknownEnumValue = errors.New("unknown enum value")
	ErrCorruptPayload   = errors.New("corrupt payload")
)

// Soft validation outcomes, reported alongside a decoded item.
var (
	ErrUnknownMetaKind = errors.New("unknown meta kind")
	ErrSchemaViolation = errors.New("schema violation")
)

// Resolution errors.
var (
	ErrIndexerUnavailable = errors.New("indexer unavailable")
	ErrNotFound           = errors.New("meta not found")
	ErrHashMismatch       = errors.New("content hash mismatch")
)

// IsFatal reports whether err means the byte boundaries of a
// document cannot be trusted any further.
func IsFatal(err error) bool {
	return errors.Is(err, ErrNotRainMetaDocument) || errors.Is(err, ErrTruncatedDocument)
}

// NotRainMetaError is returned when bytes do not start with
// DocumentMagic. It carries the rejected bytes, like the revert the
// on-chain check raises.
type NotRainMetaError struct {
	Data []byte
}

func (e *NotRainMetaError) Error() string {
	const preview = 16
	data := e.Data
	suffix := ""
	if len(data) > preview {
		data = data[:preview]
		suffix = "..."
	}
	return fmt.Sprintf("%s: 0x%s%s", ErrNotRainMetaDocument, hex.EncodeToString(data), suffix)
}

// Is makes errors.Is(err, ErrNotRainMetaDocument) match.
func (e *NotRainMetaError) Is(target error) bool {
	return target == ErrNotRainMetaDocument
}

// ItemError attributes an item-local error to the item's position in
// a document.
type ItemError struct {
	// Index is the zero-based position of the item.
	Index int
	// Offset is the byte offset of the item within the document,
	// counting the magic prefix.
	Offset int
	Err    error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d at byte %d: %v", e.Index, e.Offset, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
