// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
)

// MagicSize is the length of the document prefix in bytes.
const MagicSize = 8

// documentPrefix is DocumentMagic in its big-endian wire form.
var documentPrefix = DocumentMagic.Bytes()

// IsRainMetaDocument reports whether data starts with DocumentMagic.
// This is the same comparison the on-chain contracts perform before
// accepting meta.
func IsRainMetaDocument(data []byte) bool {
	return len(data) >= MagicSize && bytes.Equal(data[:MagicSize], documentPrefix[:])
}

// CheckDocument verifies the document prefix and returns the item
// sequence that follows it. On mismatch the error is a
// *NotRainMetaError carrying data.
func CheckDocument(data []byte) ([]byte, error) {
	if !IsRainMetaDocument(data) {
		return nil, &NotRainMetaError{Data: data}
	}
	return data[MagicSize:], nil
}

// Frame encodes items into a document: the magic prefix followed by
// each item's canonical encoding. A nil or empty slice yields a
// prefix-only document.
func Frame(items []Item) ([]byte, error) {
	document := append(make([]byte, 0, MagicSize+64*len(items)), documentPrefix[:]...)
	for index, item := range items {
		encoded, err := EncodeItem(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", index, err)
		}
		document = append(document, encoded...)
	}
	return document, nil
}

// Unframe decodes every item of a document. Unlike [Items] it stops
// at the first error of any kind.
func Unframe(data []byte) ([]Item, error) {
	var items []Item
	for item, err := range Items(data) {
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

// Items returns a lazy iterator over the items of a document.
//
// Item-local failures are yielded as *ItemError and iteration goes
// on with the next item. A fatal error (bad prefix or truncation) is
// yielded once and ends the sequence. Each call to the returned
// function starts again from the first item, and breaking out of the
// loop early leaves later items undecoded.
func Items(data []byte) iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		cursor, err := NewCursor(data)
		if err != nil {
			yield(Item{}, err)
			return
		}
		for {
			item, _, err := cursor.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(item, err) || IsFatal(err) {
				return
			}
		}
	}
}

// Cursor steps through the items of a document one at a time.
type Cursor struct {
	data   []byte
	offset int
	index  int
	err    error
}

// NewCursor checks the document prefix and positions a cursor on
// the first item.
func NewCursor(data []byte) (*Cursor, error) {
	if _, err := CheckDocument(data); err != nil {
		return nil, err
	}
	return &Cursor{data: data, offset: MagicSize}, nil
}

// Next decodes the item at the cursor and advances past it. It also
// returns the item's raw bytes as they appear in the document.
//
// io.EOF is returned when the cursor sits exactly at the end of the
// data. An item-local failure is returned as *ItemError and the
// cursor still advances. A fatal error is sticky: every later call
// returns it again.
func (c *Cursor) Next() (Item, []byte, error) {
	if c.err != nil {
		return Item{}, nil, c.err
	}
	if c.offset == len(c.data) {
		return Item{}, nil, io.EOF
	}

	start := c.offset
	item, consumed, err := DecodeItem(c.data[start:])
	if consumed == 0 {
		c.err = fmt.Errorf("item %d at byte %d: %w", c.index, start, err)
		return Item{}, nil, c.err
	}

	raw := c.data[start : start+consumed]
	index := c.index
	c.offset += consumed
	c.index++
	if err != nil {
		return Item{}, raw, &ItemError{Index: index, Offset: start, Err: err}
	}
	return item, raw, nil
}

// Offset returns the byte offset of the next item, counting the
// magic prefix.
func (c *Cursor) Offset() int {
	return c.offset
}

// Index returns the position of the next item.
func (c *Cursor) Index() int {
	return c.index
}
