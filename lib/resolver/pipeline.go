// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/rainlanguage/rainmeta/lib/compression"
	"github.com/rainlanguage/rainmeta/lib/meta"
	"github.com/rainlanguage/rainmeta/lib/registry"
)

// Decoded is the result for one item of a document.
type Decoded struct {
	// Index is the item's position in the document.
	Index int

	// Offset is the item's byte offset, counting the magic prefix.
	Offset int

	// Item carries the decompressed payload. It is only meaningful
	// when Err is nil.
	Item meta.Item

	// Wire is the item as it was carried, payload still compressed.
	Wire meta.Item

	// Encoded is the item's CBOR bytes as they appear in the
	// document.
	Encoded []byte

	// Hash is the item's content hash, computed over the
	// decompressed payload.
	Hash meta.Hash

	// Validation is the registry verdict. It is only populated when
	// Err is nil.
	Validation registry.Result

	// Err is an item-local decoding failure (*meta.ItemError wrapping
	// meta.ErrMalformedItem, meta.ErrUnknownEnumValue or
	// meta.ErrCorruptPayload).
	Err error
}

// OK reports whether the item decoded and validated cleanly.
func (d Decoded) OK() bool {
	return d.Err == nil && d.Validation.OK()
}

// Pipeline runs the encode and decode paths against a registry.
type Pipeline struct {
	registry *registry.Registry
}

// NewPipeline returns a pipeline validating against reg, or against
// the built-in registry when reg is nil.
func NewPipeline(reg *registry.Registry) *Pipeline {
	if reg == nil {
		reg = registry.Default()
	}
	return &Pipeline{registry: reg}
}

// defaultPipeline backs the package-level functions.
var defaultPipeline = NewPipeline(nil)

// Encode frames items into a document using the built-in registry.
func Encode(items []meta.Item) ([]byte, error) {
	return defaultPipeline.Encode(items)
}

// Decode decodes a document using the built-in registry.
func Decode(data []byte) ([]Decoded, error) {
	return defaultPipeline.Decode(data)
}

// DecodeParallel decodes a document using the built-in registry,
// decompressing and validating items concurrently.
func DecodeParallel(ctx context.Context, data []byte, workers int) ([]Decoded, error) {
	return defaultPipeline.DecodeParallel(ctx, data, workers)
}

// Encode compresses each item's payload with its content encoding,
// encodes the items and frames them into a document. It stops at the
// first item that fails.
func (p *Pipeline) Encode(items []meta.Item) ([]byte, error) {
	wire := make([]meta.Item, len(items))
	for index, item := range items {
		compressed, err := compression.Compress(item.ContentEncoding, item.Payload)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", index, err)
		}
		wire[index] = item
		wire[index].Payload = compressed
	}
	return meta.Frame(wire)
}

// Decode splits a document into items, decompresses each payload,
// computes its content hash and validates it.
//
// A prefix mismatch or truncation aborts the whole decode and returns
// only the error. Any other failure is recorded on the item it
// concerns and decoding carries on with the next one.
func (p *Pipeline) Decode(data []byte) ([]Decoded, error) {
	results, err := split(data)
	if err != nil {
		return nil, err
	}
	for i := range results {
		p.finish(&results[i])
	}
	return results, nil
}

// DecodeParallel is Decode with item decompression and validation
// spread over up to workers goroutines (GOMAXPROCS when workers is
// not positive). Results keep document order. Framing is still
// sequential: item boundaries are only known after the previous item
// has been read.
func (p *Pipeline) DecodeParallel(ctx context.Context, data []byte, workers int) ([]Decoded, error) {
	results, err := split(data)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	group, groupContext := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i := range results {
		group.Go(func() error {
			if err := groupContext.Err(); err != nil {
				return err
			}
			p.finish(&results[i])
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// split walks the document and records each item's wire form.
func split(data []byte) ([]Decoded, error) {
	cursor, err := meta.NewCursor(data)
	if err != nil {
		return nil, err
	}

	results := []Decoded{}
	for {
		offset := cursor.Offset()
		index := cursor.Index()
		wire, encoded, err := cursor.Next()
		if errors.Is(err, io.EOF) {
			return results, nil
		}
		if meta.IsFatal(err) {
			return nil, err
		}
		results = append(results, Decoded{
			Index:   index,
			Offset:  offset,
			Wire:    wire,
			Encoded: encoded,
			Err:     err,
		})
	}
}

// finish decompresses, hashes and validates one split item.
func (p *Pipeline) finish(result *Decoded) {
	if result.Err != nil {
		return
	}

	payload, err := compression.Decompress(result.Wire.ContentEncoding, result.Wire.Payload)
	if err != nil {
		result.Err = &meta.ItemError{Index: result.Index, Offset: result.Offset, Err: err}
		return
	}
	result.Item = result.Wire
	result.Item.Payload = payload

	hash, err := meta.HashOf(result.Item)
	if err != nil {
		result.Err = &meta.ItemError{Index: result.Index, Offset: result.Offset, Err: err}
		return
	}
	result.Hash = hash
	result.Validation = p.registry.Validate(result.Item)
}
