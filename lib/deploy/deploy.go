// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/rainlanguage/rainmeta/lib/meta"
	"github.com/rainlanguage/rainmeta/lib/resolver"
)

// EmitMetaSignature is the metaboard function that publishes a meta.
const EmitMetaSignature = "emitMeta(bytes32,bytes)"

// ErrEmptySource is returned for dotrain text that is empty or only
// whitespace.
var ErrEmptySource = errors.New("dotrain source is empty")

// emitMetaSelector is the first four bytes of keccak256 of the
// signature.
var emitMetaSelector = func() [4]byte {
	hash := meta.HashBytes([]byte(EmitMetaSignature))
	return [4]byte(hash[:4])
}()

// DeploymentData is everything needed to publish a meta to a
// metaboard. All fields are 0x-prefixed hex.
type DeploymentData struct {
	// Subject is the content hash of the first item.
	Subject string `json:"subject"`

	// MetaBytes is the framed document.
	MetaBytes string `json:"meta_bytes"`

	// Calldata is the ABI-encoded emitMeta call.
	Calldata string `json:"calldata"`
}

// DotrainSource wraps dotrain text as a dotrain-source-v1 item.
func DotrainSource(text string) meta.Item {
	return meta.Item{
		Payload:     []byte(text),
		Magic:       meta.DotrainSourceV1,
		ContentType: meta.ContentTypeOctetStream,
	}
}

// Generate frames items into a document and builds the emitMeta call
// that publishes it under the first item's content hash. Payloads
// are compressed according to each item's content encoding.
func Generate(items []meta.Item) (DeploymentData, error) {
	if len(items) == 0 {
		return DeploymentData{}, errors.New("no items to deploy")
	}
	subject, err := meta.HashOf(items[0])
	if err != nil {
		return DeploymentData{}, fmt.Errorf("hashing subject item: %w", err)
	}
	document, err := resolver.Encode(items)
	if err != nil {
		return DeploymentData{}, err
	}
	return DeploymentData{
		Subject:   meta.FormatHash(subject),
		MetaBytes: "0x" + hex.EncodeToString(document),
		Calldata:  "0x" + hex.EncodeToString(EmitMetaCalldata(subject, document)),
	}, nil
}

// GenerateDotrain builds deployment data for a single dotrain source.
func GenerateDotrain(text string) (DeploymentData, error) {
	if strings.TrimSpace(text) == "" {
		return DeploymentData{}, ErrEmptySource
	}
	return Generate([]meta.Item{DotrainSource(text)})
}

// EmitMetaCalldata ABI-encodes emitMeta(subject, data): the selector,
// the subject word, the offset of the dynamic bytes argument, its
// length and the data right-padded to a whole number of words.
func EmitMetaCalldata(subject meta.Hash, data []byte) []byte {
	const word = 32
	padded := (len(data) + word - 1) / word * word
	calldata := make([]byte, 4+word*3+padded)

	copy(calldata, emitMetaSelector[:])
	head := calldata[4:]
	copy(head[:word], subject[:])
	binary.BigEndian.PutUint64(head[2*word-8:2*word], 2*word)
	binary.BigEndian.PutUint64(head[3*word-8:3*word], uint64(len(data)))
	copy(head[3*word:], data)
	return calldata
}
