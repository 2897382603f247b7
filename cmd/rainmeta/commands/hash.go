// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/rainlanguage/rainmeta/cmd/rainmeta/cli"
	"github.com/rainlanguage/rainmeta/lib/compression"
	"github.com/rainlanguage/rainmeta/lib/meta"
	"github.com/rainlanguage/rainmeta/lib/resolver"
)

type hashParams struct {
	cli.JSONOutput
	Hex bool `flag:"hex" desc:"input is hex encoded"`
}

// hashReport is the JSON form of hash output. Document is empty when
// the input was a single item.
type hashReport struct {
	Document string     `json:"document,omitempty"`
	Items    []itemHash `json:"items"`
}

type itemHash struct {
	Index int    `json:"index"`
	Magic string `json:"magic"`
	Hash  string `json:"hash,omitempty"`
	Error string `json:"error,omitempty"`
}

func hashCommand() *cli.Command {
	var params hashParams
	return &cli.Command{
		Name:    "hash",
		Summary: "Print content hashes of a document or item",
		Description: `Print the keccak256 hash of a document and the content hash of each of
its items. A content hash covers the item's canonical encoding with
the payload decompressed, so it does not depend on the codec used.

The input may also be a single encoded item, in which case only its
content hash is printed.`,
		Usage: "rainmeta hash [--hex] [file]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("hash", &params)
		},
		Run: func(_ context.Context, args []string) error {
			data, args, err := readInput(args, params.Hex)
			if err != nil {
				return err
			}
			if err := rejectArgs("hash", args); err != nil {
				return err
			}
			report, err := hashInput(data)
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(stdout, report); done {
				return err
			}
			writer := tabwriter.NewWriter(stdout, 2, 0, 3, ' ', 0)
			if report.Document != "" {
				fmt.Fprintf(writer, "document\t\t%s\n", report.Document)
			}
			for _, item := range report.Items {
				value := item.Hash
				if item.Error != "" {
					value = "error: " + item.Error
				}
				fmt.Fprintf(writer, "item %d\t%s\t%s\n", item.Index, item.Magic, value)
			}
			return writer.Flush()
		},
	}
}

// hashInput hashes a document, or a single item when data does not
// carry the document prefix.
func hashInput(data []byte) (hashReport, error) {
	if !meta.IsRainMetaDocument(data) {
		wire, consumed, err := meta.DecodeItem(data)
		if err != nil {
			return hashReport{}, fmt.Errorf("input is neither a document nor an item: %w", err)
		}
		if consumed != len(data) {
			return hashReport{}, fmt.Errorf("input is neither a document nor an item: %d trailing bytes", len(data)-consumed)
		}
		hash, err := identityHash(wire)
		if err != nil {
			return hashReport{}, err
		}
		return hashReport{Items: []itemHash{{Magic: wire.Magic.String(), Hash: hash.String()}}}, nil
	}

	results, err := resolver.Decode(data)
	if err != nil {
		return hashReport{}, fmt.Errorf("decoding document: %w", err)
	}
	report := hashReport{Document: meta.HashBytes(data).String()}
	for _, result := range results {
		entry := itemHash{Index: result.Index, Magic: result.Wire.Magic.String()}
		if result.Err != nil {
			entry.Error = result.Err.Error()
		} else {
			entry.Hash = result.Hash.String()
		}
		report.Items = append(report.Items, entry)
	}
	return report, nil
}

func identityHash(wire meta.Item) (meta.Hash, error) {
	payload, err := compression.Decompress(wire.ContentEncoding, wire.Payload)
	if err != nil {
		return meta.Hash{}, err
	}
	wire.Payload = payload
	return meta.HashOf(wire)
}
