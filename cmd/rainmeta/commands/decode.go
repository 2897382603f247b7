// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/rainlanguage/rainmeta/cmd/rainmeta/cli"
	"github.com/rainlanguage/rainmeta/lib/meta"
	"github.com/rainlanguage/rainmeta/lib/resolver"
)

type decodeParams struct {
	cli.JSONOutput
	configParams
	Hex     bool `flag:"hex" desc:"input is hex encoded (whitespace and 0x prefix allowed)"`
	Payload bool `flag:"payload,p" desc:"include parsed payloads in the report"`
	Workers int  `flag:"workers" desc:"concurrent item decoders (default: decode.workers from config, else GOMAXPROCS)"`
}

// documentReport is the JSON form of a decoded document.
type documentReport struct {
	Hash  string       `json:"hash"`
	Size  int          `json:"size"`
	Items []itemReport `json:"items"`
}

func decodeCommand() *cli.Command {
	var params decodeParams
	return &cli.Command{
		Name:    "decode",
		Summary: "Decode and validate a document",
		Description: `Decode a Rain meta document and print a report for each item: kind,
content type and encoding, sizes, content hash and validation status.

Input is the last argument if it names a file, otherwise stdin. A
document that does not start with the Rain meta magic or is cut short
fails outright. Problems local to one item are reported on that item
and decoding carries on.`,
		Usage: "rainmeta decode [flags] [file]",
		Examples: []cli.Example{
			{
				Description: "Decode a binary document",
				Command:     "rainmeta decode meta.bin",
			},
			{
				Description: "Decode hex from stdin and show payloads as JSON",
				Command:     "cast call ... | rainmeta decode --hex --payload --json",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("decode", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			report, err := decodeInput(ctx, &params, "decode", args)
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(stdout, report); done {
				return err
			}
			return renderReports(stdout, report.Items)
		},
	}
}

// decodeInput reads, decodes and validates the document named by args.
func decodeInput(ctx context.Context, params *decodeParams, command string, args []string) (documentReport, error) {
	cfg, err := params.loadConfig()
	if err != nil {
		return documentReport{}, err
	}
	logger := commandLogger(cfg, command)

	data, args, err := readInput(args, params.Hex)
	if err != nil {
		return documentReport{}, err
	}
	if err := rejectArgs(command, args); err != nil {
		return documentReport{}, err
	}

	workers := params.Workers
	if workers == 0 {
		workers = cfg.Decode.Workers
	}

	results, err := resolver.DecodeParallel(ctx, data, workers)
	if err != nil {
		return documentReport{}, fmt.Errorf("decoding document: %w", err)
	}
	logger.Debug("decoded document", "bytes", len(data), "items", len(results))

	return documentReport{
		Hash:  meta.HashBytes(data).String(),
		Size:  len(data),
		Items: buildReports(results, params.Payload),
	}, nil
}
