// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/rainlanguage/rainmeta/cmd/rainmeta/cli"
	"github.com/rainlanguage/rainmeta/lib/codec"
	"github.com/rainlanguage/rainmeta/lib/meta"
)

type diagParams struct {
	Hex bool `flag:"hex" desc:"input is hex encoded"`
}

func diagCommand() *cli.Command {
	var params diagParams
	return &cli.Command{
		Name:    "diag",
		Summary: "Print a document in CBOR diagnostic notation",
		Description: `Print each item of a document in RFC 8949 diagnostic notation, one
item per line, without decompressing or validating anything. Useful for
looking at documents that "decode" rejects.

Input without the Rain meta magic is treated as a bare CBOR sequence.`,
		Usage: "rainmeta diag [--hex] [file]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("diag", &params)
		},
		Run: func(_ context.Context, args []string) error {
			data, args, err := readInput(args, params.Hex)
			if err != nil {
				return err
			}
			if err := rejectArgs("diag", args); err != nil {
				return err
			}
			return diagnose(data)
		},
	}
}

// diagnose writes one diagnostic line per CBOR item. A trailing
// fragment that does not parse stops the walk with an error naming
// its offset.
func diagnose(data []byte) error {
	offset := 0
	if sequence, err := meta.CheckDocument(data); err == nil {
		fmt.Fprintf(stdout, "# %s\n", meta.DocumentMagic.Hex())
		offset = meta.MagicSize
		data = sequence
	}

	for index := 0; len(data) > 0; index++ {
		notation, rest, err := codec.DiagnoseFirst(data)
		if err != nil {
			return fmt.Errorf("item %d at byte %d: %w", index, offset, err)
		}
		fmt.Fprintln(stdout, notation)
		offset += len(data) - len(rest)
		data = rest
	}
	return nil
}
