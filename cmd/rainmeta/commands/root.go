// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the rainmeta CLI command tree.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rainlanguage/rainmeta/cmd/rainmeta/cli"
	"github.com/rainlanguage/rainmeta/lib/version"
)

// stdout is replaced in tests.
var stdout io.Writer = os.Stdout

// Root builds and returns the complete rainmeta command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "rainmeta",
		Description: `rainmeta: Rain meta document tooling.

Encode, decode and validate Rain meta documents, compute their content
hashes, resolve metas by hash from metaboard subgraphs, and generate
emitMeta deployment calldata.`,
		Subcommands: []*cli.Command{
			magicCommand(),
			schemaCommand(),
			encodeCommand(),
			decodeCommand(),
			validateCommand(),
			hashCommand(),
			diagCommand(),
			resolveCommand(),
			generateCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string) error {
					fmt.Fprintf(stdout, "rainmeta %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Decode a hex-encoded document from a file",
				Command:     "rainmeta decode --hex meta.hex",
			},
			{
				Description: "Build a document from a manifest",
				Command:     "rainmeta encode -o meta.bin manifest.jsonc",
			},
			{
				Description: "Resolve a meta by hash through the configured subgraphs",
				Command:     "rainmeta resolve 0x6bdf81f785b54fd65ca6fc5d02b40fa361bc7d5f4f1067fc534b9433ecbc784d",
			},
			{
				Description: "Generate emitMeta calldata for a dotrain file",
				Command:     "rainmeta generate -o deploy.json strategy.rain",
			},
		},
	}
}
