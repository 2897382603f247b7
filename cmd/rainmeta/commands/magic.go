// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/rainlanguage/rainmeta/cmd/rainmeta/cli"
	"github.com/rainlanguage/rainmeta/lib/registry"
)

type magicListParams struct {
	cli.JSONOutput
}

// magicEntry is the JSON form of one registry entry.
type magicEntry struct {
	Name        string `json:"name"`
	Magic       string `json:"magic"`
	ContentType string `json:"content_type"`
	Schema      string `json:"schema,omitempty"`
	Deprecated  bool   `json:"deprecated,omitempty"`
	Description string `json:"description"`
}

func magicCommand() *cli.Command {
	return &cli.Command{
		Name:    "magic",
		Summary: "Inspect known meta kinds",
		Subcommands: []*cli.Command{
			magicListCommand(),
		},
	}
}

func magicListCommand() *cli.Command {
	var params magicListParams
	return &cli.Command{
		Name:    "ls",
		Summary: "List the known magic numbers",
		Description: `List every meta kind in the built-in registry with its magic number,
default content type and bound schema.`,
		Usage: "rainmeta magic ls [--json]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("ls", &params)
		},
		Run: func(_ context.Context, args []string) error {
			if err := rejectArgs("magic ls", args); err != nil {
				return err
			}
			return listMagics(&params)
		},
	}
}

func listMagics(params *magicListParams) error {
	entries := registry.Default().Entries()
	listing := make([]magicEntry, 0, len(entries))
	for _, entry := range entries {
		listing = append(listing, magicEntry{
			Name:        entry.Name,
			Magic:       entry.Magic.Hex(),
			ContentType: entry.ContentType.String(),
			Schema:      entry.SchemaName,
			Deprecated:  entry.Deprecated,
			Description: entry.Description,
		})
	}

	if done, err := params.EmitJSON(stdout, listing); done {
		return err
	}

	writer := tabwriter.NewWriter(stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintln(writer, "NAME\tMAGIC\tCONTENT TYPE\tSCHEMA")
	for _, entry := range listing {
		name := entry.Name
		if entry.Deprecated {
			name += " (deprecated)"
		}
		schema := entry.Schema
		if schema == "" {
			schema = "-"
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", name, entry.Magic, entry.ContentType, schema)
	}
	return writer.Flush()
}
