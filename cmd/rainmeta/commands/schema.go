// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rainlanguage/rainmeta/cmd/rainmeta/cli"
	"github.com/rainlanguage/rainmeta/lib/registry"
)

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:    "schema",
		Summary: "Print the embedded JSON schemas",
		Subcommands: []*cli.Command{
			{
				Name:    "ls",
				Summary: "List the embedded schemas",
				Run: func(_ context.Context, args []string) error {
					if err := rejectArgs("schema ls", args); err != nil {
						return err
					}
					for _, name := range registry.SchemaNames() {
						fmt.Fprintln(stdout, name)
					}
					return nil
				},
			},
			{
				Name:    "show",
				Summary: "Print one schema as JSON",
				Description: `Print an embedded schema as plain JSON. The argument is a schema name
(see "rainmeta schema ls") or the name of a meta kind bound to one.`,
				Usage: "rainmeta schema show <name>",
				Examples: []cli.Example{
					{
						Description: "Show the schema validating authoring-meta-v2 items",
						Command:     "rainmeta schema show authoring-meta-v2",
					},
				},
				Run: func(_ context.Context, args []string) error {
					if len(args) != 1 {
						return fmt.Errorf("schema show takes exactly one schema name")
					}
					return showSchema(args[0])
				},
			},
		},
	}
}

func showSchema(name string) error {
	if entry, ok := registry.Default().LookupName(name); ok && entry.SchemaName != "" {
		name = entry.SchemaName
	}
	source, err := registry.SchemaSource(name)
	if err != nil {
		return err
	}
	var indented bytes.Buffer
	if err := json.Indent(&indented, source, "", "  "); err != nil {
		return fmt.Errorf("formatting schema %s: %w", name, err)
	}
	indented.WriteByte('\n')
	_, err = stdout.Write(indented.Bytes())
	return err
}
