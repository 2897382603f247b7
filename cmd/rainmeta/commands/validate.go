// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/rainlanguage/rainmeta/cmd/rainmeta/cli"
)

func validateCommand() *cli.Command {
	var params decodeParams
	return &cli.Command{
		Name:    "validate",
		Summary: "Check that every item of a document is valid",
		Description: `Decode a document and check every item against the registry. Prints
one line per failing item and exits 1 if any item failed, 0 otherwise.`,
		Usage: "rainmeta validate [flags] [file]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("validate", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			report, err := decodeInput(ctx, &params, "validate", args)
			if err != nil {
				return err
			}
			failures := countFailures(report.Items)

			if done, err := params.EmitJSON(stdout, report); done {
				if err != nil {
					return err
				}
			} else {
				for _, item := range report.Items {
					if item.Status == statusOK {
						continue
					}
					fmt.Fprintf(stdout, "item %d (%s): %s: %s\n", item.Index, item.Magic, item.Status, item.Error)
				}
				fmt.Fprintf(stdout, "%d items, %d failed\n", len(report.Items), failures)
			}

			if failures > 0 {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}
