// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/rainlanguage/rainmeta/cmd/rainmeta/cli"
	"github.com/rainlanguage/rainmeta/lib/deploy"
	"github.com/rainlanguage/rainmeta/lib/meta"
)

type generateParams struct {
	Output   string `flag:"output,o" desc:"write the deployment JSON to this file instead of stdout"`
	Manifest bool   `flag:"manifest,m" desc:"input is an encode manifest rather than dotrain text"`
}

func generateCommand() *cli.Command {
	var params generateParams
	return &cli.Command{
		Name:    "generate",
		Summary: "Generate emitMeta deployment data",
		Description: `Build the data needed to publish a meta on a MetaBoard: the subject
(content hash of the first item), the framed document, and the
calldata for ` + deploy.EmitMetaSignature + `.

By default the input is dotrain text, wrapped in a single
dotrain-source-v1 item. With --manifest the input is an encode
manifest (see "rainmeta encode --help").`,
		Usage: "rainmeta generate [flags] [file]",
		Examples: []cli.Example{
			{
				Description: "Generate deployment data for a dotrain file",
				Command:     "rainmeta generate -o deploy.json strategy.rain",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("generate", &params)
		},
		Run: func(_ context.Context, args []string) error {
			var (
				deployment deploy.DeploymentData
				err        error
			)
			if params.Manifest {
				var items []meta.Item
				if items, err = readManifest("generate", args); err != nil {
					return err
				}
				deployment, err = deploy.Generate(items)
			} else {
				deployment, err = generateFromDotrain(args)
			}
			if err != nil {
				return err
			}

			if params.Output == "" {
				return cli.WriteJSON(stdout, deployment)
			}
			var buffer bytes.Buffer
			if err := cli.WriteJSON(&buffer, deployment); err != nil {
				return err
			}
			if err := os.WriteFile(params.Output, buffer.Bytes(), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", params.Output, err)
			}
			return nil
		},
	}
}

func generateFromDotrain(args []string) (deploy.DeploymentData, error) {
	data, remaining, err := readInput(args, false)
	if err != nil {
		return deploy.DeploymentData{}, err
	}
	if err := rejectArgs("generate", remaining); err != nil {
		return deploy.DeploymentData{}, err
	}
	return deploy.GenerateDotrain(string(data))
}
