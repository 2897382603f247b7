// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/pflag"

	"github.com/rainlanguage/rainmeta/cmd/rainmeta/cli"
	"github.com/rainlanguage/rainmeta/lib/config"
	"github.com/rainlanguage/rainmeta/lib/indexer"
	"github.com/rainlanguage/rainmeta/lib/meta"
	"github.com/rainlanguage/rainmeta/lib/metastore"
	"github.com/rainlanguage/rainmeta/lib/resolver"
)

type resolveParams struct {
	cli.JSONOutput
	configParams
	Network   string        `flag:"network,n" desc:"named subgraph set from the configuration"`
	Subgraphs []string      `flag:"subgraph" desc:"subgraph URL to query (repeatable; replaces the configured set)"`
	Timeout   time.Duration `flag:"timeout" desc:"lookup timeout (default: from config, else 30s)"`
	NoCache   bool          `flag:"no-cache" desc:"do not read or write the local metastore"`
	Raw       bool          `flag:"raw" desc:"print the resolved bytes as hex instead of a report"`
	Payload   bool          `flag:"payload,p" desc:"include parsed payloads in the report"`
}

func resolveCommand() *cli.Command {
	var params resolveParams
	return &cli.Command{
		Name:    "resolve",
		Summary: "Fetch a meta by hash",
		Description: `Resolve a meta by its hash: the local metastore is checked first, then
every configured subgraph is queried concurrently. Only bytes that
verify against the hash are accepted. A resolved document is cached in
the metastore and decoded.

The hash may name a whole document or one of its items.`,
		Usage: "rainmeta resolve [flags] <hash>",
		Examples: []cli.Example{
			{
				Description: "Resolve through the subgraphs of a named network",
				Command:     "rainmeta resolve --network flare 0x6bdf81f785b54fd65ca6fc5d02b40fa361bc7d5f4f1067fc534b9433ecbc784d",
			},
			{
				Description: "Print the raw bytes from an explicit subgraph",
				Command:     "rainmeta resolve --raw --subgraph https://example.com/subgraphs/metaboard 0x6bdf...784d",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("resolve", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("resolve takes exactly one hash")
			}
			hash, err := meta.ParseHash(args[0])
			if err != nil {
				return err
			}

			cfg, err := params.loadConfig()
			if err != nil {
				return err
			}
			logger := commandLogger(cfg, "resolve").With("hash", hash)

			r, err := params.newResolver(cfg, logger)
			if err != nil {
				return err
			}
			return runResolve(ctx, r, hash, &params)
		},
	}
}

// newResolver wires the metastore and subgraph clients selected by
// cfg and the command flags.
func (p *resolveParams) newResolver(cfg *config.Config, logger *slog.Logger) (*resolver.Resolver, error) {
	subgraphs, err := cfg.SubgraphsFor(p.Network)
	if err != nil {
		return nil, err
	}
	if len(p.Subgraphs) > 0 {
		subgraphs.Subgraphs = p.Subgraphs
	}
	timeout := p.Timeout
	if timeout == 0 {
		if timeout, err = subgraphs.TimeoutDuration(); err != nil {
			return nil, err
		}
	}

	resolverConfig := resolver.Config{Timeout: timeout, Logger: logger}

	if cfg.Cache.Enabled && !p.NoCache {
		if err := cfg.EnsureCacheDir(); err != nil {
			return nil, err
		}
		store, err := metastore.Open(cfg.Cache.Dir, metastore.Options{Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("opening metastore: %w", err)
		}
		resolverConfig.Local = store
	}

	if len(subgraphs.Subgraphs) > 0 {
		client, err := indexer.NewMultiClient(subgraphs.Subgraphs, nil, logger)
		if err != nil {
			return nil, err
		}
		resolverConfig.Indexer = client
	} else {
		logger.Debug("no subgraphs configured, resolving from the metastore only")
	}

	return resolver.New(resolverConfig), nil
}

func runResolve(ctx context.Context, r *resolver.Resolver, hash meta.Hash, params *resolveParams) error {
	if params.Raw {
		data, err := r.ResolveByHash(ctx, hash)
		if err != nil {
			return resolveError(hash, err)
		}
		_, err = fmt.Fprintf(stdout, "0x%x\n", data)
		return err
	}

	results, err := r.ResolveDocument(ctx, hash)
	if err != nil {
		return resolveError(hash, err)
	}
	report := documentReport{Hash: hash.String(), Items: buildReports(results, params.Payload)}
	if done, err := params.EmitJSON(stdout, report); done {
		return err
	}
	return renderReports(stdout, report.Items)
}

// resolveError adds a hint for the failures users can act on.
func resolveError(hash meta.Hash, err error) error {
	switch {
	case errors.Is(err, meta.ErrNotFound):
		return fmt.Errorf("%s: %w (is a subgraph configured for the right network?)", hash, err)
	case errors.Is(err, meta.ErrIndexerUnavailable):
		return fmt.Errorf("%s: %w (retry, or pass --subgraph)", hash, err)
	default:
		return fmt.Errorf("%s: %w", hash, err)
	}
}
