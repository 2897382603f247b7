// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for rainmeta.
//
// Configuration comes from a single file named by either the
// RAINMETA_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There is no file discovery. Without either,
// the CLI runs on [Default]: no subgraphs, cache under
// ~/.cache/rainmeta.
//
// A file can declare named networks, each with its own subgraph list,
// and [Config.SubgraphsFor] picks one. ${HOME} and ${VAR:-default}
// patterns are expanded in the cache directory and subgraph URLs. No
// other environment variables override config values.
//
// This package depends on no other rainmeta packages.
package config
