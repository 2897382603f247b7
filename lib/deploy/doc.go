// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

// Package deploy prepares metas for publication to a metaboard
// contract: the framed document, the subject it is emitted under, and
// the emitMeta calldata a wallet submits. It also builds and reads
// dotrain GUI state items.
package deploy
