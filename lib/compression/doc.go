// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

// Package compression implements the payload codecs selected by an
// item's content-encoding field.
//
// The codec is determined entirely by the encoding value. There is
// no sniffing of the payload and no fallback between codecs: a
// deflate payload that fails to inflate is corrupt, even if it would
// have decoded as something else.
//
// Every decoding failure is reported as [meta.ErrCorruptPayload].
// Callers never receive partially decoded output.
package compression
