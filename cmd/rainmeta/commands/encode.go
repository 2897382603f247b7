// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"

	"github.com/rainlanguage/rainmeta/cmd/rainmeta/cli"
	"github.com/rainlanguage/rainmeta/lib/codec"
	"github.com/rainlanguage/rainmeta/lib/compression"
	"github.com/rainlanguage/rainmeta/lib/meta"
	"github.com/rainlanguage/rainmeta/lib/registry"
	"github.com/rainlanguage/rainmeta/lib/resolver"
)

// encodingAuto picks the smallest useful codec for each payload.
const encodingAuto = "auto"

// manifest describes a document to build. It is read as JSONC, so
// authors can comment their manifests.
type manifest struct {
	Items []manifestItem `json:"items"`
}

// manifestItem is one item of a manifest. Exactly one of File, Text,
// JSON or Hex supplies the payload.
type manifestItem struct {
	// Magic is a kind name such as "dotrain-source-v1" or a
	// 0x-prefixed magic number.
	Magic string `json:"magic"`

	// ContentType defaults to the registry's content type for the
	// kind.
	ContentType string `json:"content_type,omitempty"`

	// ContentEncoding is a codec name or "auto". Empty means absent.
	ContentEncoding string `json:"content_encoding,omitempty"`

	ContentLanguage string `json:"content_language,omitempty"`

	// File is read relative to the manifest's directory.
	File string          `json:"file,omitempty"`
	Text *string         `json:"text,omitempty"`
	JSON json.RawMessage `json:"json,omitempty"`
	Hex  string          `json:"hex,omitempty"`
}

type encodeParams struct {
	Output string `flag:"output,o" desc:"write the binary document to this file instead of hex to stdout"`
}

func encodeCommand() *cli.Command {
	var params encodeParams
	return &cli.Command{
		Name:    "encode",
		Summary: "Build a document from a manifest",
		Description: `Build a Rain meta document from a JSONC manifest.

The manifest lists items in document order:

  {
    "items": [
      {"magic": "dotrain-source-v1", "file": "strategy.rain",
       "content_encoding": "auto"},
      {"magic": "authoring-meta-v2", "content_type": "application/cbor",
       "json": [{"word": "add", "description": "Adds numbers."}]}
    ]
  }

A payload comes from exactly one of "file", "text", "json" or "hex".
JSON values are re-encoded as CBOR when the content type is
application/cbor. "auto" picks a codec from the content type and how
well the payload compresses, and may leave it uncompressed.

The document is printed as 0x-prefixed hex unless -o names a file.`,
		Usage: "rainmeta encode [-o file] [manifest]",
		Examples: []cli.Example{
			{
				Description: "Encode a manifest to a binary file",
				Command:     "rainmeta encode -o meta.bin manifest.jsonc",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("encode", &params)
		},
		Run: func(_ context.Context, args []string) error {
			items, err := readManifest("encode", args)
			if err != nil {
				return err
			}
			document, err := resolver.Encode(items)
			if err != nil {
				return fmt.Errorf("encoding document: %w", err)
			}
			return writeDocument(params.Output, document)
		},
	}
}

// readManifest reads a manifest from the file named by the last
// argument, or from stdin, and builds its items. Item paths resolve
// against the manifest's directory, or the working directory for a
// manifest on stdin.
func readManifest(command string, args []string) ([]meta.Item, error) {
	data, remaining, err := readInput(args, false)
	if err != nil {
		return nil, err
	}
	if err := rejectArgs(command, remaining); err != nil {
		return nil, err
	}
	baseDir := "."
	if len(remaining) < len(args) {
		baseDir = filepath.Dir(args[len(args)-1])
	}
	return parseManifest(data, baseDir)
}

// parseManifest builds items from JSONC manifest data.
func parseManifest(data []byte, baseDir string) ([]meta.Item, error) {
	var parsed manifest
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if len(parsed.Items) == 0 {
		return nil, errors.New("manifest has no items")
	}

	items := make([]meta.Item, 0, len(parsed.Items))
	for index, entry := range parsed.Items {
		item, err := entry.build(baseDir)
		if err != nil {
			return nil, fmt.Errorf("manifest item %d: %w", index, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (entry manifestItem) build(baseDir string) (meta.Item, error) {
	var item meta.Item

	magic, err := meta.ParseMagic(entry.Magic)
	if err != nil {
		return item, err
	}
	item.Magic = magic

	if entry.ContentType != "" {
		if item.ContentType, err = meta.ParseContentType(entry.ContentType); err != nil {
			return item, err
		}
	} else if known, ok := registry.Default().Lookup(magic); ok {
		item.ContentType = known.ContentType
	}

	if item.Payload, err = entry.payload(item.ContentType, baseDir); err != nil {
		return item, err
	}

	switch entry.ContentEncoding {
	case "":
	case encodingAuto:
		item.ContentEncoding = compression.Select(item.ContentType, item.Payload)
	default:
		if item.ContentEncoding, err = meta.ParseContentEncoding(entry.ContentEncoding); err != nil {
			return item, err
		}
	}

	item.ContentLanguage = meta.ContentLanguage(entry.ContentLanguage)
	return item, nil
}

// payload reads the single payload source of an entry.
func (entry manifestItem) payload(contentType meta.ContentType, baseDir string) ([]byte, error) {
	sources := 0
	for _, set := range []bool{entry.File != "", entry.Text != nil, len(entry.JSON) > 0, entry.Hex != ""} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return nil, fmt.Errorf("exactly one of file, text, json or hex is required (got %d)", sources)
	}

	switch {
	case entry.File != "":
		path := entry.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading payload: %w", err)
		}
		return data, nil

	case entry.Text != nil:
		return []byte(*entry.Text), nil

	case entry.Hex != "":
		data, err := hex.DecodeString(strings.TrimPrefix(entry.Hex, "0x"))
		if err != nil {
			return nil, fmt.Errorf("decoding hex payload: %w", err)
		}
		return data, nil

	default:
		return jsonPayload(contentType, entry.JSON)
	}
}

// jsonPayload renders a manifest JSON value in the item's content
// type: compact JSON, or CBOR for application/cbor.
func jsonPayload(contentType meta.ContentType, raw json.RawMessage) ([]byte, error) {
	if contentType != meta.ContentTypeCBOR {
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return nil, fmt.Errorf("compacting json payload: %w", err)
		}
		return compact.Bytes(), nil
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("parsing json payload: %w", err)
	}
	converted, err := cborValue(value)
	if err != nil {
		return nil, err
	}
	data, err := codec.Marshal(converted)
	if err != nil {
		return nil, fmt.Errorf("encoding cbor payload: %w", err)
	}
	return data, nil
}

// cborValue turns json.Number values into integers where they fit, so
// that CBOR payloads carry integers rather than floats.
func cborValue(value any) (any, error) {
	switch typed := value.(type) {
	case json.Number:
		if integer, err := typed.Int64(); err == nil {
			return integer, nil
		}
		float, err := typed.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %s: %w", typed, err)
		}
		return float, nil
	case []any:
		for i, element := range typed {
			converted, err := cborValue(element)
			if err != nil {
				return nil, err
			}
			typed[i] = converted
		}
		return typed, nil
	case map[string]any:
		for key, element := range typed {
			converted, err := cborValue(element)
			if err != nil {
				return nil, err
			}
			typed[key] = converted
		}
		return typed, nil
	default:
		return value, nil
	}
}

// writeDocument writes a binary document to path, or hex to stdout
// when path is empty.
func writeDocument(path string, document []byte) error {
	if path == "" {
		_, err := fmt.Fprintf(stdout, "0x%x\n", document)
		return err
	}
	if err := os.WriteFile(path, document, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
