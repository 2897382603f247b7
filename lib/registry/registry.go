// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/go-openapi/spec"
	"github.com/tidwall/jsonc"

	"github.com/rainlanguage/rainmeta/lib/meta"
)

//go:embed schemas/*.jsonc
var schemaFiles embed.FS

// Entry describes one known kind of meta item.
type Entry struct {
	Magic meta.Magic

	// Name is the kebab-case name of the kind.
	Name string

	// ContentType is the content type producers normally attach to
	// this kind. Validation uses the item's own content type; this
	// value is used when building new items.
	ContentType meta.ContentType

	// SchemaName names the embedded schema bound to this kind, or is
	// empty when structured payloads of this kind are only parsed.
	SchemaName string

	// Schema is the parsed schema, nil when SchemaName is empty.
	Schema *spec.Schema

	// Deprecated kinds still validate but results carry a flag.
	Deprecated bool

	Description string
}

// Registry is an immutable table of known kinds. It is safe for
// concurrent use.
type Registry struct {
	byMagic map[meta.Magic]Entry
	sorted  []Entry
}

// builtinEntries is the compiled-in table. Schemas are attached by
// name in init.
var builtinEntries = []Entry{
	{
		Magic:       meta.DocumentMagic,
		Name:        "rain-meta-document-v1",
		ContentType: meta.ContentTypeOctetStream,
		Description: "A nested rain meta document.",
	},
	{
		Magic:       meta.OpMetaV1,
		Name:        "op-meta-v1",
		ContentType: meta.ContentTypeJSON,
		SchemaName:  "op_meta_v1",
		Deprecated:  true,
		Description: "Opcode metadata for the legacy interpreter.",
	},
	{
		Magic:       meta.DotrainV1,
		Name:        "dotrain-v1",
		ContentType: meta.ContentTypeOctetStream,
		Deprecated:  true,
		Description: "Dotrain text. Superseded by dotrain-source-v1.",
	},
	{
		Magic:       meta.RainlangV1,
		Name:        "rainlang-v1",
		ContentType: meta.ContentTypeText,
		Description: "Rainlang expression text.",
	},
	{
		Magic:       meta.SolidityABIV2,
		Name:        "solidity-abi-v2",
		ContentType: meta.ContentTypeJSON,
		SchemaName:  "solidity_abi_v2",
		Description: "Solidity contract ABI.",
	},
	{
		Magic:       meta.AuthoringMetaV1,
		Name:        "authoring-meta-v1",
		ContentType: meta.ContentTypeCBOR,
		SchemaName:  "authoring_meta_v1",
		Deprecated:  true,
		Description: "Parser words with operand parser offsets.",
	},
	{
		Magic:       meta.AuthoringMetaV2,
		Name:        "authoring-meta-v2",
		ContentType: meta.ContentTypeCBOR,
		SchemaName:  "authoring_meta_v2",
		Description: "Parser words and descriptions.",
	},
	{
		Magic:       meta.InterpreterCallerMetaV1,
		Name:        "interpreter-caller-meta-v1",
		ContentType: meta.ContentTypeJSON,
		SchemaName:  "interpreter_caller_meta_v1",
		Description: "Expressions and context of a calling contract.",
	},
	{
		Magic:       meta.ExpressionDeployerV2BytecodeV1,
		Name:        "expression-deployer-v2-bytecode-v1",
		ContentType: meta.ContentTypeOctetStream,
		Description: "Deployer contract bytecode.",
	},
	{
		Magic:       meta.RainlangSourceV1,
		Name:        "rainlang-source-v1",
		ContentType: meta.ContentTypeText,
		Description: "Rainlang source text.",
	},
	{
		Magic:       meta.AddressList,
		Name:        "address-list",
		ContentType: meta.ContentTypeOctetStream,
		Description: "Packed 20-byte addresses.",
	},
	{
		Magic:       meta.DotrainSourceV1,
		Name:        "dotrain-source-v1",
		ContentType: meta.ContentTypeOctetStream,
		Description: "Dotrain template source.",
	},
	{
		Magic:       meta.DotrainGUIStateV1,
		Name:        "dotrain-gui-state-v1",
		ContentType: meta.ContentTypeCBOR,
		SchemaName:  "dotrain_gui_state_v1",
		Description: "User configuration of a deployed dotrain order.",
	},
}

// defaultRegistry is built once at package initialization and never
// modified.
var defaultRegistry *Registry

func init() {
	entries := make([]Entry, len(builtinEntries))
	for i, entry := range builtinEntries {
		if entry.SchemaName != "" {
			schema, err := LoadSchema(entry.SchemaName)
			if err != nil {
				panic("registry: builtin schema initialization failed: " + err.Error())
			}
			entry.Schema = schema
		}
		entries[i] = entry
	}

	var err error
	defaultRegistry, err = New(entries)
	if err != nil {
		panic("registry: builtin table initialization failed: " + err.Error())
	}
}

// Default returns the process-wide registry of built-in kinds.
func Default() *Registry {
	return defaultRegistry
}

// New builds an independent registry. Entries must have distinct,
// non-zero magic numbers and distinct names.
func New(entries []Entry) (*Registry, error) {
	registry := &Registry{
		byMagic: make(map[meta.Magic]Entry, len(entries)),
		sorted:  make([]Entry, 0, len(entries)),
	}
	names := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if entry.Magic == 0 {
			return nil, fmt.Errorf("entry %q has a zero magic number", entry.Name)
		}
		if entry.Name == "" {
			entry.Name = entry.Magic.String()
		}
		if _, exists := registry.byMagic[entry.Magic]; exists {
			return nil, fmt.Errorf("duplicate magic number %s", entry.Magic.Hex())
		}
		if names[entry.Name] {
			return nil, fmt.Errorf("duplicate entry name %q", entry.Name)
		}
		if entry.SchemaName != "" && entry.Schema == nil {
			return nil, fmt.Errorf("entry %q names schema %q but has none attached", entry.Name, entry.SchemaName)
		}
		names[entry.Name] = true
		registry.byMagic[entry.Magic] = entry
		registry.sorted = append(registry.sorted, entry)
	}
	slices.SortFunc(registry.sorted, func(a, b Entry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return registry, nil
}

// Lookup returns the entry for a magic number.
func (r *Registry) Lookup(magic meta.Magic) (Entry, bool) {
	entry, ok := r.byMagic[magic]
	return entry, ok
}

// LookupName returns the entry with the given kebab-case name.
func (r *Registry) LookupName(name string) (Entry, bool) {
	for _, entry := range r.sorted {
		if entry.Name == name {
			return entry, true
		}
	}
	return Entry{}, false
}

// Entries returns every entry sorted by name. The slice is a copy.
func (r *Registry) Entries() []Entry {
	return slices.Clone(r.sorted)
}

// SchemaNames lists the embedded schema documents.
func SchemaNames() []string {
	files, err := schemaFiles.ReadDir("schemas")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, strings.TrimSuffix(file.Name(), ".jsonc"))
	}
	return names
}

// SchemaSource returns an embedded schema as plain JSON, with the
// authoring comments stripped.
func SchemaSource(name string) ([]byte, error) {
	data, err := schemaFiles.ReadFile("schemas/" + name + ".jsonc")
	if err != nil {
		return nil, fmt.Errorf("unknown schema %q", name)
	}
	return jsonc.ToJSON(data), nil
}

// LoadSchema parses an embedded schema by name.
func LoadSchema(name string) (*spec.Schema, error) {
	source, err := SchemaSource(name)
	if err != nil {
		return nil, err
	}
	return ParseSchema(source)
}

// ParseSchema parses a JSON Schema document. Comments and trailing
// commas are accepted.
func ParseSchema(data []byte) (*spec.Schema, error) {
	var schema spec.Schema
	if err := json.Unmarshal(jsonc.ToJSON(data), &schema); err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}
	return &schema, nil
}
