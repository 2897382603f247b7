// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	openapierrors "github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/validate"

	"github.com/rainlanguage/rainmeta/lib/codec"
	"github.com/rainlanguage/rainmeta/lib/meta"
)

// ErrInvalidStructuredPayload is reported when an item claims a
// structured content type but its payload does not parse as that
// type. It is a soft, item-local outcome distinct from a schema
// violation: there is no value to check against the schema.
var ErrInvalidStructuredPayload = errors.New("invalid structured payload")

// ErrInvalidTextPayload is reported when a text/plain payload is not
// valid UTF-8.
var ErrInvalidTextPayload = errors.New("invalid text payload")

// Result is the outcome of validating one item.
type Result struct {
	// Entry is the registry entry for the item's magic number. It is
	// the zero Entry when the kind is unknown.
	Entry Entry

	// Known reports whether the magic number is registered.
	Known bool

	// Deprecated is set when the item validated against a deprecated
	// kind.
	Deprecated bool

	// Value is the parsed payload for structured content types, in
	// the shape encoding/json produces.
	Value any

	// Err is nil when the item is valid. Otherwise it matches one of
	// meta.ErrUnknownMetaKind, meta.ErrSchemaViolation,
	// ErrInvalidStructuredPayload or ErrInvalidTextPayload.
	Err error
}

// OK reports whether validation passed.
func (r Result) OK() bool {
	return r.Err == nil
}

// Violation is one failing location in a payload.
type Violation struct {
	// Path is the dotted location of the failing value, for example
	// "0.word". The empty string is the payload root.
	Path    string
	Message string
}

// SchemaViolationError lists every way a payload failed its schema.
type SchemaViolationError struct {
	Magic      meta.Magic
	Violations []Violation
}

func (e *SchemaViolationError) Error() string {
	messages := make([]string, len(e.Violations))
	for i, violation := range e.Violations {
		messages[i] = violation.Message
	}
	return fmt.Sprintf("%s for %s: %s", meta.ErrSchemaViolation, e.Magic, strings.Join(messages, "; "))
}

// Is makes errors.Is(err, meta.ErrSchemaViolation) match.
func (e *SchemaViolationError) Is(target error) bool {
	return target == meta.ErrSchemaViolation
}

// Paths returns the failing paths in report order.
func (e *SchemaViolationError) Paths() []string {
	paths := make([]string, len(e.Violations))
	for i, violation := range e.Violations {
		paths[i] = violation.Path
	}
	return paths
}

// Validate checks a decoded item. The payload must already be
// decompressed.
//
// An unknown magic number is reported, not fatal: the caller still
// has the item. Structured payloads are parsed and, when the kind has
// a schema, checked against it. Text and raw payloads only need the
// kind to be known.
func (r *Registry) Validate(item meta.Item) Result {
	entry, ok := r.Lookup(item.Magic)
	if !ok {
		return Result{Err: fmt.Errorf("%w: %s", meta.ErrUnknownMetaKind, item.Magic)}
	}
	result := Result{Entry: entry, Known: true, Deprecated: entry.Deprecated}

	switch {
	case item.ContentType.Structured():
		value, err := ParsePayload(item.ContentType, item.Payload)
		if err != nil {
			result.Err = err
			return result
		}
		result.Value = value
		result.Err = r.ValidateValue(entry, value)

	case item.ContentType == meta.ContentTypeText:
		if !utf8.Valid(item.Payload) {
			result.Err = fmt.Errorf("%w: %s payload is not valid UTF-8", ErrInvalidTextPayload, entry.Name)
		}
	}
	return result
}

// ValidateValue checks an already parsed payload value against the
// schema bound to entry. Values must have the shape encoding/json
// produces (map[string]any, []any, float64 and so on). Entries
// without a schema accept any value.
func (r *Registry) ValidateValue(entry Entry, value any) error {
	if entry.Schema == nil {
		return nil
	}
	err := validate.AgainstSchema(entry.Schema, value, strfmt.Default)
	if err == nil {
		return nil
	}
	return &SchemaViolationError{Magic: entry.Magic, Violations: violationsFrom(err)}
}

// ParsePayload parses a structured payload into the value shape
// encoding/json produces. CBOR payloads are decoded and then passed
// through JSON so that schemas see the same types whichever encoding
// the producer chose. Byte strings become base64 strings.
func ParsePayload(contentType meta.ContentType, payload []byte) (any, error) {
	var value any
	switch contentType {
	case meta.ContentTypeJSON:
		if err := json.Unmarshal(payload, &value); err != nil {
			return nil, fmt.Errorf("%w: json: %w", ErrInvalidStructuredPayload, err)
		}
		return value, nil

	case meta.ContentTypeCBOR:
		var decoded any
		if err := codec.Unmarshal(payload, &decoded); err != nil {
			return nil, fmt.Errorf("%w: cbor: %w", ErrInvalidStructuredPayload, err)
		}
		normalized, err := json.Marshal(decoded)
		if err != nil {
			return nil, fmt.Errorf("%w: cbor value has no JSON form: %w", ErrInvalidStructuredPayload, err)
		}
		if err := json.Unmarshal(normalized, &value); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidStructuredPayload, err)
		}
		return value, nil

	default:
		return nil, fmt.Errorf("%w: content type %q is not structured", ErrInvalidStructuredPayload, contentType)
	}
}

// violationsFrom flattens a go-openapi validation error tree.
func violationsFrom(err error) []Violation {
	var violations []Violation
	var walk func(error)
	walk = func(err error) {
		var composite *openapierrors.CompositeError
		var validation *openapierrors.Validation
		switch {
		case errors.As(err, &composite) && len(composite.Errors) > 0:
			for _, inner := range composite.Errors {
				walk(inner)
			}
		case errors.As(err, &validation):
			violations = append(violations, Violation{
				Path:    strings.Trim(validation.Name, "."),
				Message: validation.Error(),
			})
		default:
			violations = append(violations, Violation{Message: err.Error()})
		}
	}
	walk(err)
	return violations
}
