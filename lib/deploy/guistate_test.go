// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rainlanguage/rainmeta/lib/meta"
	"github.com/rainlanguage/rainmeta/lib/registry"
	"github.com/rainlanguage/rainmeta/lib/resolver"
)

func sampleState() GUIState {
	name := "Amount"
	vault := "vault-123"
	return GUIState{
		DotrainHash: meta.FormatHash(meta.HashBytes([]byte("#main _: 1;"))),
		FieldValues: map[string]FieldValue{
			"amount": {ID: "amount", Name: &name, Value: "100"},
		},
		Deposits: map[string]FieldValue{
			"usdc": {ID: "usdc", Value: "50"},
		},
		SelectTokens: map[string]Token{
			"output-token": {Network: "flare", Address: "0x1d80c49bbbcd1c0911346656b529df9e5c2f783d"},
			"input-token":  {Network: "ethereum", Address: "0x4242424242424242424242424242424242424242"},
		},
		Vaults: map[string]*string{
			"input-0":  &vault,
			"output-0": nil,
		},
		SelectedDeployment: "flare-deployment",
	}
}

func TestGUIStateItemRoundTrip(t *testing.T) {
	state := sampleState()
	item, err := state.Item()
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	if item.Magic != meta.DotrainGUIStateV1 || item.ContentType != meta.ContentTypeCBOR {
		t.Errorf("item header = %s %s", item.Magic, item.ContentType)
	}

	parsed, err := ParseGUIState(item)
	if err != nil {
		t.Fatalf("ParseGUIState: %v", err)
	}
	if diff := cmp.Diff(state, parsed); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestGUIStateValidatesAgainstRegistry(t *testing.T) {
	item, err := sampleState().Item()
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	if result := registry.Default().Validate(item); !result.OK() {
		t.Errorf("gui state item rejected: %v", result.Err)
	}

	empty, err := GUIState{}.Item()
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	if result := registry.Default().Validate(empty); !result.OK() {
		t.Errorf("empty gui state rejected: %v", result.Err)
	}
}

func TestGUIStateAccessors(t *testing.T) {
	state := sampleState()
	want := []string{
		"0x4242424242424242424242424242424242424242",
		"0x1d80c49bbbcd1c0911346656b529df9e5c2f783d",
	}
	if diff := cmp.Diff(want, state.TokenAddresses()); diff != "" {
		t.Errorf("TokenAddresses mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"vault-123"}, state.VaultIDs()); diff != "" {
		t.Errorf("VaultIDs mismatch (-want +got):\n%s", diff)
	}
}

func TestParseGUIStateRejects(t *testing.T) {
	if _, err := ParseGUIState(DotrainSource("x")); !errors.Is(err, meta.ErrUnknownMetaKind) {
		t.Errorf("wrong magic error = %v, want ErrUnknownMetaKind", err)
	}
	garbage := meta.Item{Payload: []byte{0xff}, Magic: meta.DotrainGUIStateV1, ContentType: meta.ContentTypeCBOR}
	if _, err := ParseGUIState(garbage); !errors.Is(err, meta.ErrMalformedItem) {
		t.Errorf("garbage payload error = %v, want ErrMalformedItem", err)
	}
}

func TestExtractGUIState(t *testing.T) {
	state := sampleState()
	stateItem, err := state.Item()
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	stateItem.ContentEncoding = meta.ContentEncodingZstd

	document, err := resolver.Encode([]meta.Item{DotrainSource("#main _: 1;"), stateItem})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	found, ok, err := ExtractGUIState(document)
	if err != nil || !ok {
		t.Fatalf("ExtractGUIState = %v, %v", ok, err)
	}
	if diff := cmp.Diff(state, found); diff != "" {
		t.Errorf("extracted state mismatch (-want +got):\n%s", diff)
	}

	outer, err := resolver.Encode([]meta.Item{{
		Payload:     document,
		Magic:       meta.DocumentMagic,
		ContentType: meta.ContentTypeOctetStream,
	}})
	if err != nil {
		t.Fatalf("Encode nested: %v", err)
	}
	if _, ok, err := ExtractGUIState(outer); err != nil || !ok {
		t.Errorf("nested ExtractGUIState = %v, %v", ok, err)
	}

	plain, err := resolver.Encode([]meta.Item{DotrainSource("#main _: 1;")})
	if err != nil {
		t.Fatalf("Encode plain: %v", err)
	}
	if _, ok, err := ExtractGUIState(plain); err != nil || ok {
		t.Errorf("document without state = %v, %v; want false, nil", ok, err)
	}
}
