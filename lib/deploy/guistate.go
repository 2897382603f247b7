// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"fmt"
	"maps"
	"slices"

	"github.com/rainlanguage/rainmeta/lib/codec"
	"github.com/rainlanguage/rainmeta/lib/compression"
	"github.com/rainlanguage/rainmeta/lib/meta"
)

// FieldValue is one filled-in field or deposit of a GUI state.
type FieldValue struct {
	ID    string  `cbor:"id" json:"id"`
	Name  *string `cbor:"name" json:"name"`
	Value string  `cbor:"value" json:"value"`
}

// Token is a token picked for one of the order's token slots.
type Token struct {
	Network string `cbor:"network" json:"network"`
	Address string `cbor:"address" json:"address"`
}

// GUIState records how a user configured a dotrain deployment,
// keyed back to the dotrain source by its hash.
type GUIState struct {
	DotrainHash        string                `cbor:"dotrain_hash" json:"dotrain_hash"`
	FieldValues        map[string]FieldValue `cbor:"field_values" json:"field_values"`
	Deposits           map[string]FieldValue `cbor:"deposits" json:"deposits"`
	SelectTokens       map[string]Token      `cbor:"select_tokens" json:"select_tokens"`
	Vaults             map[string]*string    `cbor:"vault_ids" json:"vault_ids"`
	SelectedDeployment string                `cbor:"selected_deployment" json:"selected_deployment"`
}

// TokenAddresses returns the selected token addresses ordered by
// slot name.
func (s GUIState) TokenAddresses() []string {
	addresses := make([]string, 0, len(s.SelectTokens))
	for _, slot := range slices.Sorted(maps.Keys(s.SelectTokens)) {
		addresses = append(addresses, s.SelectTokens[slot].Address)
	}
	return addresses
}

// VaultIDs returns the assigned vault IDs ordered by slot name,
// skipping unassigned slots.
func (s GUIState) VaultIDs() []string {
	var ids []string
	for _, slot := range slices.Sorted(maps.Keys(s.Vaults)) {
		if id := s.Vaults[slot]; id != nil {
			ids = append(ids, *id)
		}
	}
	return ids
}

// Item encodes the state as a dotrain-gui-state-v1 CBOR item.
func (s GUIState) Item() (meta.Item, error) {
	payload, err := codec.Marshal(s)
	if err != nil {
		return meta.Item{}, fmt.Errorf("encoding gui state: %w", err)
	}
	return meta.Item{
		Payload:     payload,
		Magic:       meta.DotrainGUIStateV1,
		ContentType: meta.ContentTypeCBOR,
	}, nil
}

// ParseGUIState decodes a dotrain-gui-state-v1 item. The payload must
// already be decompressed.
func ParseGUIState(item meta.Item) (GUIState, error) {
	if item.Magic != meta.DotrainGUIStateV1 {
		return GUIState{}, fmt.Errorf("%w: expected %s, got %s", meta.ErrUnknownMetaKind, meta.DotrainGUIStateV1, item.Magic)
	}
	var state GUIState
	if err := codec.Unmarshal(item.Payload, &state); err != nil {
		return GUIState{}, fmt.Errorf("%w: gui state: %w", meta.ErrMalformedItem, err)
	}
	return state, nil
}

// ExtractGUIState finds the first GUI state in a document, looking
// inside items that carry nested documents. It reports false when
// there is none.
func ExtractGUIState(document []byte) (GUIState, bool, error) {
	items, err := meta.Unframe(document)
	if err != nil {
		return GUIState{}, false, err
	}
	for _, item := range items {
		if item.Magic != meta.DocumentMagic && item.Magic != meta.DotrainGUIStateV1 {
			continue
		}
		item.Payload, err = compression.Decompress(item.ContentEncoding, item.Payload)
		if err != nil {
			return GUIState{}, false, err
		}
		switch item.Magic {
		case meta.DocumentMagic:
			state, found, err := ExtractGUIState(item.Payload)
			if err != nil || found {
				return state, found, err
			}
		case meta.DotrainGUIStateV1:
			state, err := ParseGUIState(item)
			return state, err == nil, err
		}
	}
	return GUIState{}, false, nil
}
