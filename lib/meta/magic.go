// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// Magic is an 8-byte identifier. [DocumentMagic] prefixes every
// document; the other constants select the kind of an item.
type Magic uint64

// Known magic numbers. These values are shared with the on-chain
// contracts and the indexers and must never change. New kinds are
// added, never renumbered.
const (
	DocumentMagic                  Magic = 0xff0a89c674ee7874
	OpMetaV1                       Magic = 0xffe5282f43e495b4
	DotrainV1                      Magic = 0xffdac2f2f37be894
	RainlangV1                     Magic = 0xff1c198cec3b48a7
	SolidityABIV2                  Magic = 0xffe5ffb4a3ff2cde
	AuthoringMetaV1                Magic = 0xffe9e3a02ca8e235
	AuthoringMetaV2                Magic = 0xff52fe42f1a05093
	InterpreterCallerMetaV1        Magic = 0xffc21bbf86cc199b
	ExpressionDeployerV2BytecodeV1 Magic = 0xffdb988a8cd04d32
	RainlangSourceV1               Magic = 0xff13109e41336ff2
	AddressList                    Magic = 0xffb2637608c09e38
	DotrainSourceV1                Magic = 0xffa15ef0fc437099
	DotrainGUIStateV1              Magic = 0xffda7b2fb167c286
)

// magicNames maps every known magic to its kebab-case name.
var magicNames = map[Magic]string{
	DocumentMagic:                  "rain-meta-document-v1",
	OpMetaV1:                       "op-meta-v1",
	DotrainV1:                      "dotrain-v1",
	RainlangV1:                     "rainlang-v1",
	SolidityABIV2:                  "solidity-abi-v2",
	AuthoringMetaV1:                "authoring-meta-v1",
	AuthoringMetaV2:                "authoring-meta-v2",
	InterpreterCallerMetaV1:        "interpreter-caller-meta-v1",
	ExpressionDeployerV2BytecodeV1: "expression-deployer-v2-bytecode-v1",
	RainlangSourceV1:               "rainlang-source-v1",
	AddressList:                    "address-list",
	DotrainSourceV1:                "dotrain-source-v1",
	DotrainGUIStateV1:              "dotrain-gui-state-v1",
}

// magicByName is the inverse of magicNames, built once.
var magicByName = func() map[string]Magic {
	result := make(map[string]Magic, len(magicNames))
	for magic, name := range magicNames {
		result[name] = magic
	}
	return result
}()

// KnownMagics returns every named magic number, in no particular
// order. The registry package owns the authoritative table with
// schemas; this list exists so that names and hex forms can be parsed
// without it.
func KnownMagics() []Magic {
	magics := make([]Magic, 0, len(magicNames))
	for magic := range magicNames {
		magics = append(magics, magic)
	}
	return magics
}

// Bytes returns the big-endian encoding of the magic number, the form
// it takes as a document prefix.
func (m Magic) Bytes() [8]byte {
	var out [8]byte
	binary.BigEndian.PutUint64(out[:], uint64(m))
	return out
}

// Name returns the kebab-case name of a known magic number and
// whether it is known.
func (m Magic) Name() (string, bool) {
	name, ok := magicNames[m]
	return name, ok
}

// Hex returns the 0x-prefixed 16-digit hex form.
func (m Magic) Hex() string {
	return fmt.Sprintf("0x%016x", uint64(m))
}

// String returns the kebab-case name of a known magic number, or its
// hex form otherwise.
func (m Magic) String() string {
	if name, ok := magicNames[m]; ok {
		return name
	}
	return m.Hex()
}

// ParseMagic accepts a known kebab-case name or a 0x-prefixed hex
// number.
func ParseMagic(s string) (Magic, error) {
	if magic, ok := magicByName[s]; ok {
		return magic, nil
	}
	digits, found := strings.CutPrefix(strings.ToLower(s), "0x")
	if !found {
		return 0, fmt.Errorf("unknown magic name %q", s)
	}
	value, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing magic %q: %w", s, err)
	}
	return Magic(value), nil
}
