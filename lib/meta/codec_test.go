// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeItemByteLayout(t *testing.T) {
	payload := bytes.Repeat([]byte{0xab}, 512)
	item := Item{
		Payload:     payload,
		Magic:       AuthoringMetaV1,
		ContentType: ContentTypeCBOR,
	}

	encoded, err := EncodeItem(item)
	if err != nil {
		t.Fatalf("EncodeItem: %v", err)
	}

	var want []byte
	// Map of three entries; key 0, byte string with a two-byte length.
	want = append(want, 0xa3, 0x00, 0x59, 0x02, 0x00)
	want = append(want, payload...)
	// Key 1, 64-bit unsigned integer.
	want = append(want, 0x01, 0x1b, 0xff, 0xe9, 0xe3, 0xa0, 0x2c, 0xa8, 0xe2, 0x35)
	// Key 2, text string of 16 bytes.
	want = append(want, 0x02, 0x70)
	want = append(want, "application/cbor"...)

	if !bytes.Equal(encoded, want) {
		t.Errorf("encoding mismatch:\n got %x\nwant %x", encoded, want)
	}
}

func TestEncodeItemOmitsAbsentFields(t *testing.T) {
	encoded, err := EncodeItem(Item{Payload: []byte("x"), Magic: RainlangV1})
	if err != nil {
		t.Fatalf("EncodeItem: %v", err)
	}
	// Two entries only; no null placeholders for type, encoding or language.
	if encoded[0] != 0xa2 {
		t.Errorf("map header = %#x, want 0xa2", encoded[0])
	}
	if bytes.Contains(encoded, []byte{0xf6}) {
		t.Errorf("encoding %x contains a null", encoded)
	}
}

func TestEncodeItemRejects(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want error
	}{
		{"zero magic", Item{Payload: []byte{1}}, ErrMalformedItem},
		{"content type out of range", Item{Payload: []byte{1}, Magic: RainlangV1, ContentType: 99}, ErrUnknownEnumValue},
		{"content encoding out of range", Item{Payload: []byte{1}, Magic: RainlangV1, ContentEncoding: 42}, ErrUnknownEnumValue},
		{"invalid language", Item{Payload: []byte{1}, Magic: RainlangV1, ContentLanguage: "\xff"}, ErrMalformedItem},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := EncodeItem(test.item)
			if !errors.Is(err, test.want) {
				t.Errorf("EncodeItem error = %v, want %v", err, test.want)
			}
		})
	}
}

func TestItemRoundTrip(t *testing.T) {
	items := []Item{
		{Payload: []byte{}, Magic: DotrainSourceV1},
		{Payload: []byte("#binding\n_: 1;"), Magic: DotrainSourceV1, ContentType: ContentTypeOctetStream},
		{Payload: []byte(`[{"word":"add"}]`), Magic: AuthoringMetaV2, ContentType: ContentTypeJSON, ContentEncoding: ContentEncodingIdentity},
		{Payload: []byte{0x78, 0x9c, 0x01}, Magic: SolidityABIV2, ContentType: ContentTypeJSON, ContentEncoding: ContentEncodingDeflate, ContentLanguage: "en"},
		{Payload: bytes.Repeat([]byte{7}, 70000), Magic: ExpressionDeployerV2BytecodeV1, ContentType: ContentTypeOctetStream, ContentEncoding: ContentEncodingZstd},
		{Payload: []byte("hello"), Magic: Magic(0x0123456789abcdef), ContentType: ContentTypeText, ContentLanguage: "fr-CA"},
	}

	for _, item := range items {
		encoded, err := EncodeItem(item)
		if err != nil {
			t.Fatalf("EncodeItem(%s): %v", item.Magic, err)
		}
		decoded, consumed, err := DecodeItem(encoded)
		if err != nil {
			t.Fatalf("DecodeItem(%s): %v", item.Magic, err)
		}
		if consumed != len(encoded) {
			t.Errorf("%s: consumed %d of %d bytes", item.Magic, consumed, len(encoded))
		}
		if !decoded.Equal(item) {
			t.Errorf("%s: roundtrip mismatch: got %+v", item.Magic, decoded)
		}

		reencoded, err := EncodeItem(decoded)
		if err != nil {
			t.Fatalf("re-EncodeItem(%s): %v", item.Magic, err)
		}
		if !bytes.Equal(reencoded, encoded) {
			t.Errorf("%s: re-encoding is not byte-identical", item.Magic)
		}
	}
}

func TestCanonicalOrderInvariance(t *testing.T) {
	// The same item, hand-encoded with keys in descending order.
	reversed := []byte{
		0xa4,
		0x04, 0x62, 'e', 'n',
		0x02, 0x6a, 't', 'e', 'x', 't', '/', 'p', 'l', 'a', 'i', 'n',
		0x01, 0x1b, 0xff, 0x1c, 0x19, 0x8c, 0xec, 0x3b, 0x48, 0xa7,
		0x00, 0x42, 'h', 'i',
	}

	decoded, consumed, err := DecodeItem(reversed)
	if err != nil {
		t.Fatalf("DecodeItem: %v", err)
	}
	if consumed != len(reversed) {
		t.Errorf("consumed %d of %d bytes", consumed, len(reversed))
	}

	want := Item{Payload: []byte("hi"), Magic: RainlangV1, ContentType: ContentTypeText, ContentLanguage: "en"}
	if !decoded.Equal(want) {
		t.Fatalf("decoded %+v, want %+v", decoded, want)
	}

	canonical, err := EncodeItem(want)
	if err != nil {
		t.Fatalf("EncodeItem: %v", err)
	}
	reencoded, err := EncodeItem(decoded)
	if err != nil {
		t.Fatalf("EncodeItem: %v", err)
	}
	if !bytes.Equal(reencoded, canonical) {
		t.Errorf("re-encoding %x differs from canonical %x", reencoded, canonical)
	}
	if canonical[1] != 0x00 {
		t.Errorf("canonical encoding does not start with the payload key: %x", canonical)
	}
}

func TestDecodeItemTrailingBytes(t *testing.T) {
	encoded, err := EncodeItem(Item{Payload: []byte("abc"), Magic: AddressList})
	if err != nil {
		t.Fatalf("EncodeItem: %v", err)
	}
	data := append(append([]byte{}, encoded...), 0xa2, 0x00)

	_, consumed, err := DecodeItem(data)
	if err != nil {
		t.Fatalf("DecodeItem: %v", err)
	}
	if consumed != len(encoded) {
		t.Errorf("consumed %d, want %d", consumed, len(encoded))
	}
}

func TestDecodeItemErrors(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		want     error
		consumed int
	}{
		{"missing magic", []byte{0xa1, 0x00, 0x41, 0x01}, ErrMalformedItem, 4},
		{"missing payload", []byte{0xa1, 0x01, 0x05}, ErrMalformedItem, 3},
		{"payload is text", []byte{0xa2, 0x00, 0x61, 'a', 0x01, 0x05}, ErrMalformedItem, 6},
		{"payload is null", []byte{0xa2, 0x00, 0xf6, 0x01, 0x05}, ErrMalformedItem, 5},
		{"negative magic", []byte{0xa2, 0x00, 0x40, 0x01, 0x20}, ErrMalformedItem, 5},
		{"unknown key", []byte{0xa3, 0x00, 0x40, 0x01, 0x05, 0x09, 0x00}, ErrMalformedItem, 7},
		{"duplicate key", []byte{0xa3, 0x00, 0x40, 0x01, 0x05, 0x01, 0x06}, ErrMalformedItem, 7},
		{"text key", []byte{0xa1, 0x61, 'a', 0x01}, ErrMalformedItem, 4},
		{"not a map", []byte{0x41, 0x01}, ErrMalformedItem, 2},
		{"content type is integer", []byte{0xa3, 0x00, 0x40, 0x01, 0x05, 0x02, 0x01}, ErrMalformedItem, 7},
		{
			"unknown content type",
			append([]byte{0xa3, 0x00, 0x40, 0x01, 0x05, 0x02, 0x69}, "text/html"...),
			ErrUnknownEnumValue, 16,
		},
		{
			"unknown content encoding",
			append([]byte{0xa3, 0x00, 0x40, 0x01, 0x05, 0x03, 0x63}, "rar"...),
			ErrUnknownEnumValue, 10,
		},
		{"truncated map", []byte{0xa2, 0x00, 0x41}, ErrTruncatedDocument, 0},
		{"empty", nil, ErrTruncatedDocument, 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, consumed, err := DecodeItem(test.data)
			if !errors.Is(err, test.want) {
				t.Fatalf("DecodeItem error = %v, want %v", err, test.want)
			}
			if consumed != test.consumed {
				t.Errorf("consumed = %d, want %d", consumed, test.consumed)
			}
		})
	}
}

func TestParseEnums(t *testing.T) {
	for contentType := ContentTypeJSON; contentType <= ContentTypeText; contentType++ {
		parsed, err := ParseContentType(contentType.String())
		if err != nil || parsed != contentType {
			t.Errorf("ParseContentType(%q) = %v, %v", contentType.String(), parsed, err)
		}
	}
	for encoding := ContentEncodingIdentity; encoding <= ContentEncodingLZ4; encoding++ {
		parsed, err := ParseContentEncoding(encoding.String())
		if err != nil || parsed != encoding {
			t.Errorf("ParseContentEncoding(%q) = %v, %v", encoding.String(), parsed, err)
		}
	}
	if _, err := ParseContentType(""); !errors.Is(err, ErrUnknownEnumValue) {
		t.Errorf("ParseContentType(\"\") error = %v", err)
	}
	if _, err := ParseContentEncoding("br"); !errors.Is(err, ErrUnknownEnumValue) {
		t.Errorf("ParseContentEncoding(\"br\") error = %v", err)
	}
}

func BenchmarkEncodeItem(b *testing.B) {
	item := Item{Payload: bytes.Repeat([]byte{1}, 4096), Magic: AuthoringMetaV2, ContentType: ContentTypeCBOR}
	b.ReportAllocs()
	for b.Loop() {
		EncodeItem(item)
	}
}

func BenchmarkDecodeItem(b *testing.B) {
	encoded, err := EncodeItem(Item{Payload: bytes.Repeat([]byte{1}, 4096), Magic: AuthoringMetaV2, ContentType: ContentTypeCBOR})
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(encoded)))
	b.ReportAllocs()
	for b.Loop() {
		DecodeItem(encoded)
	}
}
