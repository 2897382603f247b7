// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package compression

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/rainlanguage/rainmeta/lib/meta"
)

// MaxDecompressedSize bounds the output of Decompress. A payload that
// expands beyond it is treated as corrupt.
const MaxDecompressedSize = 64 << 20

// Compress encodes data with the codec named by encoding. Absent and
// identity encodings return a copy of data.
func Compress(encoding meta.ContentEncoding, data []byte) ([]byte, error) {
	switch encoding {
	case meta.ContentEncodingNone, meta.ContentEncodingIdentity:
		return bytes.Clone(data), nil

	case meta.ContentEncodingDeflate:
		return compressZlib(data)

	case meta.ContentEncodingGzip:
		return compressGzip(data)

	case meta.ContentEncodingZstd:
		return zstdEncoder.EncodeAll(data, nil), nil

	case meta.ContentEncodingLZ4:
		return compressLZ4(data)

	default:
		return nil, fmt.Errorf("%w: %s", meta.ErrUnknownEnumValue, encoding)
	}
}

// Decompress reverses Compress. Truncated, checksum-invalid or
// otherwise undecodable input fails with meta.ErrCorruptPayload and no
// partial output is returned.
func Decompress(encoding meta.ContentEncoding, data []byte) ([]byte, error) {
	switch encoding {
	case meta.ContentEncodingNone, meta.ContentEncodingIdentity:
		return bytes.Clone(data), nil

	case meta.ContentEncodingDeflate:
		return decompressZlib(data)

	case meta.ContentEncodingGzip:
		return decompressGzip(data)

	case meta.ContentEncodingZstd:
		return decompressZstd(data)

	case meta.ContentEncodingLZ4:
		return decompressLZ4(data)

	default:
		return nil, fmt.Errorf("%w: %s", meta.ErrUnknownEnumValue, encoding)
	}
}

// Select picks an encoding for a payload of the given content type.
// Text-like payloads (JSON, plain text) compress well with zstd. For
// other types a trial zstd pass decides: zstd is kept when it saves at
// least a third, deflate when it saves a little, and identity
// otherwise.
func Select(contentType meta.ContentType, data []byte) meta.ContentEncoding {
	switch contentType {
	case meta.ContentTypeJSON, meta.ContentTypeText:
		if len(data) > 0 {
			return meta.ContentEncodingZstd
		}
	}

	if len(data) == 0 {
		return meta.ContentEncodingIdentity
	}

	compressed := zstdEncoder.EncodeAll(data, nil)
	ratio := float64(len(data)) / float64(len(compressed))

	switch {
	case ratio >= 1.5:
		return meta.ContentEncodingZstd
	case ratio >= 1.1:
		return meta.ContentEncodingDeflate
	default:
		return meta.ContentEncodingIdentity
	}
}

// corrupt wraps a codec failure as meta.ErrCorruptPayload.
func corrupt(codec string, err error) error {
	return fmt.Errorf("%w: %s: %w", meta.ErrCorruptPayload, codec, err)
}

// readAllLimited reads r to the end, failing once more than
// MaxDecompressedSize bytes have been produced.
func readAllLimited(r io.Reader) ([]byte, error) {
	output, err := io.ReadAll(io.LimitReader(r, MaxDecompressedSize+1))
	if err != nil {
		return nil, err
	}
	if len(output) > MaxDecompressedSize {
		return nil, fmt.Errorf("output exceeds %d bytes", MaxDecompressedSize)
	}
	return output, nil
}

// Deflate: zlib-wrapped (RFC 1950) streams, with the adler32 trailer
// verified by the reader.

func compressZlib(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer, err := zlib.NewWriterLevel(&buffer, zlib.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	return buffer.Bytes(), nil
}

func decompressZlib(data []byte) ([]byte, error) {
	source := bytes.NewReader(data)
	reader, err := zlib.NewReader(source)
	if err != nil {
		return nil, corrupt("zlib", err)
	}
	defer reader.Close()

	output, err := readAllLimited(reader)
	if err != nil {
		return nil, corrupt("zlib", err)
	}
	if source.Len() != 0 {
		return nil, corrupt("zlib", fmt.Errorf("%d trailing bytes after stream end", source.Len()))
	}
	return output, nil
}

// Gzip: RFC 1952 members with CRC-32 trailers.

func compressGzip(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer := gzip.NewWriter(&buffer)
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	return buffer.Bytes(), nil
}

func decompressGzip(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, corrupt("gzip", err)
	}
	defer reader.Close()

	output, err := readAllLimited(reader)
	if err != nil {
		return nil, corrupt("gzip", err)
	}
	return output, nil
}

// Zstd: single frames with content checksums.

// zstdEncoder and zstdDecoder are reused across calls to avoid
// repeated initialization overhead. zstd.Encoder and zstd.Decoder
// are safe for concurrent use with EncodeAll and DecodeAll.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderCRC(true),
		// Empty payloads still get a frame, so every zstd payload
		// starts with zstdMagic.
		zstd.WithZeroFrames(true),
	)
	if err != nil {
		panic("compression: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil,
		zstd.WithDecoderMaxMemory(MaxDecompressedSize),
	)
	if err != nil {
		panic("compression: zstd decoder initialization failed: " + err.Error())
	}
}

// zstdMagic starts every zstd frame the encoder produces. DecodeAll
// treats input too short to hold it as an empty stream, so it is
// checked up front.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

func decompressZstd(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, zstdMagic) {
		return nil, corrupt("zstd", fmt.Errorf("missing frame magic"))
	}
	output, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, corrupt("zstd", err)
	}
	if len(output) > MaxDecompressedSize {
		return nil, corrupt("zstd", fmt.Errorf("output exceeds %d bytes", MaxDecompressedSize))
	}
	return output, nil
}

// LZ4: frame format (not the legacy or skippable variants) with a
// content checksum. The reader treats input that stops at a block
// boundary as a clean end of stream, so the frame structure is walked
// first and only a complete frame is handed to it.

// LZ4 frame layout constants.
const (
	lz4FrameMagic          = 0x184d2204
	lz4FlagVersionMask     = 0xc0
	lz4FlagVersion1        = 0x40
	lz4FlagBlockChecksum   = 0x10
	lz4FlagContentSize     = 0x08
	lz4FlagContentChecksum = 0x04
	lz4FlagDictionaryID    = 0x01
	lz4UncompressedBlock   = 1 << 31
	lz4MaxBlockSize        = 4 << 20
)

func compressLZ4(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer := lz4.NewWriter(&buffer)
	if err := writer.Apply(lz4.ChecksumOption(true)); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	return buffer.Bytes(), nil
}

func decompressLZ4(data []byte) ([]byte, error) {
	if err := checkLZ4Frame(data); err != nil {
		return nil, corrupt("lz4", err)
	}
	output, err := readAllLimited(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, corrupt("lz4", err)
	}
	return output, nil
}

// checkLZ4Frame verifies that data holds exactly one complete LZ4
// frame: header, every block up to the end mark, and the content
// checksum when the header announces one. Checksums themselves are
// verified by the reader.
func checkLZ4Frame(data []byte) error {
	// Magic, FLG, BD and the header checksum.
	headerSize := 7
	if len(data) < headerSize {
		return io.ErrUnexpectedEOF
	}
	if binary.LittleEndian.Uint32(data) != lz4FrameMagic {
		return errors.New("missing frame magic")
	}
	flags := data[4]
	if flags&lz4FlagVersionMask != lz4FlagVersion1 {
		return fmt.Errorf("unsupported frame version in flags %#x", flags)
	}
	if flags&lz4FlagContentSize != 0 {
		headerSize += 8
	}
	if flags&lz4FlagDictionaryID != 0 {
		headerSize += 4
	}
	if len(data) < headerSize {
		return io.ErrUnexpectedEOF
	}

	position := headerSize
	for {
		if len(data)-position < 4 {
			return io.ErrUnexpectedEOF
		}
		blockHeader := binary.LittleEndian.Uint32(data[position:])
		position += 4
		if blockHeader == 0 {
			break
		}
		blockSize := int(blockHeader &^ lz4UncompressedBlock)
		if blockSize > lz4MaxBlockSize {
			return fmt.Errorf("block of %d bytes exceeds the format maximum", blockSize)
		}
		if flags&lz4FlagBlockChecksum != 0 {
			blockSize += 4
		}
		if len(data)-position < blockSize {
			return io.ErrUnexpectedEOF
		}
		position += blockSize
	}

	if flags&lz4FlagContentChecksum != 0 {
		if len(data)-position < 4 {
			return io.ErrUnexpectedEOF
		}
		position += 4
	}
	if position != len(data) {
		return fmt.Errorf("%d trailing bytes after frame end", len(data)-position)
	}
	return nil
}
