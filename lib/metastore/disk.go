// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package metastore

import (
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeebo/blake3"

	"github.com/rainlanguage/rainmeta/lib/codec"
	"github.com/rainlanguage/rainmeta/lib/meta"
)

// record is the on-disk form of one store entry. Checksum is the
// BLAKE3 digest of Data, checked on load to catch torn or bit-rotted
// files independently of the keccak content address.
type record struct {
	Hash     []byte `cbor:"hash"`
	Data     []byte `cbor:"data"`
	StoredAt int64  `cbor:"stored_at"`
	Checksum []byte `cbor:"checksum"`
}

// diskStore persists entries as one CBOR file each, sharded by the
// first byte of the hash:
//
//	<root>/<hex[:2]>/<hex>.cbor
type diskStore struct {
	root string
}

func openDiskStore(root string) (*diskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating metastore directory: %w", err)
	}
	return &diskStore{root: root}, nil
}

func (d *diskStore) path(hash meta.Hash) string {
	encoded := hex.EncodeToString(hash[:])
	return filepath.Join(d.root, encoded[:2], encoded+".cbor")
}

// write stores a record atomically: temp file in the shard directory,
// then rename over the final path.
func (d *diskStore) write(hash meta.Hash, data []byte, now time.Time) error {
	checksum := blake3.Sum256(data)
	encoded, err := codec.Marshal(record{
		Hash:     hash[:],
		Data:     data,
		StoredAt: now.Unix(),
		Checksum: checksum[:],
	})
	if err != nil {
		return fmt.Errorf("encoding record %s: %w", hash, err)
	}

	finalPath := d.path(hash)
	shard := filepath.Dir(finalPath)
	if err := os.MkdirAll(shard, 0o755); err != nil {
		return fmt.Errorf("creating shard directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(shard, "record-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp record: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(encoded); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing record %s: %w", hash, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing record %s: %w", hash, err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("committing record %s: %w", hash, err)
	}

	success = true
	return nil
}

func (d *diskStore) remove(hash meta.Hash) error {
	if err := os.Remove(d.path(hash)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing record %s: %w", hash, err)
	}
	return nil
}

// load reads every record under the root. Records that fail to parse,
// fail their checksum, or do not verify against their hash are logged
// and skipped.
func (d *diskStore) load(logger *slog.Logger) (map[meta.Hash][]byte, error) {
	entries := make(map[meta.Hash][]byte)
	err := filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".cbor") {
			return nil
		}

		hash, data, err := readRecord(path)
		if err != nil {
			logger.Warn("skipping metastore record", "path", path, "error", err)
			return nil
		}
		entries[hash] = data
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning metastore directory: %w", err)
	}
	return entries, nil
}

func readRecord(path string) (meta.Hash, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return meta.Hash{}, nil, err
	}
	var stored record
	if err := codec.Unmarshal(raw, &stored); err != nil {
		return meta.Hash{}, nil, fmt.Errorf("decoding record: %w", err)
	}
	if len(stored.Hash) != len(meta.Hash{}) {
		return meta.Hash{}, nil, fmt.Errorf("record hash has %d bytes", len(stored.Hash))
	}
	checksum := blake3.Sum256(stored.Data)
	if string(checksum[:]) != string(stored.Checksum) {
		return meta.Hash{}, nil, fmt.Errorf("checksum mismatch")
	}
	hash := meta.Hash(stored.Hash)
	if err := Verify(hash, stored.Data); err != nil {
		return meta.Hash{}, nil, err
	}
	return hash, stored.Data, nil
}
