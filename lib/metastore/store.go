// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package metastore

import (
	"bytes"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/rainlanguage/rainmeta/lib/clock"
	"github.com/rainlanguage/rainmeta/lib/meta"
)

// Options configures a Store.
type Options struct {
	// Dir, when set, persists every entry under this directory and
	// reloads existing entries on New.
	Dir string

	// Clock stamps persisted records. Defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Store is a content-addressed cache of meta bytes keyed by hash,
// plus a map from dotrain URIs to the hash of their current text.
//
// Store is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	metas    map[meta.Hash][]byte
	dotrains map[string]meta.Hash

	disk   *diskStore
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a store. With Options.Dir set, the directory is created
// if needed and any records already in it are loaded.
func New(options Options) (*Store, error) {
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	store := &Store{
		metas:    make(map[meta.Hash][]byte),
		dotrains: make(map[string]meta.Hash),
		clock:    options.Clock,
		logger:   options.Logger,
	}
	if options.Dir == "" {
		return store, nil
	}

	disk, err := openDiskStore(options.Dir)
	if err != nil {
		return nil, err
	}
	store.disk = disk
	loaded, err := disk.load(store.logger)
	if err != nil {
		return nil, err
	}
	for hash, data := range loaded {
		store.metas[hash] = data
	}
	store.logger.Debug("metastore loaded", "dir", options.Dir, "entries", len(loaded))
	return store, nil
}

// Open creates a store persisted under dir.
func Open(dir string, options Options) (*Store, error) {
	options.Dir = dir
	return New(options)
}

// NewMemory returns a store without persistence.
func NewMemory() *Store {
	store, _ := New(Options{})
	return store
}

// Get returns a copy of the bytes stored under hash.
func (s *Store) Get(hash meta.Hash) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.metas[hash]
	if !ok {
		return nil, false
	}
	return bytes.Clone(data), true
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.metas)
}

// Hashes returns every stored hash in ascending byte order.
func (s *Store) Hashes() []meta.Hash {
	s.mu.RLock()
	hashes := make([]meta.Hash, 0, len(s.metas))
	for hash := range s.metas {
		hashes = append(hashes, hash)
	}
	s.mu.RUnlock()
	slices.SortFunc(hashes, func(a, b meta.Hash) int {
		return bytes.Compare(a[:], b[:])
	})
	return hashes
}

// Put stores data under hash after checking with Verify that the
// bytes really are the content named by hash. When data is a rain
// meta document its items are also stored under their own hashes.
func (s *Store) Put(hash meta.Hash, data []byte) error {
	if err := Verify(hash, data); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storeLocked(hash, data); err != nil {
		return err
	}
	if meta.IsRainMetaDocument(data) {
		if _, err := s.explodeLocked(data); err != nil {
			return err
		}
	}
	return nil
}

// PutDocument stores a document under its keccak256 and each of its
// items, in canonical identity form, under the item's content hash.
// It returns the item hashes in document order. Items that fail to
// decode are skipped.
func (s *Store) PutDocument(data []byte) ([]meta.Hash, error) {
	if _, err := meta.CheckDocument(data); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storeLocked(meta.HashBytes(data), data); err != nil {
		return nil, err
	}
	return s.explodeLocked(data)
}

// explodeLocked stores every decodable item of a document.
func (s *Store) explodeLocked(data []byte) ([]meta.Hash, error) {
	var hashes []meta.Hash
	for wire, err := range meta.Items(data) {
		if meta.IsFatal(err) {
			return hashes, err
		}
		if err != nil {
			s.logger.Debug("skipping undecodable item", "error", err)
			continue
		}
		identity, err := identityItem(wire)
		if err != nil {
			s.logger.Debug("skipping item with corrupt payload", "magic", wire.Magic.String(), "error", err)
			continue
		}
		encoded, err := meta.EncodeItem(identity)
		if err != nil {
			return hashes, err
		}
		hash := meta.HashBytes(encoded)
		if err := s.storeLocked(hash, encoded); err != nil {
			return hashes, err
		}
		hashes = append(hashes, hash)
	}
	return hashes, nil
}

// storeLocked records one entry, persisting it when the store has a
// directory.
func (s *Store) storeLocked(hash meta.Hash, data []byte) error {
	if _, exists := s.metas[hash]; exists {
		return nil
	}
	if s.disk != nil {
		if err := s.disk.write(hash, data, s.clock.Now()); err != nil {
			return err
		}
	}
	s.metas[hash] = bytes.Clone(data)
	return nil
}

// removeLocked drops one entry from memory and disk.
func (s *Store) removeLocked(hash meta.Hash) error {
	delete(s.metas, hash)
	if s.disk != nil {
		return s.disk.remove(hash)
	}
	return nil
}

// SetDotrain records text as the current content of the dotrain at
// uri. The text is stored as a dotrain-v1 item and its hash returned
// along with the hash it replaced (zero when the URI was new). Unless
// keepOld is set, the replaced content is dropped from the store.
func (s *Store) SetDotrain(uri, text string, keepOld bool) (newHash, oldHash meta.Hash, err error) {
	encoded, err := meta.EncodeItem(meta.Item{
		Payload:     []byte(text),
		Magic:       meta.DotrainV1,
		ContentType: meta.ContentTypeOctetStream,
	})
	if err != nil {
		return meta.Hash{}, meta.Hash{}, fmt.Errorf("encoding dotrain %s: %w", uri, err)
	}
	newHash = meta.HashBytes(encoded)

	s.mu.Lock()
	defer s.mu.Unlock()

	oldHash, existed := s.dotrains[uri]
	if err := s.storeLocked(newHash, encoded); err != nil {
		return meta.Hash{}, meta.Hash{}, err
	}
	s.dotrains[uri] = newHash

	if existed && oldHash != newHash && !keepOld && !s.referencedLocked(oldHash) {
		if err := s.removeLocked(oldHash); err != nil {
			return newHash, oldHash, err
		}
	}
	return newHash, oldHash, nil
}

// referencedLocked reports whether any dotrain URI still points at
// hash.
func (s *Store) referencedLocked(hash meta.Hash) bool {
	for _, current := range s.dotrains {
		if current == hash {
			return true
		}
	}
	return false
}

// DotrainHash returns the hash of the dotrain text recorded for uri.
func (s *Store) DotrainHash(uri string) (meta.Hash, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hash, ok := s.dotrains[uri]
	return hash, ok
}

// DotrainURI returns a URI whose current dotrain text has the given
// hash.
func (s *Store) DotrainURI(hash meta.Hash) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for uri, current := range s.dotrains {
		if current == hash {
			return uri, true
		}
	}
	return "", false
}

// DeleteDotrain forgets the dotrain at uri. Unless keepMeta is set,
// its content is removed as well.
func (s *Store) DeleteDotrain(uri string, keepMeta bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	hash, ok := s.dotrains[uri]
	if !ok {
		return nil
	}
	delete(s.dotrains, uri)
	if keepMeta || s.referencedLocked(hash) {
		return nil
	}
	return s.removeLocked(hash)
}

// Merge copies into s every entry and dotrain URI of other that s
// does not already hold.
func (s *Store) Merge(other *Store) error {
	if other == s {
		return nil
	}
	other.mu.RLock()
	metas := make(map[meta.Hash][]byte, len(other.metas))
	for hash, data := range other.metas {
		metas[hash] = data
	}
	dotrains := make(map[string]meta.Hash, len(other.dotrains))
	for uri, hash := range other.dotrains {
		dotrains[uri] = hash
	}
	other.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	for hash, data := range metas {
		if err := s.storeLocked(hash, data); err != nil {
			return err
		}
	}
	for uri, hash := range dotrains {
		if _, exists := s.dotrains[uri]; !exists {
			s.dotrains[uri] = hash
		}
	}
	return nil
}
