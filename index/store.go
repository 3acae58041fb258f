// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/poiesic/handoff/core"
)

// ErrInvalidDocumentID indicates a session id unusable as an index key.
var ErrInvalidDocumentID = errors.New("invalid document id")

// Store performs locked, atomic updates of one index file.
type Store struct {
	path   string
	logger *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a store for the index at path.
func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{
		path:   path,
		logger: slog.Default().With("component", "index-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the index file location.
func (s *Store) Path() string {
	return s.path
}

// Upsert inserts or updates one document under the store's cross-process
// lock and atomically replaces the snapshot. On any I/O failure the
// prior on-disk snapshot is left untouched.
func (s *Store) Upsert(id string, doc Document) error {
	if !core.ValidSessionID(id) {
		return fmt.Errorf("%w: %q", ErrInvalidDocumentID, id)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	lock, err := acquireLock(s.path)
	if err != nil {
		return err
	}
	defer releaseLock(lock)

	idx := s.loadOrEmpty()
	idx.Merge(id, doc)
	idx.RecomputeMeta(time.Now())

	return writeJSONAtomic(s.path, idx)
}

// loadOrEmpty reads the current snapshot. A missing file yields an empty
// index; an unparsable file is quarantined and also yields an empty
// index rather than aborting the update.
func (s *Store) loadOrEmpty() *Index {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("could not read index, proceeding as empty",
				"path", s.path, "err", err)
		}
		return Empty()
	}

	idx, err := decode(data)
	if err != nil {
		backup := fmt.Sprintf("%s.corrupt.%s", s.path, time.Now().UTC().Format("20060102150405"))
		if writeErr := os.WriteFile(backup, data, 0o644); writeErr != nil {
			s.logger.Warn("could not back up corrupt index",
				"path", s.path, "err", writeErr)
		} else {
			s.logger.Warn("corrupt index backed up, proceeding as empty",
				"path", s.path, "backup", backup)
		}
		return Empty()
	}
	return idx
}

// Load reads and parses the snapshot at path. A missing file returns an
// empty index; a present but unparsable file returns an error.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Empty(), nil
		}
		return nil, err
	}
	return decode(data)
}

// IndexedIDs returns the set of session ids in the snapshot at path.
// The read is tolerant: a missing or unparsable index yields an empty
// set with a warning, matching upsert's recovery behavior.
func IndexedIDs(path string, logger *slog.Logger) map[string]struct{} {
	if logger == nil {
		logger = slog.Default()
	}

	ids := make(map[string]struct{})
	idx, err := Load(path)
	if err != nil {
		logger.Warn("could not read existing index, treating as empty",
			"path", path, "err", err)
		return ids
	}

	for id := range idx.Documents {
		ids[id] = struct{}{}
	}
	return ids
}

func decode(data []byte) (*Index, error) {
	idx := Empty()
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	if idx.Documents == nil {
		idx.Documents = make(map[string]Document)
	}
	if idx.ByProject == nil {
		idx.ByProject = make(map[string][]string)
	}
	if idx.ByKeyword == nil {
		idx.ByKeyword = make(map[string][]string)
	}
	if idx.Meta.DateRange == nil {
		idx.Meta.DateRange = []string{}
	}
	return idx, nil
}

// writeJSONAtomic writes the snapshot to a temporary file in the target
// directory, flushes it to storage, then renames it over the target.
// Readers see either the fully-old or fully-new snapshot, never a
// partial one.
func writeJSONAtomic(path string, idx *Index) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(idx); err != nil {
		cleanup()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
