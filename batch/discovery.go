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


package batch

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/poiesic/handoff/core"
	"github.com/poiesic/handoff/index"
)

// DiscoverOptions controls candidate selection.
type DiscoverOptions struct {
	// IndexPath is the snapshot used to deduplicate already-indexed
	// sessions. Empty disables deduplication.
	IndexPath string

	// Reindex processes every transcript even when already indexed.
	Reindex bool

	// Max truncates the candidate list after ordering. Zero means no limit.
	Max int

	Logger *slog.Logger
}

// Discover lists transcript files under root, drops sessions already
// present in the index (unless reindexing), and returns the remaining
// units ordered by modification time ascending, ties broken by path.
//
// The index is read once here; staleness during the run is acceptable
// because index merges are last-writer-wins per id.
func Discover(root string, opts DiscoverOptions) ([]core.Unit, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	indexed := map[string]struct{}{}
	if opts.IndexPath != "" && !opts.Reindex {
		indexed = index.IndexedIDs(opts.IndexPath, logger)
	}

	var units []core.Unit
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".jsonl") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logger.Warn("could not stat transcript, skipping", "path", path, "err", err)
			return nil
		}

		id := core.UnitID(path)
		if _, done := indexed[id]; done {
			return nil
		}

		units = append(units, core.Unit{ID: id, Path: path, ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan sessions dir: %w", err)
	}

	sort.Slice(units, func(i, j int) bool {
		if units[i].ModTime.Equal(units[j].ModTime) {
			return units[i].Path < units[j].Path
		}
		return units[i].ModTime.Before(units[j].ModTime)
	})

	if opts.Max > 0 && len(units) > opts.Max {
		units = units[:opts.Max]
	}
	return units, nil
}
