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
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/poiesic/handoff/core"
	"github.com/poiesic/handoff/handoff"
)

// Rebuild scans every handoff document under sourceDir, re-derives each
// entry by re-parsing the file, and atomically replaces the snapshot
// with the result. Unreadable files are skipped with a warning.
//
// Rebuild builds the complete snapshot in memory first, so it does not
// take the per-update lock; the final write is still atomic.
func (s *Store) Rebuild(sourceDir string) (*Index, error) {
	var files []string
	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".md") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan handoffs dir: %w", err)
	}
	sort.Strings(files)

	idx := Empty()
	for _, file := range files {
		h, err := handoff.ParseFile(file)
		if err != nil {
			s.logger.Warn("skipping unreadable handoff file", "path", file, "err", err)
			continue
		}
		if !core.ValidSessionID(h.SessionID) {
			s.logger.Warn("skipping handoff without usable session id", "path", file)
			continue
		}
		idx.Merge(h.SessionID, DocumentFromHandoff(h))
	}

	idx.RecomputeMeta(time.Now())

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	if err := writeJSONAtomic(s.path, idx); err != nil {
		return nil, err
	}
	return idx, nil
}
