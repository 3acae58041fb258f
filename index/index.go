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
	"time"

	"github.com/poiesic/handoff/core"
)

// Document is the derived record stored in the index's forward map. It
// carries the fields retrieval needs; the full narrative stays in the
// handoff file.
type Document struct {
	Date            string   `json:"date"`
	Headline        string   `json:"headline"`
	Projects        []string `json:"projects"`
	Keywords        []string `json:"keywords"`
	Substance       int      `json:"substance"`
	DurationMinutes int      `json:"duration_minutes"`
}

// DocumentFromHandoff reduces a parsed handoff to its index entry.
func DocumentFromHandoff(h *core.Handoff) Document {
	return Document{
		Date:            h.Date,
		Headline:        h.Headline,
		Projects:        h.Projects,
		Keywords:        h.Keywords,
		Substance:       h.Substance,
		DurationMinutes: h.DurationMinutes,
	}
}

// Meta describes the snapshot as a whole.
type Meta struct {
	LastUpdated   string   `json:"last_updated"`
	DocumentCount int      `json:"document_count"`
	DateRange     []string `json:"date_range"` // [min, max] or empty
}

// Index is the full snapshot shape persisted to disk.
type Index struct {
	Meta      Meta                `json:"meta"`
	Documents map[string]Document `json:"documents"`
	ByProject map[string][]string `json:"by_project"`
	ByKeyword map[string][]string `json:"by_keyword"`
}

// Empty returns a fresh index with initialized maps.
func Empty() *Index {
	return &Index{
		Meta:      Meta{DateRange: []string{}},
		Documents: make(map[string]Document),
		ByProject: make(map[string][]string),
		ByKeyword: make(map[string][]string),
	}
}

// Merge inserts or replaces the document for id. When id already exists,
// its prior inverted memberships are removed first, so the inverted maps
// always reflect exactly the current forward entry (last writer wins).
func (idx *Index) Merge(id string, doc Document) {
	if existing, ok := idx.Documents[id]; ok {
		removeFromInverted(idx.ByProject, id, existing.Projects)
		removeFromInverted(idx.ByKeyword, id, existing.Keywords)
	}

	idx.Documents[id] = doc

	for _, project := range doc.Projects {
		appendUnique(idx.ByProject, project, id)
	}
	for _, keyword := range doc.Keywords {
		appendUnique(idx.ByKeyword, keyword, id)
	}
}

// RecomputeMeta refreshes document count, date range, and the update
// timestamp from the full forward map.
func (idx *Index) RecomputeMeta(now time.Time) {
	idx.Meta.LastUpdated = now.UTC().Format(time.RFC3339)
	idx.Meta.DocumentCount = len(idx.Documents)

	minDate, maxDate := "", ""
	for _, doc := range idx.Documents {
		if doc.Date == "" {
			continue
		}
		if minDate == "" || doc.Date < minDate {
			minDate = doc.Date
		}
		if doc.Date > maxDate {
			maxDate = doc.Date
		}
	}

	if minDate == "" {
		idx.Meta.DateRange = []string{}
	} else {
		idx.Meta.DateRange = []string{minDate, maxDate}
	}
}

// Lookup returns the session ids matching the given project and/or
// keyword. When both are set the result is the intersection, ordered by
// the project list. Empty arguments match everything on that axis.
func (idx *Index) Lookup(project, keyword string) []string {
	switch {
	case project != "" && keyword != "":
		inKeyword := make(map[string]struct{})
		for _, id := range idx.ByKeyword[keyword] {
			inKeyword[id] = struct{}{}
		}
		var out []string
		for _, id := range idx.ByProject[project] {
			if _, ok := inKeyword[id]; ok {
				out = append(out, id)
			}
		}
		return out
	case project != "":
		return append([]string(nil), idx.ByProject[project]...)
	case keyword != "":
		return append([]string(nil), idx.ByKeyword[keyword]...)
	default:
		return nil
	}
}

// appendUnique adds id to the inverted list for key, skipping if already
// present so repeated merges stay idempotent.
func appendUnique(mapping map[string][]string, key, id string) {
	for _, existing := range mapping[key] {
		if existing == id {
			return
		}
	}
	mapping[key] = append(mapping[key], id)
}

// removeFromInverted drops id from the inverted lists for keys, deleting
// any list that ends up empty.
func removeFromInverted(mapping map[string][]string, id string, keys []string) {
	for _, key := range keys {
		values, ok := mapping[key]
		if !ok {
			continue
		}
		kept := values[:0]
		for _, v := range values {
			if v != id {
				kept = append(kept, v)
			}
		}
		if len(kept) == 0 {
			delete(mapping, key)
		} else {
			mapping[key] = kept
		}
	}
}
