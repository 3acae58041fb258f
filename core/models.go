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


package core

import (
	"path/filepath"
	"strings"
	"time"
)

// ShortIDLength is the number of leading characters of a transcript's
// filename stem used as its session identifier.
const ShortIDLength = 8

// Unit identifies one source transcript to be processed.
// Identity is immutable once assigned.
type Unit struct {
	ID      string    // Short session identifier derived from the filename
	Path    string    // Location of the transcript JSONL file
	ModTime time.Time // Last modification time at discovery
}

// UnitID derives the short session identifier for a transcript path.
// It is the first ShortIDLength characters of the filename without its
// extension; shorter stems are used as-is.
func UnitID(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if len(stem) > ShortIDLength {
		return stem[:ShortIDLength]
	}
	return stem
}

// Handoff is the structured record derived from a transcript after
// successful extraction. Field names mirror the extraction schema and the
// handoff file frontmatter.
type Handoff struct {
	SessionID       string   `json:"session_id"`
	Date            string   `json:"date"` // ISO calendar date, YYYY-MM-DD
	Headline        string   `json:"headline"`
	Projects        []string `json:"projects"`
	Keywords        []string `json:"keywords"`
	Substance       int      `json:"substance"` // 1 (trivial) to 10 (major)
	Duration        string   `json:"duration"`  // Human-readable, e.g. "1h 5m"
	DurationMinutes int      `json:"duration_minutes"`
	Model           string   `json:"model"`
	WhatHappened    string   `json:"what_happened"`
	Insights        string   `json:"insights"`
	OpenThreads     string   `json:"open_threads"`
}
