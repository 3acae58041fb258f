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


package session

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// Record types that carry no conversational content.
var noiseTypes = map[string]struct{}{
	"file-history-snapshot": {},
	"queue-operation":       {},
	"progress":              {},
}

// maxLineBytes bounds a single transcript record. Tool results can embed
// whole files, so the default bufio limit is far too small.
const maxLineBytes = 16 * 1024 * 1024

// Turn is one user/assistant exchange.
type Turn struct {
	User      string
	Assistant string
	Start     time.Time
	End       time.Time
	Model     string
}

// Session is a normalized transcript: ordered turns plus the metadata
// needed to derive identity, date, and duration.
type Session struct {
	SessionID  string
	Summary    string
	Turns      []Turn
	Start      time.Time
	End        time.Time
	ModelsUsed []string
}

// record is the subset of a transcript JSONL line the parser cares about.
type record struct {
	Type      string  `json:"type"`
	Timestamp string  `json:"timestamp"`
	SessionID string  `json:"sessionId"`
	Summary   string  `json:"summary"`
	Message   message `json:"message"`
}

type message struct {
	Model   string          `json:"model"`
	Content json.RawMessage `json:"content"`
}

// contentBlock is one element of a structured message content array.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
	Name string `json:"name"`
}

// ParseFile reads a transcript JSONL file into a normalized Session.
// Malformed lines are skipped; a live session can have a partially
// written trailing record.
func ParseFile(path string) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s := &Session{
		SessionID: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}

	models := make(map[string]struct{})
	var current *Turn

	flush := func() {
		if current != nil {
			s.Turns = append(s.Turns, *current)
			current = nil
		}
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}
		if _, noisy := noiseTypes[rec.Type]; noisy {
			continue
		}

		ts := parseTimestamp(rec.Timestamp)
		if !ts.IsZero() {
			if s.Start.IsZero() || ts.Before(s.Start) {
				s.Start = ts
			}
			if ts.After(s.End) {
				s.End = ts
			}
		}

		switch rec.Type {
		case "summary":
			if rec.Summary != "" {
				s.Summary = rec.Summary
			}

		case "user":
			text := extractText(rec.Message.Content)
			if strings.Contains(text, "[Request interrupted by user]") {
				continue
			}
			flush()
			current = &Turn{User: text, Start: ts}

		case "assistant":
			model := rec.Message.Model
			if model != "" && !strings.HasPrefix(model, "<") {
				models[model] = struct{}{}
			}

			text := extractText(rec.Message.Content)
			if current == nil {
				current = &Turn{Assistant: text, Start: ts, End: ts, Model: model}
				continue
			}
			if text != "" {
				if current.Assistant != "" {
					current.Assistant += "\n\n"
				}
				current.Assistant += text
			}
			current.End = ts
			current.Model = model
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	s.ModelsUsed = make([]string, 0, len(models))
	for m := range models {
		s.ModelsUsed = append(s.ModelsUsed, m)
	}
	sort.Strings(s.ModelsUsed)

	return s, nil
}

// Stats returns the turn count and the total user+assistant character
// count, used by the size filter. Characters are runes, not bytes, so
// multi-byte text does not inflate the count.
func (s *Session) Stats() (turns, chars int) {
	for _, t := range s.Turns {
		chars += utf8.RuneCountInString(t.User) + utf8.RuneCountInString(t.Assistant)
	}
	return len(s.Turns), chars
}

// Date returns the session's ISO calendar date derived from its earliest
// timestamp, or "" when no timestamp was observed.
func (s *Session) Date() string {
	if s.Start.IsZero() {
		return ""
	}
	return s.Start.Local().Format("2006-01-02")
}

// DurationSeconds returns the wall-clock span of the session.
func (s *Session) DurationSeconds() float64 {
	if s.Start.IsZero() || s.End.IsZero() {
		return 0
	}
	d := s.End.Sub(s.Start).Seconds()
	if d < 0 {
		return 0
	}
	return d
}

// Model returns the first model observed in the session, or "unknown".
func (s *Session) Model() string {
	if len(s.ModelsUsed) == 0 {
		return "unknown"
	}
	return s.ModelsUsed[0]
}

func parseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// extractText flattens message content into plain text. Content is either
// a bare string or an array of typed blocks; tool invocations are reduced
// to a short marker.
func extractText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return strings.TrimSpace(plain)
	}

	var blocks []json.RawMessage
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}

	var parts []string
	for _, b := range blocks {
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, s)
			}
			continue
		}

		var block contentBlock
		if err := json.Unmarshal(b, &block); err != nil {
			continue
		}
		switch block.Type {
		case "text":
			if t := strings.TrimSpace(block.Text); t != "" {
				parts = append(parts, t)
			}
		case "tool_use":
			name := block.Name
			if name == "" {
				name = "tool"
			}
			parts = append(parts, "[tool: "+name+"]")
		}
	}

	return strings.Join(parts, "\n\n")
}
