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


package handoff

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/handoff/core"
)

var (
	headlineRe = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	hoursRe    = regexp.MustCompile(`(\d+)\s*h`)
	minutesRe  = regexp.MustCompile(`(\d+)\s*m`)
)

// ParseFile reads a handoff document back into a Handoff.
//
// Parsing is tolerant: missing frontmatter yields zero-valued metadata,
// a scalar where a list is expected becomes a one-element list, and the
// headline falls back from the first heading to the frontmatter field.
func ParseFile(path string) (*core.Handoff, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data), nil
}

// Parse parses raw handoff document bytes.
func Parse(data []byte) *core.Handoff {
	fm, body := splitFrontmatter(data)

	duration := stringField(fm, "duration")
	h := &core.Handoff{
		SessionID:       stringField(fm, "session_id"),
		Date:            stringField(fm, "date"),
		Duration:        duration,
		DurationMinutes: DurationMinutes(duration),
		Model:           stringField(fm, "model"),
		Projects:        listField(fm, "projects"),
		Keywords:        listField(fm, "keywords"),
		Substance:       intField(fm, "substance", 1),
		WhatHappened:    section(body, "What Happened"),
		Insights:        section(body, "Insights"),
		OpenThreads:     section(body, "Open Threads"),
	}

	if m := headlineRe.FindStringSubmatch(body); m != nil {
		h.Headline = strings.TrimSpace(m[1])
	} else {
		h.Headline = stringField(fm, "headline")
	}

	return h
}

// DurationMinutes converts a human-readable duration like "1h 5m" to
// whole minutes. Unparseable input yields 0.
func DurationMinutes(duration string) int {
	total := 0
	if m := hoursRe.FindStringSubmatch(duration); m != nil {
		var hrs int
		fmt.Sscanf(m[1], "%d", &hrs)
		total += hrs * 60
	}
	if m := minutesRe.FindStringSubmatch(duration); m != nil {
		var mins int
		fmt.Sscanf(m[1], "%d", &mins)
		total += mins
	}
	return total
}

// splitFrontmatter separates the YAML preamble (between leading ---
// delimiters) from the markdown body. Missing or invalid frontmatter
// yields a nil map and the full content as body.
func splitFrontmatter(data []byte) (map[string]any, string) {
	const delim = "---"
	content := strings.TrimLeft(string(data), "\n\r")

	if !strings.HasPrefix(content, delim) {
		return nil, content
	}

	rest := content[len(delim):]
	idx := strings.Index(rest, "\n"+delim)
	if idx < 0 {
		return nil, content
	}

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(rest[:idx]), &fm); err != nil {
		return nil, content
	}

	body := rest[idx+1+len(delim):]
	return fm, strings.TrimLeft(body, "\n\r")
}

// section returns the text under "## <name>" up to the next "## " heading
// or end of body.
func section(body, name string) string {
	pattern := regexp.MustCompile(`(?ms)^##\s+` + regexp.QuoteMeta(name) + `\s*\n(.*?)(?:^##\s|\z)`)
	if m := pattern.FindStringSubmatch(body); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func stringField(fm map[string]any, key string) string {
	v, ok := fm[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case time.Time:
		// yaml resolves unquoted ISO dates to timestamps.
		return s.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", v)
	}
}

func listField(fm map[string]any, key string) []string {
	v, ok := fm[key]
	if !ok || v == nil {
		return nil
	}
	switch items := v.(type) {
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	case string:
		if items = strings.TrimSpace(items); items != "" {
			return []string{items}
		}
	}
	return nil
}

func intField(fm map[string]any, key string, fallback int) int {
	v, ok := fm[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case string:
		var parsed int
		if _, err := fmt.Sscanf(strings.TrimSpace(n), "%d", &parsed); err == nil {
			return parsed
		}
	}
	return fallback
}
