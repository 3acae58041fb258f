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
	"fmt"
	"strings"
	"time"
)

const (
	// truncateLimit is the maximum text length rendered for a single turn.
	truncateLimit = 100_000
	// truncatePreview is how much of an over-limit text is kept.
	truncatePreview = 5_000

	maxTitleLength = 80
)

// Markdown renders the session as the transcript document sent to the
// extraction service: frontmatter, a title, and the conversation turns
// with clock-time markers.
func (s *Session) Markdown() string {
	var b strings.Builder

	b.WriteString("---\n")
	fmt.Fprintf(&b, "session_id: %s\n", shortID(s.SessionID))
	fmt.Fprintf(&b, "date: %s\n", orUnknown(s.Date()))
	fmt.Fprintf(&b, "start: %s\n", clock(s.Start))
	fmt.Fprintf(&b, "end: %s\n", clock(s.End))
	fmt.Fprintf(&b, "duration: %s\n", FormatDuration(s.DurationSeconds()))
	fmt.Fprintf(&b, "model: %s\n", s.Model())
	fmt.Fprintf(&b, "turns: %d\n", len(s.Turns))
	b.WriteString("---\n\n")

	title := strings.TrimSpace(s.Summary)
	if len(title) > maxTitleLength {
		title = title[:maxTitleLength]
	}
	if title == "" {
		title = "Session Handoff Source"
	}
	fmt.Fprintf(&b, "# Session: %s\n\n", title)
	b.WriteString("## Conversation\n\n")

	for _, t := range s.Turns {
		user := truncate(t.User)
		assistant := truncate(t.Assistant)

		if user != "" {
			fmt.Fprintf(&b, "### [%s] User\n%s\n\n", clock(t.Start), user)
		}
		if assistant != "" {
			end := t.End
			if end.IsZero() {
				end = t.Start
			}
			fmt.Fprintf(&b, "### [%s] Claude\n%s\n\n", clock(end), assistant)
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// FormatDuration renders a second count as "1h 5m" / "12m" / "0m".
func FormatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0m"
	}
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "unknown"
	}
	return id
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func clock(t time.Time) string {
	if t.IsZero() {
		return "??:??"
	}
	return t.Local().Format("15:04")
}

func truncate(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= truncateLimit {
		return text
	}
	return fmt.Sprintf("%s\n\n[... truncated from %d chars]", text[:truncatePreview], len(text))
}
