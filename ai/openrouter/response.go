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


package openrouter

import (
	"encoding/json"
	"strings"

	"github.com/poiesic/handoff/ai"
	"github.com/poiesic/handoff/core"
)

// parseReply parses the extraction service's textual reply into a
// Handoff. Models wrap JSON in code fences or surround it with prose, so
// parsing is tolerant: strip fences, attempt a direct parse, then fall
// back to the widest {...} span.
func parseReply(raw string) (*core.Handoff, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, ai.ErrEmptyReply
	}

	cleaned := stripFences(text)
	for _, candidate := range []string{cleaned, text} {
		if h, ok := tryParse(candidate); ok {
			return h, nil
		}
	}

	first := strings.Index(cleaned, "{")
	last := strings.LastIndex(cleaned, "}")
	if first == -1 || last <= first {
		return nil, ai.ErrUnparsableReply
	}
	if h, ok := tryParse(cleaned[first : last+1]); ok {
		return h, nil
	}

	return nil, ai.ErrUnparsableReply
}

func tryParse(candidate string) (*core.Handoff, bool) {
	var h core.Handoff
	if err := json.Unmarshal([]byte(candidate), &h); err != nil {
		return nil, false
	}
	return &h, true
}

// stripFences removes a surrounding markdown code fence, with or without
// a json language tag.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```JSON")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
