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
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/handoff/core"
)

// frontmatter is the YAML preamble of a handoff document. Field order here
// is the order written to disk.
type frontmatter struct {
	SessionID string   `yaml:"session_id"`
	Date      string   `yaml:"date"`
	Duration  string   `yaml:"duration,omitempty"`
	Model     string   `yaml:"model,omitempty"`
	Projects  []string `yaml:"projects"`
	Keywords  []string `yaml:"keywords"`
	Substance int      `yaml:"substance"`
}

// Render produces the markdown document for a handoff.
func Render(h *core.Handoff) (string, error) {
	fm := frontmatter{
		SessionID: h.SessionID,
		Date:      h.Date,
		Duration:  h.Duration,
		Model:     h.Model,
		Projects:  h.Projects,
		Keywords:  h.Keywords,
		Substance: h.Substance,
	}
	if fm.Projects == nil {
		fm.Projects = []string{}
	}
	if fm.Keywords == nil {
		fm.Keywords = []string{}
	}

	preamble, err := yaml.Marshal(&fm)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(preamble)
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "# %s\n", strings.TrimSpace(h.Headline))

	writeSection(&b, "What Happened", h.WhatHappened)
	writeSection(&b, "Insights", h.Insights)
	writeSection(&b, "Open Threads", h.OpenThreads)

	return b.String(), nil
}

// Save renders h and writes it under dir as <session id>.md, creating the
// directory if needed. It returns the written path.
func Save(h *core.Handoff, dir string) (string, error) {
	content, err := Render(h)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create handoffs dir: %w", err)
	}

	path := filepath.Join(dir, h.SessionID+".md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write handoff: %w", err)
	}
	return path, nil
}

func writeSection(b *strings.Builder, name, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n%s\n", name, text)
}
