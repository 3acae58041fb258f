package handoff

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/handoff/core"
)

const sampleDoc = `---
session_id: abc12345
date: 2025-11-02
duration: 1h 5m
model: anthropic/claude-sonnet-4.5
projects:
    - eywa
keywords:
    - index
    - retrieval
substance: 7
---

# Built the batch indexer

## What Happened

Wired the pipeline end to end.

## Insights

Atomic rename keeps readers consistent.

## Open Threads

Retry policy is still undecided.
`

func TestParse(t *testing.T) {
	h := Parse([]byte(sampleDoc))

	assert.Equal(t, "abc12345", h.SessionID)
	assert.Equal(t, "2025-11-02", h.Date)
	assert.Equal(t, "1h 5m", h.Duration)
	assert.Equal(t, 65, h.DurationMinutes)
	assert.Equal(t, "anthropic/claude-sonnet-4.5", h.Model)
	assert.Equal(t, "Built the batch indexer", h.Headline)
	assert.Equal(t, []string{"eywa"}, h.Projects)
	assert.Equal(t, []string{"index", "retrieval"}, h.Keywords)
	assert.Equal(t, 7, h.Substance)
	assert.Equal(t, "Wired the pipeline end to end.", h.WhatHappened)
	assert.Equal(t, "Atomic rename keeps readers consistent.", h.Insights)
	assert.Equal(t, "Retry policy is still undecided.", h.OpenThreads)
}

func TestParseTolerance(t *testing.T) {
	t.Run("no frontmatter", func(t *testing.T) {
		h := Parse([]byte("# Just a headline\n\n## What Happened\n\nthings\n"))
		assert.Equal(t, "", h.SessionID)
		assert.Equal(t, "Just a headline", h.Headline)
		assert.Equal(t, "things", h.WhatHappened)
		assert.Equal(t, 1, h.Substance)
	})

	t.Run("scalar project becomes list", func(t *testing.T) {
		h := Parse([]byte("---\nsession_id: abc12345\nprojects: eywa\n---\n\n# T\n"))
		assert.Equal(t, []string{"eywa"}, h.Projects)
	})

	t.Run("headline from frontmatter fallback", func(t *testing.T) {
		h := Parse([]byte("---\nheadline: From frontmatter\n---\n\nno heading here\n"))
		assert.Equal(t, "From frontmatter", h.Headline)
	})

	t.Run("invalid yaml keeps body", func(t *testing.T) {
		h := Parse([]byte("---\n: : :\n---\n\n# Still parses\n"))
		assert.Equal(t, "Still parses", h.Headline)
	})

	t.Run("missing trailing section boundary", func(t *testing.T) {
		h := Parse([]byte("# T\n\n## Open Threads\n\nlast section, no newline"))
		assert.Equal(t, "last section, no newline", h.OpenThreads)
	})
}

func TestDurationMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"0m", 0},
		{"45m", 45},
		{"1h 5m", 65},
		{"2h", 120},
		{"garbage", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DurationMinutes(tt.in), "input %q", tt.in)
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	in := &core.Handoff{
		SessionID:       "abc12345",
		Date:            "2025-11-02",
		Headline:        "Built the batch indexer",
		Projects:        []string{"eywa", "handoff"},
		Keywords:        []string{"index"},
		Substance:       7,
		Duration:        "1h 5m",
		DurationMinutes: 65,
		Model:           "anthropic/claude-sonnet-4.5",
		WhatHappened:    "Wired the pipeline end to end.",
		Insights:        "Atomic rename keeps readers consistent.",
		OpenThreads:     "Retry policy is still undecided.",
	}

	content, err := Render(in)
	require.NoError(t, err)

	out := Parse([]byte(content))
	assert.Equal(t, in, out)
}

func TestSaveAndParseFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "handoffs")
	in := &core.Handoff{
		SessionID:    "abc12345",
		Date:         "2025-11-02",
		Headline:     "Saved handoff",
		Substance:    3,
		WhatHappened: "content",
	}

	path, err := Save(in, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "abc12345.md"), path)

	out, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc12345", out.SessionID)
	assert.Equal(t, "Saved handoff", out.Headline)
	assert.Equal(t, "content", out.WhatHappened)
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "absent.md"))
	assert.True(t, os.IsNotExist(err))
}
