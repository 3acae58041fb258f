package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTranscript(t *testing.T, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFileBasic(t *testing.T) {
	path := writeTranscript(t, "2f1c9eab-0d7a-4a41-9a6e-3c80b8d2f611.jsonl",
		`{"type":"summary","summary":"Fixing the indexer"}`,
		`{"type":"user","timestamp":"2025-11-02T09:00:00Z","message":{"content":"Please fix the index merge"}}`,
		`{"type":"assistant","timestamp":"2025-11-02T09:01:30Z","message":{"model":"claude-sonnet-4-5","content":[{"type":"text","text":"Looking at the merge path."},{"type":"tool_use","name":"Read"}]}}`,
		`{"type":"user","timestamp":"2025-11-02T09:05:00Z","message":{"content":"Thanks, now add a test"}}`,
		`{"type":"assistant","timestamp":"2025-11-02T09:06:00Z","message":{"model":"claude-sonnet-4-5","content":[{"type":"text","text":"Done."}]}}`,
	)

	s, err := ParseFile(path)
	require.NoError(t, err)

	assert.Equal(t, "2f1c9eab-0d7a-4a41-9a6e-3c80b8d2f611", s.SessionID)
	assert.Equal(t, "Fixing the indexer", s.Summary)
	require.Len(t, s.Turns, 2)
	assert.Equal(t, "Please fix the index merge", s.Turns[0].User)
	assert.Contains(t, s.Turns[0].Assistant, "Looking at the merge path.")
	assert.Contains(t, s.Turns[0].Assistant, "[tool: Read]")
	assert.Equal(t, []string{"claude-sonnet-4-5"}, s.ModelsUsed)

	turns, chars := s.Stats()
	assert.Equal(t, 2, turns)
	assert.Greater(t, chars, 0)

	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, s.Date())
	assert.InDelta(t, 360.0, s.DurationSeconds(), 0.01)
}

func TestStatsCountsCharactersNotBytes(t *testing.T) {
	s := &Session{Turns: []Turn{
		{User: strings.Repeat("索", 120), Assistant: strings.Repeat("引", 80)},
	}}

	turns, chars := s.Stats()
	assert.Equal(t, 1, turns)
	assert.Equal(t, 200, chars, "multi-byte runes count as one character each")
}

func TestParseFileSkipsNoiseAndGarbage(t *testing.T) {
	path := writeTranscript(t, "abc12345.jsonl",
		`{"type":"file-history-snapshot","timestamp":"2025-11-02T08:59:00Z"}`,
		`{"type":"user","timestamp":"2025-11-02T09:00:00Z","message":{"content":"hello"}}`,
		`{"type":"progress"}`,
		`{"type":"assistant","timestamp":"2025-11-02T09:00:10Z","message":{"model":"claude-sonnet-4-5","content":"hi there"}}`,
		`{"type":"user","message":{"content":"[Request interrupted by user]"}}`,
		`{"type":"assistant","timestamp":"2025-11-02T09:`, // partially written trailing record
	)

	s, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, s.Turns, 1)
	assert.Equal(t, "hello", s.Turns[0].User)
	assert.Equal(t, "hi there", s.Turns[0].Assistant)
}

func TestParseFileAssistantWithoutUser(t *testing.T) {
	path := writeTranscript(t, "deadbeef.jsonl",
		`{"type":"assistant","timestamp":"2025-11-02T09:00:00Z","message":{"model":"claude-sonnet-4-5","content":"unprompted"}}`,
	)

	s, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, s.Turns, 1)
	assert.Equal(t, "", s.Turns[0].User)
	assert.Equal(t, "unprompted", s.Turns[0].Assistant)
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.Error(t, err)
}

func TestParseFileEmpty(t *testing.T) {
	path := writeTranscript(t, "empty.jsonl")
	s, err := ParseFile(path)
	require.NoError(t, err)
	assert.Empty(t, s.Turns)
	assert.Equal(t, "", s.Date())
}
