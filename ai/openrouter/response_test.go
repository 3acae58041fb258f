package openrouter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/handoff/ai"
)

const replyJSON = `{"session_id":"abc12345","date":"2025-11-02","headline":"Built the indexer","projects":["eywa"],"keywords":["index"],"substance":7,"what_happened":"work"}`

func TestParseReply(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"bare object", replyJSON},
		{"fenced", "```json\n" + replyJSON + "\n```"},
		{"fenced without language tag", "```\n" + replyJSON + "\n```"},
		{"surrounded by prose", "Here is the handoff you asked for:\n\n" + replyJSON + "\n\nLet me know if you need changes."},
		{"fenced and surrounded", "Sure!\n```json\n" + replyJSON + "\n```\nDone."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := parseReply(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, "abc12345", h.SessionID)
			assert.Equal(t, "Built the indexer", h.Headline)
			assert.Equal(t, []string{"eywa"}, h.Projects)
			assert.Equal(t, 7, h.Substance)
		})
	}
}

func TestParseReplyFailures(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := parseReply("   \n ")
		assert.True(t, errors.Is(err, ai.ErrEmptyReply))
	})

	t.Run("no json at all", func(t *testing.T) {
		_, err := parseReply("I could not produce a handoff for this session.")
		assert.True(t, errors.Is(err, ai.ErrUnparsableReply))
	})

	t.Run("broken json", func(t *testing.T) {
		_, err := parseReply(`{"session_id": "abc12345",`)
		assert.True(t, errors.Is(err, ai.ErrUnparsableReply))
	})

	t.Run("json array is not an object", func(t *testing.T) {
		_, err := parseReply(`["abc12345"]`)
		assert.True(t, errors.Is(err, ai.ErrUnparsableReply))
	})
}

func TestBuildUserMessage(t *testing.T) {
	msg := buildUserMessage(defaultSchema, "# Session: test\n")
	assert.Contains(t, msg, "JSON schema:")
	assert.Contains(t, msg, `"session_id"`)
	assert.Contains(t, msg, "# Session: test")
}
