package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/handoff/core"
	"github.com/poiesic/handoff/handoff"
)

func TestRebuildFromHandoffFiles(t *testing.T) {
	handoffs := t.TempDir()
	store := NewStore(filepath.Join(t.TempDir(), "index.json"))

	docs := []*core.Handoff{
		{
			SessionID: "aaaa1111",
			Date:      "2025-10-01",
			Headline:  "Wired the extraction client",
			Projects:  []string{"eywa"},
			Keywords:  []string{"extraction"},
			Substance: 7,
		},
		{
			SessionID: "bbbb2222",
			Date:      "2025-11-02",
			Headline:  "Reworked the snapshot format",
			Projects:  []string{"eywa", "infra"},
			Keywords:  []string{"index"},
			Substance: 5,
		},
	}
	for _, h := range docs {
		_, err := handoff.Save(h, handoffs)
		require.NoError(t, err)
	}

	// Files without a usable session id are skipped, not fatal.
	require.NoError(t, os.WriteFile(filepath.Join(handoffs, "notes.md"), []byte("no headline here"), 0o644))

	idx, err := store.Rebuild(handoffs)
	require.NoError(t, err)

	assert.Equal(t, 2, idx.Meta.DocumentCount)
	assert.ElementsMatch(t, []string{"aaaa1111", "bbbb2222"}, idx.ByProject["eywa"])
	assert.Equal(t, []string{"bbbb2222"}, idx.ByProject["infra"])
	assert.Equal(t, []string{"2025-10-01", "2025-11-02"}, idx.Meta.DateRange)
	assert.Equal(t, "Wired the extraction client", idx.Documents["aaaa1111"].Headline)

	// The snapshot on disk matches what was returned.
	loaded, err := Load(store.Path())
	require.NoError(t, err)
	assert.Equal(t, idx.Meta.DocumentCount, loaded.Meta.DocumentCount)
	assert.Equal(t, idx.Documents, loaded.Documents)
}

func TestRebuildReplacesStaleEntries(t *testing.T) {
	handoffs := t.TempDir()
	store := NewStore(filepath.Join(t.TempDir(), "index.json"))

	// Seed the snapshot with an entry whose source file no longer exists.
	require.NoError(t, store.Upsert("gone9999", Document{Projects: []string{"old"}}))

	_, err := handoff.Save(&core.Handoff{
		SessionID: "aaaa1111",
		Date:      "2025-11-02",
		Headline:  "Current session",
		Substance: 4,
	}, handoffs)
	require.NoError(t, err)

	idx, err := store.Rebuild(handoffs)
	require.NoError(t, err)

	assert.Equal(t, 1, idx.Meta.DocumentCount)
	assert.NotContains(t, idx.Documents, "gone9999")
	assert.NotContains(t, idx.ByProject, "old")
}

func TestRebuildEmptyDir(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "index.json"))

	idx, err := store.Rebuild(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Meta.DocumentCount)
	assert.Empty(t, idx.Meta.DateRange)
}
