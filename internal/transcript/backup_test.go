package transcript_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/transcript"
)

func TestBackup_AppendTurn_GrowsArray(t *testing.T) {
	b := transcript.NewBackup(filepath.Join(t.TempDir(), "chat_backup.json"))

	require.NoError(t, b.AppendTurn("q1", "a1"))
	require.NoError(t, b.AppendTurn("q2", "a2"))

	entries, err := b.Load()
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, "human", entries[0].Type)
	assert.Equal(t, "q1", entries[0].Content)
	assert.Equal(t, "ai", entries[1].Type)
	assert.Equal(t, "a1", entries[1].Content)
	assert.Equal(t, "q2", entries[2].Content)
	assert.Equal(t, "a2", entries[3].Content)
	assert.NotEmpty(t, entries[0].Timestamp)
}

func TestBackup_Load_MissingFile(t *testing.T) {
	b := transcript.NewBackup(filepath.Join(t.TempDir(), "missing.json"))
	entries, err := b.Load()
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestBackup_AppendTurn_CorruptFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_backup.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	b := transcript.NewBackup(path)
	assert.Error(t, b.AppendTurn("q", "a"))
}
