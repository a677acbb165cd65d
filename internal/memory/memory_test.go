package memory_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/domain"
	"pdfchat/internal/memory"
)

func TestMemory_WriteThroughDurability(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_memory.json")

	mem, err := memory.New(path, nil)
	require.NoError(t, err)
	require.NoError(t, mem.RecordTurn("Q", "A"))

	// A fresh instance on the same path must see the turn.
	fresh, err := memory.New(path, nil)
	require.NoError(t, err)
	msgs := fresh.Snapshot()
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.RoleUser, msgs[0].Role)
	assert.Equal(t, "Q", msgs[0].Content)
	assert.Equal(t, domain.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "A", msgs[1].Content)
}

func TestMemory_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "chat_memory.json")
	mem, err := memory.New(path, nil)
	require.NoError(t, err)
	require.NoError(t, mem.RecordTurn("hello", "hi"))
}

func TestMemory_RecordTurn_RejectsEmpty(t *testing.T) {
	mem, err := memory.New(filepath.Join(t.TempDir(), "m.json"), nil)
	require.NoError(t, err)

	for _, tc := range []struct{ user, assistant string }{
		{"", "answer"},
		{"question", ""},
		{"   ", "answer"},
		{"question", "\n\t"},
	} {
		err := mem.RecordTurn(tc.user, tc.assistant)
		require.ErrorIs(t, err, domain.ErrEmptyMessage)
	}
	assert.Zero(t, mem.Len(), "invalid turns must not be appended")
}

func TestMemory_RecordTurn_SaveFailureKeepsTurnInMemory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.json")
	mem, err := memory.New(path, nil)
	require.NoError(t, err)
	require.NoError(t, mem.RecordTurn("Q1", "A1"))

	// A directory at the store path makes the atomic replace fail.
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0o755))

	err = mem.RecordTurn("Q2", "A2")
	require.Error(t, err)
	assert.Equal(t, 4, mem.Len(), "turn stays live so the session can warn without losing it")
}

func TestMemory_Snapshot_IsACopy(t *testing.T) {
	mem, err := memory.New(filepath.Join(t.TempDir(), "m.json"), nil)
	require.NoError(t, err)
	require.NoError(t, mem.RecordTurn("Q", "A"))

	snap := mem.Snapshot()
	snap[0].Content = "mutated"
	assert.Equal(t, "Q", mem.Snapshot()[0].Content)
}

func TestMemory_Merge_DedupsByContent(t *testing.T) {
	mem, err := memory.New(filepath.Join(t.TempDir(), "m.json"), nil)
	require.NoError(t, err)
	require.NoError(t, mem.RecordTurn("shared text", "answer"))

	mem.Merge([]domain.Message{
		{Role: domain.RoleUser, Content: "shared text"},      // duplicate content, skipped
		{Role: domain.RoleAssistant, Content: "shared text"}, // content match wins over role
		{Role: domain.RoleUser, Content: "new text"},
		{Role: domain.RoleUser, Content: "  "},
	})

	msgs := mem.Snapshot()
	require.Len(t, msgs, 3)
	assert.Equal(t, "new text", msgs[2].Content)
}

func TestMemory_Hydration_SkipsInvalidRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.json")
	raw := `[
		{"type":"human","data":{"content":"kept"}},
		{"type":"ai","data":{"content":""}},
		"garbage"
	]`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	mem, err := memory.New(path, nil)
	require.NoError(t, err)
	require.Equal(t, 1, mem.Len())
	assert.Equal(t, "kept", mem.Snapshot()[0].Content)
}

func TestMemory_Clear_RemovesFileAndState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.json")
	mem, err := memory.New(path, nil)
	require.NoError(t, err)
	require.NoError(t, mem.RecordTurn("Q", "A"))

	require.NoError(t, mem.Clear())
	assert.Zero(t, mem.Len())
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	// Idempotent.
	require.NoError(t, mem.Clear())

	fresh, err := memory.New(path, nil)
	require.NoError(t, err)
	assert.Zero(t, fresh.Len())
}
