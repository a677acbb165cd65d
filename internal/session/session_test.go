package session_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/domain"
	"pdfchat/internal/memory"
	"pdfchat/internal/session"
)

func TestSession_Transcript_MergesFileAndMemory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_memory.json")
	raw := `[
		{"type":"human","data":{"content":"from file"}},
		{"type":"ai","content":"legacy shape entry"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	mem, err := memory.New(path, nil)
	require.NoError(t, err)
	// A turn recorded after hydration lives in both the file and memory;
	// it must appear once.
	require.NoError(t, mem.RecordTurn("new question", "new answer"))

	sess := session.New(nil, mem, nil)
	transcript := sess.Transcript()

	require.Len(t, transcript, 4)
	assert.Equal(t, "from file", transcript[0].Content)
	assert.Equal(t, domain.RoleUser, transcript[0].Role)
	assert.Equal(t, "legacy shape entry", transcript[1].Content)
	assert.Equal(t, "new question", transcript[2].Content)
	assert.Equal(t, "new answer", transcript[3].Content)
}

func TestSession_Transcript_EmptyWhenNoHistory(t *testing.T) {
	mem, err := memory.New(filepath.Join(t.TempDir(), "m.json"), nil)
	require.NoError(t, err)

	sess := session.New(nil, mem, nil)
	assert.Empty(t, sess.Transcript())
}

func TestSession_IDsAreUnique(t *testing.T) {
	mem, err := memory.New(filepath.Join(t.TempDir(), "m.json"), nil)
	require.NoError(t, err)

	a := session.New(nil, mem, nil)
	b := session.New(nil, mem, nil)
	assert.NotEqual(t, a.ID, b.ID)
	a.Close()
	b.Close()
}
