package chunker_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/chunker"
)

func TestRecursiveSplitter_PrefersParagraphBreaks(t *testing.T) {
	c := chunker.NewRecursiveSplitter(40, 0, nil)
	pages := []string{"first paragraph here.\n\nsecond paragraph here.\n\nthird one."}

	frags, err := c.Chunk("doc", pages)
	require.NoError(t, err)
	require.Greater(t, len(frags), 1)
	var all strings.Builder
	for _, f := range frags {
		assert.LessOrEqual(t, len(f.Text), 40)
		all.WriteString(f.Text)
	}
	assert.Contains(t, all.String(), "first paragraph here.")
	assert.Contains(t, all.String(), "second paragraph here.")
	assert.Contains(t, all.String(), "third one.")
}

func TestRecursiveSplitter_OverlapCarriesTail(t *testing.T) {
	c := chunker.NewRecursiveSplitter(30, 12, nil)
	words := make([]string, 20)
	for i := range words {
		words[i] = "word" + string(rune('a'+i))
	}
	pages := []string{strings.Join(words, " ")}

	frags, err := c.Chunk("doc", pages)
	require.NoError(t, err)
	require.Greater(t, len(frags), 1)

	for i := 1; i < len(frags); i++ {
		nextFields := strings.Fields(frags[i].Text)
		require.Greater(t, len(nextFields), 1)
		carried := strings.Join(nextFields[:2], " ")
		assert.True(t, strings.HasSuffix(frags[i-1].Text, carried),
			"chunk %d should end with the carried head of chunk %d", i-1, i)
	}
}

func TestRecursiveSplitter_HardCutsUnbrokenText(t *testing.T) {
	c := chunker.NewRecursiveSplitter(10, 0, nil)
	pages := []string{strings.Repeat("x", 35)}

	frags, err := c.Chunk("doc", pages)
	require.NoError(t, err)
	require.Len(t, frags, 4)
	for _, f := range frags {
		assert.LessOrEqual(t, len(f.Text), 10)
	}
}

func TestRecursiveSplitter_GlobalIndexAcrossPages(t *testing.T) {
	c := chunker.NewRecursiveSplitter(800, 100, nil)
	pages := []string{"page one text.", "page two text.", "page three text."}

	frags, err := c.Chunk("doc", pages)
	require.NoError(t, err)
	require.Len(t, frags, 3)
	for i, f := range frags {
		assert.Equal(t, i, f.Index)
		assert.Equal(t, i+1, f.Page)
		assert.Equal(t, "doc", f.DocumentID)
		assert.Contains(t, f.FragmentID, "doc:")
	}
}

func TestRecursiveSplitter_EmptyPagesYieldNothing(t *testing.T) {
	c := chunker.NewRecursiveSplitter(800, 100, nil)
	frags, err := c.Chunk("doc", []string{"", "   \n  "})
	require.NoError(t, err)
	assert.Empty(t, frags)
}
