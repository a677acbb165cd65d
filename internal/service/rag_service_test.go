package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/chunker"
	"pdfchat/internal/domain"
	"pdfchat/internal/embedding/tfidf"
	"pdfchat/internal/memory"
	"pdfchat/internal/service"
	"pdfchat/internal/transcript"
	memstore "pdfchat/internal/vectorstore/memory"
)

// fakeLoader returns canned pages instead of reading a PDF.
type fakeLoader struct {
	pages []string
	err   error
}

func (f *fakeLoader) LoadAndSplit(path string) ([]string, error) {
	return f.pages, f.err
}

// fakeCompleter records the prompt it was given.
type fakeCompleter struct {
	answer     string
	err        error
	lastPrompt string
	calls      int
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string, params domain.Sampling) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func newTestRAG(t *testing.T, completer domain.Completer) (*service.RAG, *memory.Memory, *transcript.Backup) {
	t.Helper()
	dir := t.TempDir()
	mem, err := memory.New(filepath.Join(dir, "chat_memory.json"), nil)
	require.NoError(t, err)
	backup := transcript.NewBackup(filepath.Join(dir, "chat_backup.json"))

	rag := service.New(service.Options{
		Loader: &fakeLoader{pages: []string{
			"The billing API exposes invoices and payments. Invoices are immutable once issued.",
			"Payments settle asynchronously. Refunds reference the original payment identifier.",
		}},
		Chunker:   chunker.NewRecursiveSplitter(80, 10, nil),
		Embedder:  tfidf.NewEmbedder(),
		Store:     memstore.NewStorage(),
		Completer: completer,
		Memory:    mem,
		Backup:    backup,
	})
	return rag, mem, backup
}

func TestRAG_AskBeforeIngest_ReturnsNotIndexed(t *testing.T) {
	rag, mem, _ := newTestRAG(t, &fakeCompleter{answer: "hi"})

	_, err := rag.Ask(context.Background(), "anything?")
	require.ErrorIs(t, err, domain.ErrNotIndexed)
	assert.Zero(t, mem.Len(), "failed turns are never persisted")
}

func TestRAG_ProcessDocument_IndexesFragments(t *testing.T) {
	rag, _, _ := newTestRAG(t, &fakeCompleter{answer: "hi"})

	n, err := rag.ProcessDocument(context.Background(), "doc.pdf")
	require.NoError(t, err)
	assert.Greater(t, n, 0)
	assert.True(t, rag.Indexed())
}

func TestRAG_ProcessDocument_LoaderFailure(t *testing.T) {
	rag := service.New(service.Options{
		Loader:   &fakeLoader{err: errors.New("unreadable")},
		Chunker:  chunker.NewRecursiveSplitter(80, 10, nil),
		Embedder: tfidf.NewEmbedder(),
		Store:    memstore.NewStorage(),
	})
	_, err := rag.ProcessDocument(context.Background(), "doc.pdf")
	require.Error(t, err)
	assert.False(t, rag.Indexed())
}

func TestRAG_Ask_PersistsSuccessfulTurn(t *testing.T) {
	completer := &fakeCompleter{answer: "Invoices cannot change after issue."}
	rag, mem, backup := newTestRAG(t, completer)

	_, err := rag.ProcessDocument(context.Background(), "doc.pdf")
	require.NoError(t, err)

	answer, err := rag.Ask(context.Background(), "are invoices mutable?")
	require.NoError(t, err)
	assert.Equal(t, completer.answer, answer)

	// Retrieved context and the question both reach the prompt.
	assert.Contains(t, completer.lastPrompt, "invoices")
	assert.Contains(t, completer.lastPrompt, "Question: are invoices mutable?")

	// Write-through: the pair is durable and ordered.
	msgs := mem.Snapshot()
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.RoleUser, msgs[0].Role)
	assert.Equal(t, "are invoices mutable?", msgs[0].Content)
	assert.Equal(t, domain.RoleAssistant, msgs[1].Role)
	assert.Equal(t, completer.answer, msgs[1].Content)

	// Redundant backup got the same pair.
	entries, err := backup.Load()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "human", entries[0].Type)
	assert.Equal(t, "are invoices mutable?", entries[0].Content)
	assert.Equal(t, "ai", entries[1].Type)
}

func TestRAG_Ask_IncludesHistoryInPrompt(t *testing.T) {
	completer := &fakeCompleter{answer: "second answer"}
	rag, mem, _ := newTestRAG(t, completer)
	_, err := rag.ProcessDocument(context.Background(), "doc.pdf")
	require.NoError(t, err)
	require.NoError(t, mem.RecordTurn("first question", "first answer"))

	_, err = rag.Ask(context.Background(), "second question")
	require.NoError(t, err)
	assert.Contains(t, completer.lastPrompt, "User: first question")
	assert.Contains(t, completer.lastPrompt, "Assistant: first answer")
}

func TestRAG_Ask_CompletionFailureNotPersisted(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("model unavailable")}
	rag, mem, backup := newTestRAG(t, completer)
	_, err := rag.ProcessDocument(context.Background(), "doc.pdf")
	require.NoError(t, err)

	_, err = rag.Ask(context.Background(), "question?")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotIndexed)

	assert.Zero(t, mem.Len())
	entries, loadErr := backup.Load()
	require.NoError(t, loadErr)
	assert.Empty(t, entries)
}

func TestRAG_ProcessDocument_ReplacesPriorIndex(t *testing.T) {
	completer := &fakeCompleter{answer: "ok"}
	rag, _, _ := newTestRAG(t, completer)

	_, err := rag.ProcessDocument(context.Background(), "doc.pdf")
	require.NoError(t, err)
	first, err := rag.ProcessDocument(context.Background(), "doc.pdf")
	require.NoError(t, err)

	// Re-ingesting the same document must not grow the index.
	second, err := rag.ProcessDocument(context.Background(), "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = rag.Ask(context.Background(), "payments?")
	require.NoError(t, err)
	// Prompt context should not repeat a fragment more often than it was indexed.
	count := strings.Count(completer.lastPrompt, "Payments settle asynchronously")
	assert.LessOrEqual(t, count, 1)
}

func TestRAG_SamplingAndRetrievalKnobs(t *testing.T) {
	rag, _, _ := newTestRAG(t, &fakeCompleter{answer: "ok"})

	s := rag.Sampling()
	assert.InDelta(t, 0.7, s.Temperature, 1e-9)
	assert.InDelta(t, 0.9, s.TopP, 1e-9)
	assert.Equal(t, 50, s.TopK)

	s.Temperature = 0.2
	rag.SetSampling(s)
	assert.InDelta(t, 0.2, rag.Sampling().Temperature, 1e-9)

	rag.SetRetrievalK(0) // ignored
	rag.SetRetrievalK(5)
}
