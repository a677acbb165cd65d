// Package service orchestrates one request/response cycle per user action:
// document ingestion rebuilds the vector index, a question runs retrieval,
// prompt assembly, completion, and persistence of the finished turn.
package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"pdfchat/internal/domain"
	"pdfchat/internal/llm"
	"pdfchat/internal/memory"
	"pdfchat/internal/transcript"
	"pdfchat/internal/vectorstore"
)

// TurnNotSavedError reports that a completed answer could not be flushed to
// the memory file. The answer itself is still valid and stays in the live
// conversation; callers should warn rather than discard it.
type TurnNotSavedError struct {
	Err error
}

func (e *TurnNotSavedError) Error() string {
	return fmt.Sprintf("turn completed but not durably saved: %v", e.Err)
}

func (e *TurnNotSavedError) Unwrap() error { return e.Err }

// RAG wires the external collaborators (loader, chunker, embedder, vector
// store, completion service) to the conversation memory and the redundant
// transcript backup.
type RAG struct {
	loader     domain.Loader
	chunker    domain.Chunker
	embedder   domain.Embedder
	store      vectorstore.Storage
	completer  domain.Completer
	summarizer domain.Summarizer
	memory     *memory.Memory
	backup     *transcript.Backup
	logger     *slog.Logger

	sampling   domain.Sampling
	retrievalK int
	timeout    time.Duration

	indexed bool
	summary string
}

// Options configures a RAG service.
type Options struct {
	Loader     domain.Loader
	Chunker    domain.Chunker
	Embedder   domain.Embedder
	Store      vectorstore.Storage
	Completer  domain.Completer
	Summarizer domain.Summarizer
	Memory     *memory.Memory
	Backup     *transcript.Backup
	Logger     *slog.Logger
	RetrievalK int
	Timeout    time.Duration
}

// New assembles a RAG service. RetrievalK defaults to 3 and the external
// call timeout to two minutes.
func New(opts Options) *RAG {
	if opts.RetrievalK <= 0 {
		opts.RetrievalK = 3
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &RAG{
		loader:     opts.Loader,
		chunker:    opts.Chunker,
		embedder:   opts.Embedder,
		store:      opts.Store,
		completer:  opts.Completer,
		summarizer: opts.Summarizer,
		memory:     opts.Memory,
		backup:     opts.Backup,
		logger:     opts.Logger,
		sampling:   domain.DefaultSampling(),
		retrievalK: opts.RetrievalK,
		timeout:    opts.Timeout,
	}
}

// Sampling returns the current completion parameters.
func (r *RAG) Sampling() domain.Sampling { return r.sampling }

// SetSampling replaces the completion parameters for subsequent questions.
func (r *RAG) SetSampling(s domain.Sampling) { r.sampling = s }

// SetRetrievalK replaces the number of fragments fetched per question.
func (r *RAG) SetRetrievalK(k int) {
	if k > 0 {
		r.retrievalK = k
	}
}

// Indexed reports whether a document is available for querying.
func (r *RAG) Indexed() bool { return r.indexed }

// Summary returns the last ingested document's summary, if any.
func (r *RAG) Summary() string { return r.summary }

// ProcessDocument loads the file at path, splits it into fragments, and
// rebuilds the vector index from scratch, replacing any prior document.
// It returns the number of indexed fragments.
func (r *RAG) ProcessDocument(ctx context.Context, path string) (int, error) {
	pages, err := r.loader.LoadAndSplit(path)
	if err != nil {
		return 0, fmt.Errorf("load document: %w", err)
	}
	docID := hashString(path)
	fragments, err := r.chunker.Chunk(docID, pages)
	if err != nil {
		return 0, fmt.Errorf("split document: %w", err)
	}
	if len(fragments) == 0 {
		return 0, fmt.Errorf("document %s produced no fragments", path)
	}

	texts := make([]string, len(fragments))
	var full string
	for i, f := range fragments {
		texts[i] = f.Text
	}
	for _, p := range pages {
		full += p + "\n"
	}

	if err := r.embedder.Prepare(texts); err != nil {
		return 0, fmt.Errorf("prepare embedder: %w", err)
	}
	vectors := make([][]float64, len(fragments))
	for i := range fragments {
		vec, err := r.embedder.Embed(fragments[i].Text)
		if err != nil {
			return 0, fmt.Errorf("embed fragment %d: %w", i, err)
		}
		vectors[i] = vec
	}
	// Remote embedders only learn their dimension from the first vector.
	dim := r.embedder.Dimension()
	if dim == 0 && len(vectors) > 0 {
		dim = len(vectors[0])
	}
	if err := r.store.Init(dim); err != nil {
		return 0, fmt.Errorf("init vector store: %w", err)
	}
	if err := r.store.Clear(); err != nil {
		return 0, fmt.Errorf("clear vector store: %w", err)
	}
	if err := r.store.Upsert(fragments, vectors); err != nil {
		return 0, fmt.Errorf("index fragments: %w", err)
	}

	r.indexed = true
	r.summary = ""
	if r.summarizer != nil {
		if summary, err := r.summarizer.Summarize(full, 3); err == nil {
			r.summary = summary
		} else {
			r.logger.Warn("document summary failed", "error", err)
		}
	}
	r.logger.Info("document indexed", "path", path, "fragments", len(fragments))
	return len(fragments), nil
}

// Ask runs one retrieval-augmented completion for question. On success the
// (question, answer) pair is recorded into memory (write-through) and
// appended to the transcript backup. A failed turn is never persisted.
//
// When persistence fails after a successful completion, the answer is
// returned together with a *TurnNotSavedError.
func (r *RAG) Ask(ctx context.Context, question string) (string, error) {
	if !r.indexed {
		return "", domain.ErrNotIndexed
	}

	vec, err := r.embedder.Embed(question)
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}
	results, err := r.store.Search(vec, r.retrievalK)
	if err != nil {
		return "", fmt.Errorf("similarity search: %w", err)
	}
	contexts := make([]string, 0, len(results))
	for _, res := range results {
		contexts = append(contexts, res.Fragment.Text)
	}

	prompt := llm.BuildPrompt(contexts, r.memory.Snapshot(), question)

	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	answer, err := r.completer.Complete(cctx, prompt, r.sampling)
	if err != nil {
		r.logger.Error("completion failed", "error", err)
		return "", fmt.Errorf("completion: %w", err)
	}

	if r.backup != nil {
		if err := r.backup.AppendTurn(question, answer); err != nil {
			// Insurance copy only; never fail the turn over it.
			r.logger.Warn("transcript backup failed", "error", err)
		}
	}
	if err := r.memory.RecordTurn(question, answer); err != nil {
		r.logger.Error("turn not durably saved", "error", err)
		return answer, &TurnNotSavedError{Err: err}
	}
	return answer, nil
}

// ClearMemory wipes the conversation and its backing file.
func (r *RAG) ClearMemory() error {
	return r.memory.Clear()
}

// History returns the current conversation for transcript rendering.
func (r *RAG) History() []domain.Message {
	return r.memory.Snapshot()
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
