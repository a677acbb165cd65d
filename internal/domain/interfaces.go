package domain

import "context"

// Loader turns a document file path into an ordered sequence of page texts.
type Loader interface {
	LoadAndSplit(path string) ([]string, error)
}

// Chunker splits page texts into fragments suitable for retrieval indexing.
type Chunker interface {
	Chunk(documentID string, pages []string) ([]Fragment, error)
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float64, error)
}

// Completer invokes a language-model completion service with a fully
// assembled prompt and sampling parameters, returning free text.
type Completer interface {
	Complete(ctx context.Context, prompt string, params Sampling) (string, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
