package domain

import "time"

// Role identifies who produced a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversational turn-atom. Insertion order in a
// conversation is authoritative; Timestamp is advisory only.
type Message struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// Fragment is a chunk of source-document text sized for retrieval.
type Fragment struct {
	DocumentID string
	FragmentID string
	Text       string
	Index      int
	Page       int
}

// SearchResult represents a matching fragment with a relevance score.
type SearchResult struct {
	Fragment Fragment
	Score    float64
}

// Sampling holds the user-configurable completion parameters.
type Sampling struct {
	Temperature float64
	TopP        float64
	TopK        int
}

// DefaultSampling mirrors the UI defaults: temperature 0.7, top-p 0.9, top-k 50.
func DefaultSampling() Sampling {
	return Sampling{Temperature: 0.7, TopP: 0.9, TopK: 50}
}
