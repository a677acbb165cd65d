// Package session holds the per-session application context. A Session is
// created at program start, handed explicitly to the UI, and discarded when
// the program exits; nothing in here is process-wide state.
package session

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"pdfchat/internal/domain"
	"pdfchat/internal/history"
	"pdfchat/internal/memory"
	"pdfchat/internal/service"
)

// Session bundles the conversation memory and the RAG service for one
// interactive run.
type Session struct {
	ID     string
	RAG    *service.RAG
	Memory *memory.Memory
	Logger *slog.Logger
}

// New creates a session context around an assembled RAG service.
func New(rag *service.RAG, mem *memory.Memory, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	logger.Info("session started", "session_id", id, "memory", mem.Path())
	return &Session{ID: id, RAG: rag, Memory: mem, Logger: logger}
}

// Transcript returns the messages to render at startup. It merges a
// best-effort read of the raw memory file with the hydrated in-memory
// conversation, deduplicated by content; either source alone may be stale
// or partial, together they cover restarts and older file formats.
func (s *Session) Transcript() []domain.Message {
	merged := s.importStoreFile()
	seen := make(map[string]struct{}, len(merged))
	for _, m := range merged {
		seen[m.Content] = struct{}{}
	}
	for _, m := range s.Memory.Snapshot() {
		if _, ok := seen[m.Content]; ok {
			continue
		}
		seen[m.Content] = struct{}{}
		merged = append(merged, m)
	}
	return merged
}

// importStoreFile reads the memory file directly, tolerating any failure;
// the authoritative copy lives in Memory.
func (s *Session) importStoreFile() []domain.Message {
	data, err := os.ReadFile(s.Memory.Path())
	if err != nil {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.Logger.Warn("startup transcript import failed", "error", err)
		return nil
	}
	return history.DecodeRecords(raw)
}

// Close ends the session. Memory is write-through, so there is nothing to
// flush; this only marks the lifecycle boundary in the log.
func (s *Session) Close() {
	s.Logger.Info("session ended", "session_id", s.ID, "messages", s.Memory.Len())
}
