// Package memory holds the authoritative in-memory conversation and the
// policy for syncing it to the on-disk store: write-through on every
// recorded turn, soft-fail on reads, visible failures on writes.
package memory

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pdfchat/internal/domain"
	"pdfchat/internal/history"
)

// Memory is the in-memory conversation plus its backing store.
type Memory struct {
	store    *history.Store
	messages []domain.Message
	logger   *slog.Logger
}

// New resolves path to an absolute path, ensures the parent directory
// exists, and hydrates the conversation from the store. Hydration can only
// soft-fail (the store recovers corrupt files itself), so New errors only
// when the directory cannot be created or the path cannot be resolved.
func New(path string, logger *slog.Logger) (*Memory, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve memory path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("create memory directory: %w", err)
	}
	m := &Memory{
		store:  history.NewStore(abs, logger),
		logger: logger,
	}
	if loaded := m.store.Load(); len(loaded) > 0 {
		m.messages = loaded
		logger.Info("conversation hydrated", "path", abs, "messages", len(loaded))
	}
	return m, nil
}

// Path returns the absolute store file path.
func (m *Memory) Path() string { return m.store.Path() }

// Len returns the number of messages currently held.
func (m *Memory) Len() int { return len(m.messages) }

// RecordTurn appends a completed question/answer pair and flushes it to the
// store before returning. Both texts must be non-empty after trimming. A
// save failure propagates to the caller; the turn stays in the live
// conversation either way, so the session can warn without losing context.
func (m *Memory) RecordTurn(userText, assistantText string) error {
	if strings.TrimSpace(userText) == "" || strings.TrimSpace(assistantText) == "" {
		return fmt.Errorf("record turn: %w", domain.ErrEmptyMessage)
	}
	now := time.Now()
	m.messages = append(m.messages,
		domain.Message{Role: domain.RoleUser, Content: userText, Timestamp: now},
		domain.Message{Role: domain.RoleAssistant, Content: assistantText, Timestamp: now},
	)
	if err := m.store.Save(m.messages); err != nil {
		return fmt.Errorf("persist turn: %w", err)
	}
	return nil
}

// Snapshot returns the conversation in dialogue order for prompt assembly.
// It never fails; a prompt can proceed without history.
func (m *Memory) Snapshot() []domain.Message {
	out := make([]domain.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Merge folds messages from a secondary source into the conversation,
// skipping any whose content already appears. The comparison is content
// only, not (role, content): that matches the historical merge behavior of
// the memory files this store reads, so two roles emitting identical text
// collapse into one entry.
func (m *Memory) Merge(msgs []domain.Message) {
	seen := make(map[string]struct{}, len(m.messages))
	for _, existing := range m.messages {
		seen[existing.Content] = struct{}{}
	}
	for _, msg := range msgs {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		if _, ok := seen[msg.Content]; ok {
			continue
		}
		seen[msg.Content] = struct{}{}
		m.messages = append(m.messages, msg)
	}
}

// Clear empties the conversation and deletes the store file. Idempotent.
func (m *Memory) Clear() error {
	m.messages = nil
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("failed to delete memory file", "error", err)
		return err
	}
	return nil
}
