// Package history owns the durable on-disk form of a conversation: a JSON
// array of tagged message records at a single path. Loads self-heal from
// corruption; saves are atomic and their failures propagate.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pdfchat/internal/domain"
)

// Store persists a conversation to a single file path.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a store bound to path. The parent directory must exist
// before Save is called; memory.New takes care of that.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the store file path.
func (s *Store) Path() string { return s.path }

// Load reads the store file if present. A missing file is not an error and
// yields an empty conversation. Any read or parse failure moves the corrupt
// file aside to <path>.bak and likewise yields an empty conversation; load
// never propagates an error to the caller.
func (s *Store) Load() []domain.Message {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		s.logger.Warn("memory file unreadable, resetting", "path", s.path, "error", err)
		s.backupAndReset()
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Warn("memory file corrupt, resetting", "path", s.path, "error", err)
		s.backupAndReset()
		return nil
	}
	return DecodeRecords(raw)
}

// backupAndReset renames the store file aside with a .bak suffix so the
// original bytes survive for inspection. An existing .bak is overwritten.
func (s *Store) backupAndReset() {
	backup := s.path + ".bak"
	if err := os.Rename(s.path, backup); err != nil {
		s.logger.Error("failed to move corrupt memory file aside", "path", s.path, "error", err)
		return
	}
	s.logger.Warn("corrupt memory file backed up", "backup", backup)
}

// Save writes the full conversation atomically: serialize to a temp file in
// the store's directory, then rename over the real path. On any failure the
// temp file is removed and the error is returned; failed persistence must be
// visible to the caller.
func (s *Store) Save(msgs []domain.Message) error {
	records := make([]Record, 0, len(msgs))
	for _, m := range msgs {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		records = append(records, EncodeMessage(m))
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".memory-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp memory file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp memory file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp memory file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace memory file: %w", err)
	}
	return nil
}

// Clear deletes the store file if present; absence is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove memory file: %w", err)
	}
	return nil
}
