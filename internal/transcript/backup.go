// Package transcript maintains a redundant insurance copy of completed
// turns, separate from the authoritative memory file. Entries use the flat
// wire shape and the file is rewritten in full per append; fine at
// interactive transcript volumes, not a true append-only log.
package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Entry is one backed-up message.
type Entry struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Backup appends turns to a JSON array file.
type Backup struct {
	path string
}

// NewBackup creates a backup log bound to path.
func NewBackup(path string) *Backup { return &Backup{path: path} }

// Path returns the backup file path.
func (b *Backup) Path() string { return b.path }

// AppendTurn reads the existing array, appends the human and ai entries for
// one turn, and writes the whole array back. The caller treats failures as
// non-critical; this file is never the source of truth.
func (b *Backup) AppendTurn(userText, assistantText string) error {
	var entries []Entry
	data, err := os.ReadFile(b.path)
	if err == nil {
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("decode backup file: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read backup file: %w", err)
	}

	now := time.Now().Format(time.RFC3339)
	entries = append(entries,
		Entry{Type: "human", Content: userText, Timestamp: now},
		Entry{Type: "ai", Content: assistantText, Timestamp: now},
	)

	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode backup file: %w", err)
	}
	if err := os.WriteFile(b.path, out, 0o644); err != nil {
		return fmt.Errorf("write backup file: %w", err)
	}
	return nil
}

// Load returns all backed-up entries, or nil when the file is missing.
func (b *Backup) Load() ([]Entry, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
