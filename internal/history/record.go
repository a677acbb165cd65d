package history

import (
	"encoding/json"
	"strings"
	"time"

	"pdfchat/internal/domain"
)

// Wire tags for message roles. Kept for compatibility with existing memory
// files produced by earlier versions of the assistant.
const (
	tagHuman = "human"
	tagAI    = "ai"
)

// Record is the persisted form of a message. The writer always emits the
// nested data.content shape; the reader additionally accepts a legacy flat
// shape with content at the top level.
type Record struct {
	Type string     `json:"type"`
	Data RecordData `json:"data"`
}

// RecordData carries the message payload.
type RecordData struct {
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// EncodeMessage converts a message to its wire record.
func EncodeMessage(m domain.Message) Record {
	tag := tagAI
	if m.Role == domain.RoleUser {
		tag = tagHuman
	}
	rec := Record{Type: tag, Data: RecordData{Content: m.Content}}
	if !m.Timestamp.IsZero() {
		rec.Data.Timestamp = m.Timestamp.Format(time.RFC3339)
	}
	return rec
}

// looseRecord tolerates both the nested and the legacy flat wire shapes.
type looseRecord struct {
	Type string `json:"type"`
	Data struct {
		Content   string `json:"content"`
		Timestamp string `json:"timestamp"`
	} `json:"data"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// DecodeRecords normalizes raw wire records into messages. Records that are
// not JSON objects, or whose content is empty after trimming, are dropped
// silently; one bad record never aborts the batch. Relative order of the
// surviving records is preserved. A "human" tag maps to the user role; any
// other tag maps to assistant.
func DecodeRecords(raw []json.RawMessage) []domain.Message {
	var msgs []domain.Message
	for _, item := range raw {
		var rec looseRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			continue
		}
		content := strings.TrimSpace(rec.Data.Content)
		ts := rec.Data.Timestamp
		if content == "" {
			content = strings.TrimSpace(rec.Content)
			ts = rec.Timestamp
		}
		if content == "" {
			continue
		}
		role := domain.RoleAssistant
		if rec.Type == tagHuman {
			role = domain.RoleUser
		}
		msg := domain.Message{Role: role, Content: content}
		if ts != "" {
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				msg.Timestamp = t
			}
		}
		msgs = append(msgs, msg)
	}
	return msgs
}
