// Package logbuf is the in-memory client log: a bounded ring of recent
// entries with a smaller persisted mirror that survives restarts.
package logbuf

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/hypertask-network/hypertask/internal/store"
)

// Level classifies a log entry.
type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// Buffer size limits.
const (
	maxEntries   = 1000 // in-memory ring
	maxPersisted = 100  // mirrored to the store
)

// Entry is one client log line.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     Level     `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Data      string    `json:"data,omitempty"`
}

// Buffer collects log entries. Safe for concurrent use.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	db      *store.DB // nil disables persistence
	stderr  bool
}

// New creates a log buffer. db may be nil for a memory-only buffer;
// stderr additionally mirrors entries to the standard logger.
func New(db *store.DB, stderr bool) *Buffer {
	return &Buffer{db: db, stderr: stderr}
}

// Log appends an entry. Persistence failures are swallowed; logging
// must never break the operation being logged.
func (b *Buffer) Log(level Level, category, message string, data any) {
	entry := Entry{
		Timestamp: time.Now(),
		Level:     level,
		Category:  category,
		Message:   message,
	}
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			entry.Data = string(raw)
		}
	}

	b.mu.Lock()
	b.entries = append(b.entries, entry)
	if len(b.entries) > maxEntries {
		b.entries = b.entries[len(b.entries)-maxEntries:]
	}
	b.mu.Unlock()

	if b.stderr {
		log.Printf("[%s] %s: %s", strings.ToLower(category), level, message)
	}
	if b.db != nil {
		_ = b.db.InsertLogRecord(store.LogRecord{
			Timestamp: entry.Timestamp.Format(time.RFC3339),
			Level:     string(level),
			Category:  category,
			Message:   message,
			Data:      entry.Data,
		}, maxPersisted)
	}
}

// Convenience wrappers.

func (b *Buffer) Debug(category, message string)   { b.Log(LevelDebug, category, message, nil) }
func (b *Buffer) Info(category, message string)    { b.Log(LevelInfo, category, message, nil) }
func (b *Buffer) Warn(category, message string)    { b.Log(LevelWarn, category, message, nil) }
func (b *Buffer) Error(category, message string)   { b.Log(LevelError, category, message, nil) }
func (b *Buffer) Success(category, message string) { b.Log(LevelSuccess, category, message, nil) }

// Infof logs a formatted info entry.
func (b *Buffer) Infof(category, format string, args ...any) {
	b.Log(LevelInfo, category, fmt.Sprintf(format, args...), nil)
}

// Tail returns the most recent n entries, oldest first.
func (b *Buffer) Tail(n int) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n <= 0 || n > len(b.entries) {
		n = len(b.entries)
	}
	out := make([]Entry, n)
	copy(out, b.entries[len(b.entries)-n:])
	return out
}

// ByLevel returns all buffered entries at the given level, oldest first.
func (b *Buffer) ByLevel(level Level) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Entry
	for _, e := range b.entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// ByCategory returns all buffered entries for a category, oldest first.
func (b *Buffer) ByCategory(category string) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Entry
	for _, e := range b.entries {
		if strings.EqualFold(e.Category, category) {
			out = append(out, e)
		}
	}
	return out
}

// Clear drops the in-memory ring and the persisted mirror.
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.entries = nil
	b.mu.Unlock()
	if b.db != nil {
		_ = b.db.ClearLogRecords()
	}
}

// Export renders the buffered entries as pretty-printed JSON.
func (b *Buffer) Export() ([]byte, error) {
	entries := b.Tail(0)
	if entries == nil {
		entries = []Entry{}
	}
	return json.MarshalIndent(entries, "", "  ")
}

// LoadPersisted returns the mirrored entries from a previous session,
// oldest first.
func (b *Buffer) LoadPersisted() ([]store.LogRecord, error) {
	if b.db == nil {
		return nil, nil
	}
	return b.db.ListLogRecords(maxPersisted)
}
