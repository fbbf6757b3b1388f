// Package audit persists a per-event trail of everything that mutates a
// table: who acted, what it cost, and the full stack picture afterwards.
// The primary sink is an append-only JSONL file, one per table lifetime;
// a Postgres sink can mirror the same entries when configured.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Entry is one audited mutation.
type Entry struct {
	At        time.Time      `json:"at"`
	TableID   string         `json:"tableId"`
	HandID    string         `json:"handId,omitempty"`
	Stage     string         `json:"stage"`
	Event     string         `json:"event"`
	SeatID    string         `json:"seatId,omitempty"`
	Action    string         `json:"action,omitempty"`
	Amount    int            `json:"amount,omitempty"`
	Pot       int            `json:"pot"`
	Stack     int            `json:"stack,omitempty"`
	HoleCards []string       `json:"holeCards,omitempty"`
	Stacks    map[string]int `json:"stacks"`
}

// Log is an append-only JSONL audit file.
type Log struct {
	mu     sync.Mutex
	file   *os.File
	enc    *json.Encoder
	logger *zap.Logger
}

// OpenLog opens (or creates) the audit file for one table lifetime under
// dir.
func OpenLog(dir, tableID string, logger *zap.Logger) (*Log, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("table-%s.jsonl", tableID))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return &Log{file: file, enc: json.NewEncoder(file), logger: logger}, nil
}

// Append writes one entry. Audit failures must never stall the table, so
// errors are logged and swallowed.
func (l *Log) Append(entry Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enc.Encode(entry); err != nil {
		l.logger.Error("audit append failed", zap.String("table", entry.TableID), zap.Error(err))
	}
}

// Close flushes and closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// Path returns the file the log writes to.
func (l *Log) Path() string {
	return l.file.Name()
}
