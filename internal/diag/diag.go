// Package diag records the completion core's diagnostic events — parse
// failures, degraded classification, metadata source errors, timeouts,
// and cancellations — as a JSON Lines log, the way the teacher's audit
// package records query history.
package diag

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Diagnostic kinds an Engine can emit (spec.md §7).
const (
	KindParseError         = "ParseError"
	KindClassifierDegraded = "ClassifierDegraded"
	KindMetadataError      = "MetadataError"
	KindTimeout            = "Timeout"
	KindCancelled          = "Cancelled"
)

// Entry is a single diagnostic record.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	BufferID  string    `json:"buffer_id"`
	Kind      string    `json:"kind"`
	Detail    string    `json:"detail"`
}

// Logger writes JSON Lines diagnostic entries to a file.
type Logger struct {
	mu        sync.Mutex
	f         *os.File
	enc       *json.Encoder
	path      string
	maxSizeMB int
}

// New creates a diagnostic Logger. It creates parent directories (0o700) and
// opens the file in append mode (0o600). If maxSizeMB > 0, the file is
// rotated when it exceeds that size.
func New(path string, maxSizeMB int) (*Logger, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("diag: create dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("diag: open file: %w", err)
	}

	return &Logger{
		f:         f,
		enc:       json.NewEncoder(f),
		path:      path,
		maxSizeMB: maxSizeMB,
	}, nil
}

// Log writes an entry as a JSON line. It is safe for concurrent use.
// Calling Log on a nil Logger is a no-op.
func (l *Logger) Log(e Entry) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	_ = l.enc.Encode(e)

	if l.maxSizeMB > 0 {
		l.rotateIfNeeded()
	}
}

// Hook returns a func(kind, detail string) suitable for complete.Engine.Diag,
// binding a fixed buffer_id to every entry logged through it.
func (l *Logger) Hook(bufferID string) func(kind, detail string) {
	return func(kind, detail string) {
		l.Log(Entry{Timestamp: time.Now(), BufferID: bufferID, Kind: kind, Detail: detail})
	}
}

// Close closes the underlying file. Calling Close on a nil Logger is a no-op.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

func (l *Logger) rotateIfNeeded() {
	info, err := l.f.Stat()
	if err != nil {
		return
	}
	if info.Size() < int64(l.maxSizeMB)*1024*1024 {
		return
	}
	l.rotate()
}

func (l *Logger) rotate() {
	_ = l.f.Close()
	_ = os.Rename(l.path, l.path+".1")

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return
	}
	l.f = f
	l.enc = json.NewEncoder(f)
}
