/*
audit.go - Append-only error/audit stream (errors.ndjson)

One jsoniter-encoded record per line, never rewritten. Appending is fully
best-effort: the stream must never block or fail the primary request path,
so every I/O error here is swallowed after a log line.
*/
package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditLog appends structured failure records to errors.ndjson.
type AuditLog struct {
	mu   sync.Mutex
	path string
}

// NewAuditLog creates an audit log inside the given data directory.
func NewAuditLog(dataDir string) *AuditLog {
	return &AuditLog{path: filepath.Join(dataDir, "errors.ndjson")}
}

// Path returns the stream's location (used by tests and ops tooling).
func (l *AuditLog) Path() string { return l.path }

// AppendError writes one record as a single line. Prior entries are never
// rewritten. Failures are swallowed.
func (l *AuditLog) AppendError(_ context.Context, record map[string]any) {
	if record == nil {
		return
	}
	if _, ok := record["id"]; !ok {
		record["id"] = uuid.NewString()
	}
	if _, ok := record["ts"]; !ok {
		record["ts"] = time.Now().Format(time.RFC3339)
	}

	line, err := json.Marshal(record)
	if err != nil {
		logSwallowed(err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		logSwallowed(err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		logSwallowed(err)
	}
}

func logSwallowed(err error) {
	// Logging failure must not surface to the caller.
	// Keep a trace on stderr for the operator.
	os.Stderr.WriteString("[audit] append failed: " + err.Error() + "\n")
}
