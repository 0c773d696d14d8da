// internal/ipnlog/ipnlog.go
// Test-mode diagnostic log for IPN verification passes.
package ipnlog

import (
	"fmt"
	"os"
	"time"
)

// Log is an append-only diagnostic log opened for a single verification
// pass and closed before the pass returns. A nil Log, or a Log whose file
// failed to open, swallows every write: logging must never alter an
// outcome.
type Log struct {
	f *os.File
}

// Open appends to the file at path. Open failures are swallowed and yield
// a no-op log.
func Open(path string) *Log {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &Log{}
	}
	return &Log{f: f}
}

// Start writes the entry frame header with a timestamp.
func (l *Log) Start() {
	l.write(fmt.Sprintf("----- IPN %s -----\n", time.Now().Format(time.RFC3339)))
}

// Printf appends a formatted line to the current entry.
func (l *Log) Printf(format string, args ...any) {
	l.write(fmt.Sprintf(format, args...))
}

// End writes the entry frame footer.
func (l *Log) End() {
	l.write("----- end -----\n\n")
}

// Close releases the file handle.
func (l *Log) Close() {
	if l == nil || l.f == nil {
		return
	}
	l.f.Close()
	l.f = nil
}

func (l *Log) write(s string) {
	if l == nil || l.f == nil {
		return
	}
	// write errors are deliberately dropped
	l.f.WriteString(s)
}
