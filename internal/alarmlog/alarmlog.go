// Package alarmlog renders and appends the canonical monitoring log lines.
package alarmlog

import (
	"fmt"
	"os"

	"github.com/setevik/hostwatch/internal/format"
	"github.com/setevik/hostwatch/internal/metric"
)

// timeLayout is the fixed second-resolution local-time stamp used in log lines.
const timeLayout = "2006-01-02 15:04:05"

// FormatLine renders one classification as the canonical log line, without
// the trailing newline:
//
//	[2026-02-19 14:32:05] Host: myhost | LEVEL: HARD_ALARM | INFO: Disk Usage (%) (/) | VALUE: 96.7 | HARD_LIMIT: 95.0
//
// Field order and labels are a wire contract; downstream consumers parse
// the line exactly as rendered here. An absent hard limit renders as "-".
// Every classification is rendered once per run, OK results included, so
// the log file is a complete audit trail.
func FormatLine(c metric.Classification) string {
	s := c.Sample
	return fmt.Sprintf("[%s] Host: %s | LEVEL: %s | INFO: %s | VALUE: %s | HARD_LIMIT: %s",
		s.Time.Format(timeLayout),
		s.Host,
		c.Severity,
		s.Info(),
		format.Value(s.Value),
		format.Limit(s.Hard),
	)
}

// Sink receives rendered log lines. The file-backed implementation is the
// production sink; tests substitute in-memory fakes.
type Sink interface {
	Append(line string) error
}

// File is an append-only log file sink. Each Append opens, writes one line
// and closes, relying on O_APPEND semantics for atomicity so concurrent
// invocations cannot interleave partial lines.
type File struct {
	path string
}

// NewFile creates a sink appending to the given path. The file is created
// on first append if it does not exist; it is never truncated or rewritten.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the log file location.
func (f *File) Path() string {
	return f.path
}

// Append writes line plus a newline to the log file.
func (f *File) Append(line string) error {
	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", f.path, err)
	}
	defer file.Close()

	if _, err := file.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("appending to log file %s: %w", f.path, err)
	}
	return nil
}
