package hal

import (
	"bytes"
	"io"
	"sync"
)

// LogWriter adapts a Logger to io.Writer so line-oriented handlers (slog)
// can write through the platform log sink. Partial lines are held until the
// newline arrives.
type LogWriter struct {
	mu  sync.Mutex
	l   Logger
	buf []byte
}

// NewLogWriter returns a writer that forwards complete lines to l.
func NewLogWriter(l Logger) *LogWriter {
	return &LogWriter{l: l}
}

var _ io.Writer = (*LogWriter)(nil)

func (w *LogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.l.WriteLineBytes(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	if len(w.buf) == 0 {
		w.buf = nil
	}
	return len(p), nil
}

// LogRing is a Logger that keeps the most recent lines in memory.
type LogRing struct {
	mu    sync.Mutex
	lines []string
	next  int
	count int
}

// NewLogRing returns a ring holding up to size lines.
func NewLogRing(size int) *LogRing {
	if size <= 0 {
		size = 1
	}
	return &LogRing{lines: make([]string, size)}
}

func (r *LogRing) WriteLineString(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[r.next] = s
	r.next = (r.next + 1) % len(r.lines)
	if r.count < len(r.lines) {
		r.count++
	}
}

func (r *LogRing) WriteLineBytes(b []byte) { r.WriteLineString(string(b)) }

// Recent returns up to n lines, oldest first.
func (r *LogRing) Recent(n int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n <= 0 || n > r.count {
		n = r.count
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		idx := (r.next - n + i + len(r.lines)) % len(r.lines)
		out[i] = r.lines[idx]
	}
	return out
}
