package protocol

import (
	"bufio"
	"fmt"
	"io"
)

// Writer emits reply records. Payload lines are buffered until the status
// line, which always comes last and flushes the record.
type Writer struct {
	out   *bufio.Writer
	trace Tracer
	err   error
}

// NewWriter creates a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{out: bufio.NewWriter(w)}
}

// SetTracer installs a callback for every output line.
func (w *Writer) SetTracer(t Tracer) {
	w.trace = t
}

// WriteLine writes one escaped payload line.
func (w *Writer) WriteLine(text string) {
	w.write(text, Encode(text))
}

// WriteStatus writes the unescaped status line and flushes the reply.
func (w *Writer) WriteStatus(ok bool) error {
	status := Status(ok)
	w.write(status, status)
	if w.err != nil {
		return w.err
	}
	if err := w.out.Flush(); err != nil {
		w.err = fmt.Errorf("failed to flush reply: %w", err)
	}
	return w.err
}

func (w *Writer) write(text, wire string) {
	if w.err != nil {
		return
	}
	if w.trace != nil {
		w.trace("out", text)
	}
	if _, err := w.out.WriteString(wire + "\n"); err != nil {
		w.err = fmt.Errorf("failed to write reply: %w", err)
	}
}
