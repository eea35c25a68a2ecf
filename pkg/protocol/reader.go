package protocol

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	helperlog "github.com/holon-run/mozhelper/pkg/log"
)

// ParentArgument introduces the window id that owns a dialog.
const ParentArgument = "PARENT"

// Tracer receives every line crossing the wire, already decoded for input
// and not yet encoded for output. Direction is "in" or "out".
type Tracer func(direction, line string)

// Reader decodes lines from the peer and collects the argument block of the
// command currently being handled.
//
// Only one argument block exists at a time. It is filled by ReadArguments,
// drained by Argument and IsArgument, and closed by AllArgumentsUsed, which
// every handler must call exactly once after a successful ReadArguments.
type Reader struct {
	in      *bufio.Reader
	args    []string
	pending bool
	eof     bool
	trace   Tracer
}

// NewReader creates a Reader on r.
func NewReader(r io.Reader) *Reader {
	return &Reader{in: bufio.NewReader(r)}
}

// SetTracer installs a callback for every decoded input line.
func (r *Reader) SetTracer(t Tracer) {
	r.trace = t
}

// ReadLine reads and decodes one line. Lines may end in "\n" or "\r\n". A
// line without a terminating newline is treated as end of stream, as is any
// read error.
func (r *Reader) ReadLine() (string, error) {
	raw, err := r.readRaw()
	if err != nil {
		return "", err
	}
	line := Decode(raw)
	if r.trace != nil {
		r.trace("in", line)
	}
	return line, nil
}

func (r *Reader) readRaw() (string, error) {
	raw, err := r.in.ReadString('\n')
	if err != nil {
		r.eof = true
		if !errors.Is(err, io.EOF) {
			helperlog.Debug("input stream failed", "error", err)
		}
		return "", io.EOF
	}
	raw = strings.TrimSuffix(raw, "\n")
	return strings.TrimSuffix(raw, "\r"), nil
}

// ReadArguments collects lines up to the sentinel. It returns true when the
// sentinel was seen after at least min arguments. On a short block the
// arguments are discarded; on end of stream EOF reports true afterwards.
func (r *Reader) ReadArguments(min int) bool {
	if len(r.args) != 0 || r.pending {
		violated("ReadArguments", "previous argument block was not finalized")
	}
	for {
		raw, err := r.readRaw()
		if err != nil {
			r.args = nil
			return false
		}
		if raw == Sentinel {
			if r.trace != nil {
				r.trace("in", Sentinel)
			}
			if len(r.args) >= min {
				r.pending = true
				return true
			}
			helperlog.Warn("not enough arguments", "got", len(r.args), "want", min)
			r.args = nil
			return false
		}
		line := Decode(raw)
		if r.trace != nil {
			r.trace("in", line)
		}
		r.args = append(r.args, line)
	}
}

// Argument removes and returns the first buffered argument.
func (r *Reader) Argument() string {
	if !r.pending {
		violated("Argument", "no argument block is pending")
	}
	if len(r.args) == 0 {
		violated("Argument", "argument block is empty")
	}
	arg := r.args[0]
	r.args = r.args[1:]
	return arg
}

// IsArgument consumes the first buffered argument if it equals expected.
func (r *Reader) IsArgument(expected string) bool {
	if len(r.args) == 0 || r.args[0] != expected {
		return false
	}
	r.args = r.args[1:]
	return true
}

// ArgumentParent consumes an optional "PARENT <id>" pair and returns the
// window id, or 0 when the pair is absent or the id does not parse.
func (r *Reader) ArgumentParent() int64 {
	if !r.IsArgument(ParentArgument) {
		return 0
	}
	if len(r.args) == 0 {
		helperlog.Warn("PARENT given without a window id")
		return 0
	}
	id, err := strconv.ParseInt(strings.TrimSpace(r.Argument()), 0, 64)
	if err != nil {
		return 0
	}
	return id
}

// AllArgumentsUsed closes the pending argument block. It returns false and
// drops the leftovers if the handler did not consume every argument.
func (r *Reader) AllArgumentsUsed() bool {
	if !r.pending {
		violated("AllArgumentsUsed", "no argument block is pending")
	}
	r.pending = false
	if len(r.args) == 0 {
		return true
	}
	helperlog.Warn("unused arguments", "arguments", strings.Join(r.args, " "))
	r.args = nil
	return false
}

// EOF reports whether the input stream has ended.
func (r *Reader) EOF() bool {
	return r.eof
}

// Pending reports whether an argument block awaits AllArgumentsUsed.
func (r *Reader) Pending() bool {
	return r.pending
}

// Len returns the number of buffered arguments.
func (r *Reader) Len() int {
	return len(r.args)
}

// Reset drops the argument block and read state after a handler defect.
func (r *Reader) Reset() {
	r.args = nil
	r.pending = false
}
