package protocol

import "fmt"

// PreconditionError reports an argument accessor called out of sequence.
// No byte sequence from the peer can cause one; it always means a handler
// is written incorrectly. Accessors panic with this type so the dispatcher
// can tell a handler defect apart from any other panic.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("protocol precondition violated in %s: %s", e.Op, e.Reason)
}

func violated(op, reason string) {
	panic(&PreconditionError{Op: op, Reason: reason})
}
