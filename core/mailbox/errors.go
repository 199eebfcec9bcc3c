package mailbox

import "fmt"

var (
	// ErrQueueClosed is returned by Post and Ask when the inbox no longer
	// accepts messages: the mailbox was shut down, every handle was
	// released, or the handler is dead.
	ErrQueueClosed = &Error{"mailbox queue closed"}

	// ErrChannelClosed is returned by Ask when the reply channel was closed
	// without a value, either explicitly or because the mailbox died first.
	ErrChannelClosed = &Error{"reply channel closed"}

	// ErrShutdown is returned by Context.Dequeue once the inbox is closed and
	// drained.
	ErrShutdown = &Error{"mailbox shut down"}

	// ErrAlreadyReplied is returned by ReplyChannel.Reply on every call after
	// the first one.
	ErrAlreadyReplied = &Error{"already replied"}
)

// Error is the error type of the mailbox sentinels.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

// PanicError is the exit error of a handler that panicked.
type PanicError struct {
	Recovered any
	Stack     []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("mailbox handler panicked: %v", e.Recovered)
}
