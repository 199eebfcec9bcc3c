package mailbox

import (
	"context"
	"fmt"
	"sync"
)

// ReplyChannel is the sending half of a one-shot reply channel. Messages
// that expect an answer embed it as a field; the handler answers by calling
// Reply exactly once, or Close to give up.
type ReplyChannel[T any] struct {
	mu   sync.Mutex
	done bool
	ch   chan T
}

// ReplyReceiver is the receiving half of a one-shot reply channel.
type ReplyReceiver[T any] struct {
	ch <-chan T
}

// NewReplyChannel creates a connected sender/receiver pair.
func NewReplyChannel[T any]() (*ReplyChannel[T], *ReplyReceiver[T]) {
	ch := make(chan T, 1)
	return &ReplyChannel[T]{ch: ch}, &ReplyReceiver[T]{ch: ch}
}

// Reply delivers v to the receiver. It never blocks. Only the first call
// succeeds; later calls, or a call after Close, return ErrAlreadyReplied.
func (r *ReplyChannel[T]) Reply(v T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done {
		return ErrAlreadyReplied
	}
	r.done = true
	r.ch <- v
	close(r.ch)
	return nil
}

// Close drops the channel without a value. The receiver observes
// ErrChannelClosed. Close after Reply is a no-op.
func (r *ReplyChannel[T]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done {
		return
	}
	r.done = true
	close(r.ch)
}

// Receive waits for the reply. It returns ErrChannelClosed if the sender was
// closed without a value, or the context error if ctx ends first.
func (r *ReplyReceiver[T]) Receive(ctx context.Context) (T, error) {
	return r.receive(ctx, nil)
}

// receive additionally gives up when dead is closed, unless a value is
// already waiting.
func (r *ReplyReceiver[T]) receive(ctx context.Context, dead <-chan struct{}) (T, error) {
	var zero T
	select {
	case v, ok := <-r.ch:
		if !ok {
			return zero, ErrChannelClosed
		}
		return v, nil
	case <-dead:
		// the handler may have replied right before exiting
		select {
		case v, ok := <-r.ch:
			if ok {
				return v, nil
			}
		default:
		}
		return zero, ErrChannelClosed
	case <-ctx.Done():
		return zero, fmt.Errorf("receive reply: %w", ctx.Err())
	}
}
