package mailbox

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// Handle is the caller side of a mailbox. A *Handle is safe for concurrent
// use; Clone hands out additional handles sharing the same inbox.
type Handle[M any] struct {
	mb       *mailbox[M]
	released atomic.Bool
}

// ID returns the mailbox ID shared by all clones.
func (h *Handle[M]) ID() string { return h.mb.id }

// Post enqueues msg without waiting for it to be handled. It blocks only
// when the inbox is bounded and full.
func (h *Handle[M]) Post(ctx context.Context, msg M) error {
	if h.released.Load() {
		return ErrQueueClosed
	}

	tmr := h.mb.metrics.EnqueueWait()
	err := h.mb.q.enqueue(ctx, msg)
	tmr.ObserveDuration()
	if err != nil {
		return err
	}

	h.mb.metrics.MessagePosted(msgTypeOf(msg))
	h.mb.reportDepth()
	return nil
}

// Clone returns a new handle to the same inbox. The inbox stays open until
// every handle is released or Shutdown is called.
func (h *Handle[M]) Clone() *Handle[M] {
	c := &Handle[M]{mb: h.mb}
	if h.released.Load() {
		c.released.Store(true)
		return c
	}
	h.mb.producers.Add(1)
	return c
}

// Release drops this handle. Releasing the last live handle shuts the inbox
// down. Pending asks made through other handles are not affected.
func (h *Handle[M]) Release() {
	if !h.released.CompareAndSwap(false, true) {
		return
	}
	if h.mb.producers.Add(-1) == 0 {
		h.mb.q.close()
	}
}

// Shutdown closes the inbox for every handle. Messages already queued are
// still delivered; afterwards Context.Dequeue returns ErrShutdown.
func (h *Handle[M]) Shutdown() { h.mb.q.close() }

// Done is closed once the handler has returned.
func (h *Handle[M]) Done() <-chan struct{} { return h.mb.done }

// Wait blocks until the handler has returned and reports its exit error.
func (h *Handle[M]) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("wait for mailbox: %w", ctx.Err())
	case <-h.mb.done:
		return h.mb.err
	}
}

// Ask builds a message around a fresh reply channel, posts it and waits for
// the handler's answer.
//
// It returns ErrQueueClosed when the message could not be enqueued and
// ErrChannelClosed when the reply channel was closed without a value or the
// mailbox died before answering. Use a deadline on ctx for timeouts.
func Ask[M any, T any](ctx context.Context, h *Handle[M], build func(rc *ReplyChannel[T]) M) (T, error) {
	var zero T

	tx, rx := NewReplyChannel[T]()
	msg := build(tx)
	mt := msgTypeOf(msg)

	defer h.mb.metrics.AskDuration(mt).ObserveDuration()

	if err := h.Post(ctx, msg); err != nil {
		h.mb.metrics.AskCompleted(mt, askOutcome(err))
		return zero, err
	}

	v, err := rx.receive(ctx, h.mb.done)
	h.mb.metrics.AskCompleted(mt, askOutcome(err))
	return v, err
}

func askOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrQueueClosed):
		return "queue_closed"
	case errors.Is(err, ErrChannelClosed):
		return "channel_closed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
