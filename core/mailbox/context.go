package mailbox

import (
	"context"
	"iter"
	"log/slog"
)

// Context is the worker side of a mailbox, handed to the HandlerFunc. It is
// never shared: only the handler goroutine may call Dequeue, which is what
// lets the handler keep its state without locks.
//
// The embedded context.Context is cancelled when Options.Context is done or
// the handler has returned.
type Context[M any] struct {
	context.Context
	mb *mailbox[M]

	// message being handled, reported to OnPanic; cleared on the next
	// Dequeue so it is not retained while the handler waits
	current any
}

// Dequeue blocks until the next message arrives. It returns ErrShutdown once
// the inbox is closed and every queued message has been delivered.
//
// A handler that stops calling Dequeue starves every caller of the mailbox;
// nothing in the runtime detects this.
func (c *Context[M]) Dequeue() (M, error) {
	c.current = nil
	m, err := c.mb.q.dequeue()
	if err != nil {
		return m, err
	}
	c.observe(m)
	return m, nil
}

// TryDequeue returns the next message if one is queued, without blocking.
func (c *Context[M]) TryDequeue() (M, bool) {
	c.current = nil
	m, ok := c.mb.q.tryDequeue()
	if ok {
		c.observe(m)
	}
	return m, ok
}

// Messages yields messages until shutdown.
//
//	for msg := range mc.Messages() {
//	    ...
//	}
func (c *Context[M]) Messages() iter.Seq[M] {
	return func(yield func(M) bool) {
		for {
			m, err := c.Dequeue()
			if err != nil {
				return
			}
			if !yield(m) {
				return
			}
		}
	}
}

// Closed reports whether the inbox stopped accepting messages. Queued
// messages may still be pending.
func (c *Context[M]) Closed() bool { return c.mb.q.isClosed() }

func (c *Context[M]) ID() string        { return c.mb.id }
func (c *Context[M]) Log() *slog.Logger { return c.mb.log }

func (c *Context[M]) observe(m M) {
	c.current = m
	c.mb.metrics.MessageDequeued(msgTypeOf(m))
	c.mb.metrics.MailboxDepth(c.mb.id, c.mb.q.len())
}
