package mailbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type (
	// OnPanic is called from the worker goroutine when the handler panics.
	// msg is the message dequeued last, or nil.
	OnPanic func(recovered any, stack []byte, msg any)

	// HandlerFunc is the body of a mailbox. It owns its local state and
	// drives the inbox by calling Context.Dequeue in a loop. The mailbox dies
	// when it returns.
	HandlerFunc[M any] func(mc *Context[M]) error
)

// Bounds selects the inbox capacity. The zero value is unbounded.
type Bounds struct {
	capacity int
}

// Unbounded returns Bounds for an inbox that never blocks producers.
func Unbounded() Bounds { return Bounds{} }

// Bounded returns Bounds for an inbox holding at most n messages. Values
// below 1 are treated as 1.
func Bounded(n int) Bounds {
	if n < 1 {
		n = 1
	}
	return Bounds{capacity: n}
}

// IsBounded reports whether producers can block on a full inbox.
func (b Bounds) IsBounded() bool { return b.capacity > 0 }

// Capacity is the inbox limit, or 0 when unbounded.
func (b Bounds) Capacity() int { return b.capacity }

func (b Bounds) String() string {
	if !b.IsBounded() {
		return "unbounded"
	}
	return fmt.Sprintf("bounded(%d)", b.capacity)
}

// Options configures a mailbox. The zero value is valid: an unbounded inbox
// with a random ID, logging to slog.Default and no metrics.
type Options struct {
	// ID names the mailbox in logs and metrics. Defaults to a random id.
	ID     string
	Bounds Bounds
	// Context bounds the mailbox lifetime: once it is done the inbox is shut
	// down as if Handle.Shutdown was called.
	Context context.Context
	Logger  *slog.Logger
	OnPanic OnPanic
	Metrics Metrics
	// Spawner runs the worker. Defaults to GoSpawner.
	Spawner Spawner
}

type mailbox[M any] struct {
	id      string
	log     *slog.Logger
	q       *queue[M]
	metrics Metrics
	onPanic OnPanic

	producers atomic.Int64
	done      chan struct{}
	err       error

	// stopMu orders producer-side depth updates against MailboxStopped, so a
	// late Post cannot bring back the series of a dead mailbox.
	stopMu  sync.RWMutex
	stopped bool
}

// Start creates a mailbox, runs handler on exactly one worker and returns
// the first handle to it.
func Start[M any](handler HandlerFunc[M], opt Options) *Handle[M] {
	if opt.ID == "" {
		opt.ID = fmt.Sprintf("mb-%s", gonanoid.Must(6))
	}
	if opt.Context == nil {
		opt.Context = context.Background()
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Metrics == nil {
		opt.Metrics = NopMetrics()
	}
	if opt.Spawner == nil {
		opt.Spawner = GoSpawner
	}

	log := opt.Logger.With(slog.String("mailbox", opt.ID))
	if opt.OnPanic == nil {
		opt.OnPanic = func(recovered any, stack []byte, msg any) {
			log.Error("mailbox handler panicked", slog.Any("recovered", recovered), slog.String("stack", string(stack)), slog.String("msg_type", msgTypeOf(msg)))
		}
	}

	mb := &mailbox[M]{
		id:      opt.ID,
		log:     log,
		q:       newQueue[M](opt.Bounds),
		metrics: opt.Metrics,
		onPanic: opt.OnPanic,
		done:    make(chan struct{}),
	}
	mb.producers.Store(1)

	ctx, cancel := context.WithCancel(opt.Context)
	stopAfter := context.AfterFunc(ctx, mb.q.close)
	mc := &Context[M]{Context: ctx, mb: mb}

	log.Debug("mailbox starting", slog.String("bounds", opt.Bounds.String()))

	opt.Spawner.Spawn(func() {
		defer cancel()
		defer stopAfter()
		mb.run(handler, mc)
	})

	return &Handle[M]{mb: mb}
}

func (mb *mailbox[M]) run(handler HandlerFunc[M], mc *Context[M]) {
	defer close(mb.done)

	err := mb.invoke(handler, mc)
	mc.current = nil
	if errors.Is(err, ErrShutdown) {
		err = nil
	}

	mb.q.close()
	dropped := mb.q.discard()
	mb.err = err

	reason := "stopped"
	var pe *PanicError
	switch {
	case errors.As(err, &pe):
		reason = "panic"
	case err != nil:
		reason = "error"
		mb.log.Warn("mailbox handler failed", slog.Any("error", err))
	}
	mb.stopMu.Lock()
	mb.stopped = true
	mb.metrics.MailboxStopped(mb.id, reason)
	mb.stopMu.Unlock()
	mb.log.Debug("mailbox stopped", slog.String("reason", reason), slog.Int("dropped", dropped))
}

// reportDepth publishes the inbox depth from a producer unless the mailbox
// already stopped.
func (mb *mailbox[M]) reportDepth() {
	mb.stopMu.RLock()
	defer mb.stopMu.RUnlock()
	if mb.stopped {
		return
	}
	mb.metrics.MailboxDepth(mb.id, mb.q.len())
}

// invoke runs the handler and turns a panic into a *PanicError.
func (mb *mailbox[M]) invoke(handler HandlerFunc[M], mc *Context[M]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			mb.onPanic(r, stack, mc.current)
			err = &PanicError{Recovered: r, Stack: stack}
		}
	}()
	return handler(mc)
}
