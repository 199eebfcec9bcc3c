package mailbox

import (
	"context"
	"fmt"
	"sync"

	"ergo.services/ergo/lib"
)

// queue is the inbox: many producers, exactly one consumer. Storage is a
// lock-free MPSC queue; mu only orders pushes against close, so that once
// closedCh is closed no further item can appear.
//
// In bounded mode every queued item holds one token of slots; producers
// block on the slots channel while the queue is full, which hands out free
// space to waiting producers in roughly arrival order.
type queue[M any] struct {
	items lib.QueueMPSC

	mu     sync.RWMutex
	closed bool

	closedCh chan struct{}
	notify   chan struct{}
	slots    chan struct{}
}

func newQueue[M any](b Bounds) *queue[M] {
	q := &queue[M]{
		closedCh: make(chan struct{}),
		notify:   make(chan struct{}, 1),
	}
	if b.IsBounded() {
		q.slots = make(chan struct{}, b.Capacity())
		// slots keep the length within the limit, so Push never rejects
		q.items = lib.NewQueueLimitMPSC(int64(b.Capacity()), false)
	} else {
		q.items = lib.NewQueueMPSC()
	}
	return q
}

// enqueue appends m. Unbounded queues never block; bounded ones block until
// space frees up, the queue closes, or ctx ends.
func (q *queue[M]) enqueue(ctx context.Context, m M) error {
	if q.slots != nil {
		select {
		case <-q.closedCh:
			return ErrQueueClosed
		default:
		}

		select {
		case q.slots <- struct{}{}:
		case <-q.closedCh:
			return ErrQueueClosed
		case <-ctx.Done():
			return fmt.Errorf("enqueue: %w", ctx.Err())
		}
	}

	q.mu.RLock()
	if q.closed || !q.items.Push(m) {
		q.mu.RUnlock()
		q.release(1)
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

// dequeue blocks until an item is available. It returns ErrShutdown once the
// queue is closed and empty. Only one goroutine may call it.
func (q *queue[M]) dequeue() (M, error) {
	for {
		if m, ok := q.tryDequeue(); ok {
			return m, nil
		}
		if q.isClosed() {
			// pushes finished before close; one last look
			if m, ok := q.tryDequeue(); ok {
				return m, nil
			}
			var zero M
			return zero, ErrShutdown
		}

		select {
		case <-q.notify:
		case <-q.closedCh:
		}
	}
}

// tryDequeue is the non-blocking variant of dequeue.
func (q *queue[M]) tryDequeue() (M, bool) {
	v, ok := q.items.Pop()
	if !ok {
		var zero M
		return zero, false
	}
	q.release(1)
	m, _ := v.(M)
	return m, true
}

// close stops intake. Queued items stay available to dequeue.
func (q *queue[M]) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.closedCh)
}

// discard drops every queued item and returns how many there were. Call it
// after close only.
func (q *queue[M]) discard() int {
	n := 0
	for {
		if _, ok := q.items.Pop(); !ok {
			break
		}
		n++
	}
	q.release(n)
	return n
}

func (q *queue[M]) len() int { return int(q.items.Len()) }

func (q *queue[M]) isClosed() bool {
	select {
	case <-q.closedCh:
		return true
	default:
		return false
	}
}

func (q *queue[M]) release(n int) {
	if q.slots == nil {
		return
	}
	for range n {
		<-q.slots
	}
}
