package mailbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestQueue_fifo(t *testing.T) {
	q := newQueue[int](Unbounded())

	// interleave pushes and pops so the consumer keeps catching up with the
	// producer end of the list
	next := 0
	for i := range 1_000 {
		require.NoError(t, q.enqueue(t.Context(), i))
		if i%3 == 0 {
			v, err := q.dequeue()
			require.NoError(t, err)
			require.Equal(t, next, v)
			next++
		}
	}
	for next < 1_000 {
		v, err := q.dequeue()
		require.NoError(t, err)
		require.Equal(t, next, v)
		next++
	}
	require.Equal(t, 0, q.len())
}

func TestQueue_closeDrains(t *testing.T) {
	q := newQueue[string](Unbounded())
	require.NoError(t, q.enqueue(t.Context(), "a"))
	require.NoError(t, q.enqueue(t.Context(), "b"))

	q.close()
	q.close()
	require.True(t, q.isClosed())
	require.ErrorIs(t, q.enqueue(t.Context(), "c"), ErrQueueClosed)

	v, err := q.dequeue()
	require.NoError(t, err)
	require.Equal(t, "a", v)
	v, err = q.dequeue()
	require.NoError(t, err)
	require.Equal(t, "b", v)

	_, err = q.dequeue()
	require.ErrorIs(t, err, ErrShutdown)
}

func TestQueue_dequeueWakesOnClose(t *testing.T) {
	q := newQueue[int](Unbounded())

	errCh := make(chan error, 1)
	go func() {
		_, err := q.dequeue()
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	q.close()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, ErrShutdown)
	case <-time.After(time.Second):
		t.Fatal("dequeue did not observe close")
	}
}

func TestQueue_boundedDiscardFreesSlots(t *testing.T) {
	q := newQueue[int](Bounded(2))
	require.NoError(t, q.enqueue(t.Context(), 1))
	require.NoError(t, q.enqueue(t.Context(), 2))

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, q.enqueue(ctx, 3), context.DeadlineExceeded)

	require.Equal(t, 2, q.discard())
	require.Equal(t, 0, q.len())

	require.NoError(t, q.enqueue(t.Context(), 4))
	v, ok := q.tryDequeue()
	require.True(t, ok)
	require.Equal(t, 4, v)
}

func TestQueue_boundedConcurrentProducers(t *testing.T) {
	const (
		producers = 4
		posts     = 500
	)
	type item struct{ producer, seq int }
	q := newQueue[item](Bounded(8))

	g, ctx := errgroup.WithContext(t.Context())
	for p := range producers {
		g.Go(func() error {
			for i := range posts {
				if err := q.enqueue(ctx, item{p, i}); err != nil {
					return err
				}
			}
			return nil
		})
	}

	next := make([]int, producers)
	for range producers * posts {
		v, err := q.dequeue()
		require.NoError(t, err)
		require.Equal(t, next[v.producer], v.seq)
		next[v.producer]++
		require.LessOrEqual(t, q.len(), 8)
	}
	require.NoError(t, g.Wait())
	require.Equal(t, 0, q.len())

	q.close()
	_, err := q.dequeue()
	require.ErrorIs(t, err, ErrShutdown)
}

func TestQueue_nilInterfaceItem(t *testing.T) {
	q := newQueue[error](Unbounded())
	require.NoError(t, q.enqueue(t.Context(), nil))

	v, ok := q.tryDequeue()
	require.True(t, ok)
	require.NoError(t, v)
}
