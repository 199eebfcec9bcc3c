package mailbox

import (
	"context"
	"encoding/json"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type (
	StateOp[T any] func(*T)

	// State owns a *T inside a mailbox. Every access is a message, so ops
	// never race with each other and need no locking.
	State[T any] struct {
		h    *Handle[stateMsg[T]]
		data *T
		cb   func(*T)
	}

	// stateMsg is the closed message set of a State mailbox.
	stateMsg[T any] interface {
		apply(st *T, cb func(*T))
	}
)

type writeMsg[T any] struct {
	ops   []StateOp[T]
	reply *ReplyChannel[struct{}]
}

func (m writeMsg[T]) apply(st *T, cb func(*T)) {
	for _, op := range m.ops {
		op(st)
	}
	if cb != nil {
		cb(st)
	}
	_ = m.reply.Reply(struct{}{})
}

func (writeMsg[T]) MsgType() string { return "state/write" }

type readMsg[T any] struct {
	run func(*T)
}

func (m readMsg[T]) apply(st *T, _ func(*T)) { m.run(st) }

func (readMsg[T]) MsgType() string { return "state/read" }

// NewState starts a mailbox owning data. cb, if set, runs after every write.
// The state stops when ctx is done or Close is called.
func NewState[T any](ctx context.Context, data *T, cb func(*T)) *State[T] {
	s := &State[T]{data: data, cb: cb}
	s.h = Start(func(mc *Context[stateMsg[T]]) error {
		for msg := range mc.Messages() {
			msg.apply(s.data, s.cb)
		}
		return nil
	}, Options{
		ID:      "state-" + gonanoid.Must(6),
		Context: ctx,
		Bounds:  Bounded(1),
	})
	return s
}

// Process applies ops in one message and waits until they ran.
func (s *State[T]) Process(ops ...StateOp[T]) error {
	_, err := Ask(context.Background(), s.h, func(rc *ReplyChannel[struct{}]) stateMsg[T] {
		return writeMsg[T]{ops: ops, reply: rc}
	})
	return err
}

// Submit enqueues ops and returns a channel closed once they ran, or once
// the state stopped without running them.
func (s *State[T]) Submit(ops ...StateOp[T]) <-chan struct{} {
	done := make(chan struct{})
	tx, rx := NewReplyChannel[struct{}]()
	if err := s.h.Post(context.Background(), writeMsg[T]{ops: ops, reply: tx}); err != nil {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		_, _ = rx.receive(context.Background(), s.h.Done())
	}()
	return done
}

// Read runs op inside the state mailbox and returns its result.
func Read[T any, R any](s *State[T], op func(*T) R) (R, error) {
	return Ask(context.Background(), s.h, func(rc *ReplyChannel[R]) stateMsg[T] {
		return readMsg[T]{run: func(st *T) { _ = rc.Reply(op(st)) }}
	})
}

// ReadAsync is like Read but returns immediately. The channel yields the
// result, or is closed empty if the state stopped first.
func ReadAsync[T any, R any](s *State[T], op func(*T) R) <-chan R {
	out := make(chan R, 1)
	go func() {
		defer close(out)
		if v, err := Read(s, op); err == nil {
			out <- v
		}
	}()
	return out
}

// Close shuts the state mailbox down after pending ops ran and waits for it.
func (s *State[T]) Close() {
	s.h.Shutdown()
	<-s.h.Done()
}

func (s *State[T]) MarshalJSON() ([]byte, error) {
	type dataErr struct {
		data []byte
		err  error
	}
	v, err := Read(s, func(st *T) dataErr {
		d, err := json.Marshal(st)
		return dataErr{d, err}
	})
	if err != nil {
		return nil, err
	}
	return v.data, v.err
}

func (s *State[T]) UnmarshalJSON(data []byte) error {
	var uerr error
	if err := s.Process(func(st *T) { uerr = json.Unmarshal(data, st) }); err != nil {
		return err
	}
	return uerr
}
