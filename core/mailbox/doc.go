// Package mailbox provides a lightweight mailbox runtime: many concurrent
// callers share one piece of mutable state by sending messages to a single
// worker that owns it.
//
// A mailbox consists of:
//   - an inbox queue with any number of producers and exactly one consumer
//   - a handler function, run once on one worker, that owns local state and
//     pulls messages with [Context.Dequeue]
//   - handles ([Handle]) used by callers to [Handle.Post] messages or [Ask]
//     for an answer through a one-shot [ReplyChannel]
//
// # Messages
//
// The message type is a closed set of variants, usually a sealed interface.
// Variants that expect an answer carry a *ReplyChannel:
//
//	type Msg interface{ isMsg() }
//
//	type (
//	    Increment struct{}
//	    GetValue  struct{ Reply *mailbox.ReplyChannel[int] }
//	)
//
//	func (Increment) isMsg() {}
//	func (GetValue) isMsg()  {}
//
// # Starting a Mailbox
//
//	h := mailbox.Start(func(mc *mailbox.Context[Msg]) error {
//	    count := 0
//	    for msg := range mc.Messages() {
//	        switch m := msg.(type) {
//	        case Increment:
//	            count++
//	        case GetValue:
//	            _ = m.Reply.Reply(count)
//	        }
//	    }
//	    return nil
//	}, mailbox.Options{Bounds: mailbox.Unbounded()})
//
//	_ = h.Post(ctx, Increment{})
//	n, err := mailbox.Ask(ctx, h, func(rc *mailbox.ReplyChannel[int]) Msg {
//	    return GetValue{Reply: rc}
//	})
//
// # Ordering
//
// Messages posted by one goroutine are handled in the order they were
// posted. There is no ordering across goroutines.
//
// # Lifecycle
//
// [Handle.Shutdown], releasing every handle ([Handle.Release]) or cancelling
// [Options.Context] closes the inbox. Queued messages are still delivered,
// then Dequeue returns [ErrShutdown]. When the handler returns or panics the
// mailbox is dead: leftover messages are dropped, Post and Ask fail with
// [ErrQueueClosed], and asks still waiting fail with [ErrChannelClosed].
//
// There is no supervision and no restart.
package mailbox
