package mailbox

import "errors"

// Loop builds a HandlerFunc that dequeues messages one by one and passes
// each to handle. It returns nil on shutdown and stops at the first error
// returned by handle. State shared across messages lives in handle's
// closure.
//
//	count := 0
//	h := mailbox.Start(mailbox.Loop(func(mc *mailbox.Context[Msg], msg Msg) error {
//	    switch m := msg.(type) {
//	    case Increment:
//	        count++
//	    case GetValue:
//	        return m.Reply.Reply(count)
//	    }
//	    return nil
//	}), mailbox.Options{})
func Loop[M any](handle func(mc *Context[M], msg M) error) HandlerFunc[M] {
	return func(mc *Context[M]) error {
		for {
			msg, err := mc.Dequeue()
			if errors.Is(err, ErrShutdown) {
				return nil
			}
			if err != nil {
				return err
			}
			if err := handle(mc, msg); err != nil {
				return err
			}
		}
	}
}
