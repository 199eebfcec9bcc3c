package mailbox

import "reflect"

// MsgTyper lets a message choose the name it is reported under in metrics
// and logs. Other messages are reported by their Go type.
type MsgTyper interface{ MsgType() string }

func msgTypeOf(x any) string {
	if mt, ok := x.(MsgTyper); ok {
		return mt.MsgType()
	}
	if x == nil {
		return "<nil>"
	}
	return reflect.TypeOf(x).String()
}
