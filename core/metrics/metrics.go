// Package metrics defines the small instrumentation surface the mailbox
// runtime reports through, so that core packages stay independent of any
// metrics backend (see adapters/prometheus).
package metrics

import "time"

// Histogram samples observations, e.g. latencies in seconds.
type Histogram interface {
	Observe(value float64)
}

// Timer measures the duration of an operation. Call ObserveDuration when
// the operation completes, e.g.
//
//	defer m.AskDuration("GetValue").ObserveDuration()
type Timer interface {
	ObserveDuration()
}

type timer struct {
	h     Histogram
	start time.Time
}

// NewTimer starts a Timer that reports the elapsed seconds to h.
func NewTimer(h Histogram) Timer {
	return &timer{h: h, start: time.Now()}
}

func (t *timer) ObserveDuration() {
	t.h.Observe(time.Since(t.start).Seconds())
}
