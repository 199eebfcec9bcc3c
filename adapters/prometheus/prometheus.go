// Package prometheus implements mailbox.Metrics on top of the Prometheus
// client library.
//
//	reg := prometheus.NewRegistry()
//	h := mailbox.Start(handler, mailbox.Options{
//	    Metrics: promadapter.NewMailboxMetrics(reg),
//	})
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/mailboxxy/core/metrics"
)

func newTimer(h prometheus.Observer) metrics.Timer {
	return metrics.NewTimer(h)
}

// Default histogram buckets for latency metrics (in seconds).
var defaultBuckets = []float64{
	.00001, .00005, .0001, .0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5,
}
