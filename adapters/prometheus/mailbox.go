package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/mailboxxy/core/mailbox"
	"github.com/codewandler/mailboxxy/core/metrics"
)

// mailboxMetrics implements mailbox.Metrics using Prometheus.
type mailboxMetrics struct {
	postedTotal      *prometheus.CounterVec
	dequeuedTotal    *prometheus.CounterVec
	enqueueWait      prometheus.Histogram
	askDuration      *prometheus.HistogramVec
	asksTotal        *prometheus.CounterVec
	mailboxDepth     *prometheus.GaugeVec
	mailboxesStopped *prometheus.CounterVec
}

// NewMailboxMetrics creates the mailbox metrics and registers them with reg.
// Register one instance per registry and share it between mailboxes.
func NewMailboxMetrics(reg prometheus.Registerer) mailbox.Metrics {
	m := &mailboxMetrics{
		postedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mailboxxy_messages_posted_total",
			Help: "Total number of messages enqueued",
		}, []string{"message_type"}),

		dequeuedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mailboxxy_messages_dequeued_total",
			Help: "Total number of messages handed to handlers",
		}, []string{"message_type"}),

		enqueueWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mailboxxy_enqueue_wait_seconds",
			Help:    "Time spent enqueueing, including waiting on a full bounded inbox",
			Buckets: defaultBuckets,
		}),

		askDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mailboxxy_ask_duration_seconds",
			Help:    "Ask round trip time in seconds",
			Buckets: defaultBuckets,
		}, []string{"message_type"}),

		asksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mailboxxy_asks_total",
			Help: "Total number of asks by outcome",
		}, []string{"message_type", "outcome"}),

		mailboxDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mailboxxy_mailbox_depth",
			Help: "Current number of queued messages",
		}, []string{"mailbox_id"}),

		mailboxesStopped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mailboxxy_mailboxes_stopped_total",
			Help: "Total number of mailboxes whose handler returned",
		}, []string{"reason"}),
	}

	reg.MustRegister(
		m.postedTotal,
		m.dequeuedTotal,
		m.enqueueWait,
		m.askDuration,
		m.asksTotal,
		m.mailboxDepth,
		m.mailboxesStopped,
	)

	return m
}

func (m *mailboxMetrics) MessagePosted(msgType string) {
	m.postedTotal.WithLabelValues(msgType).Inc()
}

func (m *mailboxMetrics) EnqueueWait() metrics.Timer {
	return newTimer(m.enqueueWait)
}

func (m *mailboxMetrics) AskDuration(msgType string) metrics.Timer {
	return newTimer(m.askDuration.WithLabelValues(msgType))
}

func (m *mailboxMetrics) AskCompleted(msgType string, outcome string) {
	m.asksTotal.WithLabelValues(msgType, outcome).Inc()
}

func (m *mailboxMetrics) MessageDequeued(msgType string) {
	m.dequeuedTotal.WithLabelValues(msgType).Inc()
}

func (m *mailboxMetrics) MailboxDepth(mailboxID string, depth int) {
	m.mailboxDepth.WithLabelValues(mailboxID).Set(float64(depth))
}

// MailboxStopped also drops the depth series of the dead mailbox.
func (m *mailboxMetrics) MailboxStopped(mailboxID string, reason string) {
	m.mailboxesStopped.WithLabelValues(reason).Inc()
	m.mailboxDepth.DeleteLabelValues(mailboxID)
}

var _ mailbox.Metrics = (*mailboxMetrics)(nil)
