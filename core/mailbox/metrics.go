package mailbox

import "github.com/codewandler/mailboxxy/core/metrics"

// Metrics is the instrumentation surface of the mailbox runtime.
// All methods are called concurrently and must be thread-safe.
type Metrics interface {
	// Producer side
	MessagePosted(msgType string)
	EnqueueWait() metrics.Timer
	AskDuration(msgType string) metrics.Timer
	AskCompleted(msgType string, outcome string)

	// Worker side
	MessageDequeued(msgType string)
	MailboxDepth(mailboxID string, depth int)
	MailboxStopped(mailboxID string, reason string)
}

type nopMetrics struct{}

func (nopMetrics) MessagePosted(string)             {}
func (nopMetrics) EnqueueWait() metrics.Timer       { return metrics.NopTimer() }
func (nopMetrics) AskDuration(string) metrics.Timer { return metrics.NopTimer() }
func (nopMetrics) AskCompleted(string, string)      {}
func (nopMetrics) MessageDequeued(string)           {}
func (nopMetrics) MailboxDepth(string, int)         {}
func (nopMetrics) MailboxStopped(string, string)    {}

// NopMetrics returns a Metrics implementation that records nothing.
func NopMetrics() Metrics { return nopMetrics{} }
