package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewandler/mailboxxy/core/mailbox"
)

func TestNewMailboxMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMailboxMetrics(reg)

	require.NotNil(t, m)

	m.MessagePosted("Increment")
	m.MessageDequeued("Increment")
	m.EnqueueWait().ObserveDuration()
	m.AskDuration("GetValue").ObserveDuration()
	m.AskCompleted("GetValue", "ok")
	m.MailboxDepth("mb-1", 3)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)

	names := make(map[string]bool)
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}

	assert.True(t, names["mailboxxy_messages_posted_total"])
	assert.True(t, names["mailboxxy_messages_dequeued_total"])
	assert.True(t, names["mailboxxy_enqueue_wait_seconds"])
	assert.True(t, names["mailboxxy_ask_duration_seconds"])
	assert.True(t, names["mailboxxy_asks_total"])
	assert.True(t, names["mailboxxy_mailbox_depth"])
}

func TestMailboxMetrics_stoppedDropsDepth(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMailboxMetrics(reg).(*mailboxMetrics)

	m.MailboxDepth("mb-1", 3)
	require.Equal(t, 1, testutil.CollectAndCount(m.mailboxDepth))

	m.MailboxStopped("mb-1", "stopped")
	require.Equal(t, 0, testutil.CollectAndCount(m.mailboxDepth))
	require.Equal(t, float64(1), testutil.ToFloat64(m.mailboxesStopped.WithLabelValues("stopped")))
}

type (
	counterMsg interface{ isCounterMsg() }
	increment  struct{}
	getValue   struct{ reply *mailbox.ReplyChannel[int] }
)

func (increment) isCounterMsg() {}
func (getValue) isCounterMsg()  {}

func (increment) MsgType() string { return "Increment" }
func (getValue) MsgType() string  { return "GetValue" }

func TestMailboxMetrics_wired(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMailboxMetrics(reg).(*mailboxMetrics)

	h := mailbox.Start(mailbox.Loop(func(mc *mailbox.Context[counterMsg], msg counterMsg) error {
		if gv, ok := msg.(getValue); ok {
			return gv.reply.Reply(0)
		}
		return nil
	}), mailbox.Options{Context: t.Context(), Metrics: m})

	require.NoError(t, h.Post(t.Context(), increment{}))
	require.NoError(t, h.Post(t.Context(), increment{}))
	_, err := mailbox.Ask(t.Context(), h, func(rc *mailbox.ReplyChannel[int]) counterMsg { return getValue{reply: rc} })
	require.NoError(t, err)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.postedTotal.WithLabelValues("Increment")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.dequeuedTotal.WithLabelValues("Increment")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.asksTotal.WithLabelValues("GetValue", "ok")))

	h.Shutdown()
	require.NoError(t, h.Wait(t.Context()))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.mailboxesStopped.WithLabelValues("stopped")))
}
