package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	promadapter "github.com/codewandler/mailboxxy/adapters/prometheus"
	"github.com/codewandler/mailboxxy/core/mailbox"
)

// === Config ===

type config struct {
	Producers   int
	Posts       int
	Capacity    int
	ReportEvery int
	MetricsAddr string
	LogLevel    slog.Level
}

func (c config) validate() error {
	if c.Producers < 1 {
		return fmt.Errorf("producers must be >= 1, got %d", c.Producers)
	}
	if c.Posts < 0 {
		return fmt.Errorf("posts must be >= 0, got %d", c.Posts)
	}
	if c.Capacity < 0 {
		return fmt.Errorf("capacity must be >= 0, got %d", c.Capacity)
	}
	return nil
}

func (c config) bounds() mailbox.Bounds {
	if c.Capacity == 0 {
		return mailbox.Unbounded()
	}
	return mailbox.Bounded(c.Capacity)
}

// === Messages ===

type (
	benchMsg interface{ isBenchMsg() }

	Increment struct{}
	GetValue  struct{ Reply *mailbox.ReplyChannel[int] }
)

func (Increment) isBenchMsg() {}
func (GetValue) isBenchMsg()  {}

func (Increment) MsgType() string { return "Increment" }
func (GetValue) MsgType() string  { return "GetValue" }

func counter(reportEvery int) mailbox.HandlerFunc[benchMsg] {
	return func(mc *mailbox.Context[benchMsg]) error {
		count := 0
		lastTime := time.Now()
		for msg := range mc.Messages() {
			switch m := msg.(type) {
			case Increment:
				count++
				if reportEvery > 0 && count%reportEvery == 0 {
					took := time.Since(lastTime)
					lastTime = time.Now()
					var mu runtime.MemStats
					runtime.ReadMemStats(&mu)
					mc.Log().Info("progress",
						slog.Int("handled", count),
						slog.Int("msgs_per_sec", int(float64(reportEvery)/took.Seconds())),
						slog.Uint64("alloc_mib", mu.Alloc/1024/1024),
					)
				}
			case GetValue:
				_ = m.Reply.Reply(count)
			}
		}
		return nil
	}
}

// === Run ===

type result struct {
	Expected int
	Got      int
	Took     time.Duration
}

func (r result) print(w io.Writer) {
	_, _ = fmt.Fprintf(w, "total runtime: %.3f seconds\n", r.Took.Seconds())
	_, _ = fmt.Fprintf(w, "     expected: %d\n", r.Expected)
	_, _ = fmt.Fprintf(w, "          got: %d\n", r.Got)
	_, _ = fmt.Fprintf(w, "  avg. msgs/s: %d\n", int(float64(r.Expected)/r.Took.Seconds()))
}

var errLostUpdates = errors.New("lost updates")

func run(ctx context.Context, cfg config, log *slog.Logger) (res result, err error) {
	reg := prometheus.NewRegistry()
	metrics := promadapter.NewMailboxMetrics(reg)

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			log.Info("metrics server starting", slog.String("addr", cfg.MetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server error", slog.Any("error", err))
			}
		}()
		defer func() { _ = srv.Shutdown(context.Background()) }()
	}

	h := mailbox.Start(counter(cfg.ReportEvery), mailbox.Options{
		ID:      "bench",
		Bounds:  cfg.bounds(),
		Context: ctx,
		Logger:  log,
		Metrics: metrics,
	})
	defer func() {
		h.Shutdown()
		if werr := h.Wait(context.Background()); werr != nil && err == nil {
			err = werr
		}
	}()

	log.Info("starting",
		slog.Int("producers", cfg.Producers),
		slog.Int("posts", cfg.Posts),
		slog.String("bounds", cfg.bounds().String()),
	)

	startAt := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for range cfg.Producers {
		ph := h.Clone()
		g.Go(func() error {
			defer ph.Release()
			for range cfg.Posts {
				if err := ph.Post(gctx, Increment{}); err != nil {
					return fmt.Errorf("post: %w", err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	got, err := mailbox.Ask(ctx, h, func(rc *mailbox.ReplyChannel[int]) benchMsg {
		return GetValue{Reply: rc}
	})
	if err != nil {
		return res, fmt.Errorf("ask: %w", err)
	}

	res = result{
		Expected: cfg.Producers * cfg.Posts,
		Got:      got,
		Took:     time.Since(startAt),
	}
	if res.Got != res.Expected {
		return res, fmt.Errorf("%w: expected %d, got %d", errLostUpdates, res.Expected, res.Got)
	}
	return res, nil
}
