// Package notify delivers notifications to the transport service without blocking the
// callers that raise them.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// ErrFanoutStopped is returned by Notify once Run has returned.
var ErrFanoutStopped = errors.New("notification fanout stopped")

// Transport performs the actual delivery of one notification.
type Transport interface {
	Send(ctx context.Context, n ports.Notification) error
}

// Stats counts what happened to accepted notifications.
type Stats struct {
	Sent     int64
	Failed   int64
	Overflow int64
	Dropped  int64
}

// Fanout implements ports.Notifier with a buffered queue drained by worker goroutines.
// When the queue is full the enqueue is handed to a goroutine instead of blocking the
// caller or dropping the notification.
type Fanout struct {
	transport   Transport
	queue       chan ports.Notification
	workers     int
	sendTimeout time.Duration
	logger      *slog.Logger

	// mu orders enqueues against shutdown: Notify holds it shared, Run exclusively
	// while closing done.
	mu      sync.RWMutex
	done    chan struct{}
	stopped bool
	pending sync.WaitGroup

	sent, failed, overflow, dropped atomic.Int64
}

func NewFanout(transport Transport, workers, queueSize int, sendTimeout time.Duration, logger *slog.Logger) (*Fanout, error) {
	if transport == nil {
		return nil, errs.NewValueIsRequiredError("transport")
	}
	if workers <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("workers", workers, 1, "unbounded")
	}
	if queueSize < 0 {
		return nil, errs.NewValueIsOutOfRangeError("queueSize", queueSize, 0, "unbounded")
	}
	if sendTimeout <= 0 {
		sendTimeout = 5 * time.Second
	}

	return &Fanout{
		transport:   transport,
		queue:       make(chan ports.Notification, queueSize),
		workers:     workers,
		sendTimeout: sendTimeout,
		logger:      logger.With("component", "NotificationFanout"),
		done:        make(chan struct{}),
	}, nil
}

// Notify enqueues n. It never waits for delivery.
func (f *Fanout) Notify(_ context.Context, n ports.Notification) error {
	if n.Recipient == "" {
		return errs.NewValueIsRequiredError("recipient")
	}
	if n.TemplateKey == "" {
		return errs.NewValueIsRequiredError("templateKey")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.stopped {
		return ErrFanoutStopped
	}

	select {
	case f.queue <- n:
		return nil
	default:
	}

	f.overflow.Add(1)
	f.pending.Add(1)
	go func() {
		defer f.pending.Done()
		select {
		case f.queue <- n:
		case <-f.done:
			f.dropped.Add(1)
			f.logger.Warn("notification dropped on shutdown", "template", n.TemplateKey, "channel", n.Channel)
		}
	}()
	return nil
}

// Run drains the queue until ctx is cancelled, then flushes what is already queued
// and returns.
func (f *Fanout) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < f.workers; i++ {
		g.Go(func() error {
			f.work(gctx)
			return nil
		})
	}
	err := g.Wait()

	f.mu.Lock()
	if !f.stopped {
		f.stopped = true
		close(f.done)
	}
	f.mu.Unlock()

	f.pending.Wait()
	f.flush()
	return err
}

func (f *Fanout) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-f.queue:
			f.deliver(ctx, n)
		}
	}
}

func (f *Fanout) flush() {
	for {
		select {
		case n := <-f.queue:
			f.deliver(context.Background(), n)
		default:
			return
		}
	}
}

func (f *Fanout) deliver(ctx context.Context, n ports.Notification) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.sendTimeout)
	defer cancel()

	if err := f.transport.Send(sendCtx, n); err != nil {
		f.failed.Add(1)
		f.logger.Error("notification delivery failed",
			"template", n.TemplateKey, "channel", n.Channel, "error", err)
		return
	}
	f.sent.Add(1)
}

func (f *Fanout) Stats() Stats {
	return Stats{
		Sent:     f.sent.Load(),
		Failed:   f.failed.Load(),
		Overflow: f.overflow.Load(),
		Dropped:  f.dropped.Load(),
	}
}
