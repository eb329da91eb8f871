package notify

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/vendorauth/internal/auth/metrics"
)

// DispatcherConfig tunes a Dispatcher.
type DispatcherConfig struct {
	// BufferSize is the queue depth. Notifications beyond it are dropped.
	BufferSize int

	// SendTimeout bounds a single Sink.Send.
	SendTimeout time.Duration

	Logger  *slog.Logger
	Metrics *metrics.Auth
}

// Dispatcher queues notifications in memory and drains them on a single
// goroutine. Notify never blocks.
type Dispatcher struct {
	cfg  DispatcherConfig
	sink Sink

	ch        chan Notification
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewDispatcher starts a dispatcher delivering to sink.
func NewDispatcher(sink Sink, cfg DispatcherConfig) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	d := &Dispatcher{
		cfg:  cfg,
		sink: sink,
		ch:   make(chan Notification, cfg.BufferSize),
		done: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case n := <-d.ch:
			d.send(n)
		case <-d.done:
			for {
				select {
				case n := <-d.ch:
					d.send(n)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) send(n Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
	defer cancel()

	if err := d.sink.Send(ctx, n); err != nil {
		d.cfg.Metrics.Notification(string(n.Kind), "failed")
		d.cfg.Logger.Error("notification delivery failed",
			"kind", n.Kind,
			"user_id", n.UserID,
			"err", err,
		)
		return
	}
	d.cfg.Metrics.Notification(string(n.Kind), "sent")
}

// Notify enqueues n, dropping it if the queue is full or closed.
func (d *Dispatcher) Notify(_ context.Context, n Notification) {
	if d.closed.Load() {
		d.drop(n)
		return
	}

	select {
	case d.ch <- n:
	default:
		d.drop(n)
	}
}

func (d *Dispatcher) drop(n Notification) {
	d.dropped.Add(1)
	d.cfg.Metrics.Notification(string(n.Kind), "dropped")
	d.cfg.Logger.Warn("notification dropped", "kind", n.Kind, "user_id", n.UserID)
}

// Close stops accepting notifications and drains what is queued. It returns
// early with ctx's error if draining outlives ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
	})

	drained := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dropped returns how many notifications were discarded.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}
