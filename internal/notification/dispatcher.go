package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gamebuddy-app/internal/config"
	"github.com/gamebuddy-app/internal/metrics"
)

var (
	ErrQueueFull = errors.New("notification queue is full")
	ErrStopped   = errors.New("notification dispatcher stopped")

	// ErrRecipientOffline marks a delivery that cannot succeed on retry
	ErrRecipientOffline = errors.New("notification recipient offline")
)

// Dispatcher queues notifications and delivers them to a sink from a pool
// of worker goroutines. Send never blocks the caller.
type Dispatcher struct {
	sink    Sink
	config  *config.NotificationConfig
	logger  *slog.Logger
	metrics *metrics.Metrics

	queue   chan Notification
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.RWMutex
	running bool
	stopped bool
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(sink Sink, cfg *config.NotificationConfig, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sink:   sink,
		config: cfg,
		logger: logger,
		queue:  make(chan Notification, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}
}

// SetMetrics sets the metrics recorder
func (d *Dispatcher) SetMetrics(m *metrics.Metrics) {
	d.metrics = m
}

// Start launches the workers
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running || d.stopped {
		return
	}
	d.running = true

	for i := 0; i < d.config.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	d.logger.Info("notification dispatcher started", "workers", d.config.Workers, "queue_size", d.config.QueueSize)
}

// Stop stops accepting notifications and drains the queue
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.stopCh)
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info("notification dispatcher stopped")
}

// Send enqueues n for delivery
func (d *Dispatcher) Send(_ context.Context, n Notification) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}

	select {
	case d.queue <- n:
		d.metrics.Notification(metrics.ResultQueued)
		return nil
	default:
		d.metrics.Notification(metrics.ResultDropped)
		return ErrQueueFull
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for n := range d.queue {
		if err := d.deliver(n); err != nil {
			if errors.Is(err, ErrRecipientOffline) {
				d.metrics.Notification(metrics.ResultDropped)
				d.logger.Debug("notification recipient offline", "gamer_id", n.GamerID, "kind", n.Kind)
				continue
			}
			d.metrics.Notification(metrics.ResultFailed)
			d.logger.Warn("notification delivery failed",
				"gamer_id", n.GamerID,
				"kind", n.Kind,
				"error", err,
			)
			continue
		}
		d.metrics.Notification(metrics.ResultDelivered)
	}
}

func (d *Dispatcher) deliver(n Notification) error {
	return Retry(d.config.RetryAttempts, d.config.RetryDelay, d.stopCh, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), d.config.SendTimeout)
		defer cancel()
		return d.sink.Deliver(ctx, n)
	})
}

// Retry runs fn up to attempts times, sleeping delay between failures. A
// closed stop channel skips the remaining waits but still makes the attempts
// so a draining queue is not lost. ErrRecipientOffline ends the loop at once.
func Retry(attempts int, delay time.Duration, stop <-chan struct{}, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if errors.Is(err, ErrRecipientOffline) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-stop:
		}
	}
	return fmt.Errorf("after %d attempts: %w", attempts, err)
}
