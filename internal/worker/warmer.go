package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// CatalogSource reloads every cached catalog listing
type CatalogSource interface {
	WarmCatalog(ctx context.Context) (int, error)
}

// WarmRecorder records completed warm runs. The record is shared by every
// instance using the same cache.
type WarmRecorder interface {
	MarkWarmed(ctx context.Context, listings int, at time.Time) error
	LastWarmed(ctx context.Context) (time.Time, error)
}

// CatalogWarmer periodically refreshes the catalog cache from the store
type CatalogWarmer struct {
	source   CatalogSource
	recorder WarmRecorder
	interval time.Duration
	logger   *slog.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewCatalogWarmer creates a new catalog warmer. recorder may be nil.
func NewCatalogWarmer(
	source CatalogSource,
	recorder WarmRecorder,
	interval time.Duration,
	logger *slog.Logger,
) *CatalogWarmer {
	return &CatalogWarmer{
		source:   source,
		recorder: recorder,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start warms the cache once and then on every interval
func (w *CatalogWarmer) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("catalog warmer started", "interval", w.interval)

	go w.run(ctx)
	return nil
}

// Stop stops the background warm loop
func (w *CatalogWarmer) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("catalog warmer stopped")
	return nil
}

// run is the main worker loop
func (w *CatalogWarmer) run(ctx context.Context) {
	defer close(w.doneCh)

	w.warmIfStale(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.warmIfStale(ctx)
		}
	}
}

// warmIfStale skips the run when any instance warmed the cache less than
// half an interval ago
func (w *CatalogWarmer) warmIfStale(ctx context.Context) {
	if w.recorder != nil {
		last, err := w.recorder.LastWarmed(ctx)
		if err != nil {
			w.logger.Warn("failed to read last catalog warm", "error", err)
		} else if !last.IsZero() && time.Since(last) < w.interval/2 {
			w.logger.Debug("catalog recently warmed, skipping", "warmed_at", last)
			return
		}
	}
	w.warm(ctx)
}

func (w *CatalogWarmer) warm(ctx context.Context) {
	startTime := time.Now()

	listings, err := w.source.WarmCatalog(ctx)
	if err != nil {
		w.logger.Error("catalog warm failed", "warmed", listings, "error", err)
		return
	}

	if w.recorder != nil {
		if err := w.recorder.MarkWarmed(ctx, listings, startTime); err != nil {
			w.logger.Warn("failed to record catalog warm", "error", err)
		}
	}

	w.logger.Debug("catalog warmed",
		"duration", time.Since(startTime),
		"listings", listings,
	)
}

// IsRunning returns whether the worker is currently running
func (w *CatalogWarmer) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// RunOnce runs a single warm cycle, even if the cache is fresh
func (w *CatalogWarmer) RunOnce(ctx context.Context) {
	w.warm(ctx)
}
