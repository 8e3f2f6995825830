package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/subguard/internal/domain"
	"github.com/MrSnakeDoc/subguard/internal/logger"
	"github.com/MrSnakeDoc/subguard/internal/metrics"
	"github.com/MrSnakeDoc/subguard/internal/store"
)

const (
	// DefaultGCThreshold is how long a cancelled or expired commitment is
	// kept past its renewal date.
	DefaultGCThreshold = 90 * 24 * time.Hour
	// DefaultGCInterval is how often the collector runs.
	DefaultGCInterval = 24 * time.Hour
)

// GarbageCollector prunes old terminal commitments and refreshes the
// per-status gauges.
type GarbageCollector struct {
	store     store.Store
	metrics   metrics.Provider
	logger    logger.Logger
	interval  time.Duration
	threshold time.Duration
	now       func() time.Time
	stopCh    chan struct{}
}

// NewGarbageCollector creates a new garbage collector. Zero durations use the
// defaults; now may be nil.
func NewGarbageCollector(
	st store.Store,
	m metrics.Provider,
	log logger.Logger,
	interval time.Duration,
	threshold time.Duration,
	now func() time.Time,
) *GarbageCollector {
	if interval <= 0 {
		interval = DefaultGCInterval
	}
	if threshold <= 0 {
		threshold = DefaultGCThreshold
	}
	if m == nil {
		m = metrics.New(false, nil)
	}
	if now == nil {
		now = time.Now
	}

	return &GarbageCollector{
		store:     st,
		metrics:   m,
		logger:    log.With(logger.String("component", "gc")),
		interval:  interval,
		threshold: threshold,
		now:       now,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic garbage collection process
func (gc *GarbageCollector) Start(ctx context.Context) error {
	// Run immediately on start
	if _, err := gc.Collect(ctx); err != nil {
		gc.logger.Warn("initial garbage collection failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := gc.Collect(ctx); err != nil {
					gc.logger.Error("garbage collection failed",
						logger.Error(err))
				}
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the garbage collector
func (gc *GarbageCollector) Stop() {
	close(gc.stopCh)
}

// Collect deletes terminal commitments whose renewal date is older than the
// threshold and returns how many were removed. Live commitments are never
// touched.
func (gc *GarbageCollector) Collect(ctx context.Context) (int, error) {
	list, err := gc.store.List(ctx)
	if err != nil {
		return 0, err
	}

	now := gc.now()
	counts := map[domain.Status]int{
		domain.StatusTrial:     0,
		domain.StatusActive:    0,
		domain.StatusCancelled: 0,
		domain.StatusExpired:   0,
	}
	deleted := 0

	for _, c := range list {
		age := now.Sub(c.RenewalAt)
		if !c.Status.Terminal() || age < gc.threshold {
			counts[c.Status]++
			continue
		}

		if err := gc.store.Delete(ctx, c.ID); err != nil {
			gc.logger.Warn("failed to delete commitment",
				logger.String("id", c.ID),
				logger.Error(err))
			counts[c.Status]++
			continue
		}

		gc.logger.Info("garbage collected commitment",
			logger.String("id", c.ID),
			logger.String("service", c.ServiceName),
			logger.String("status", string(c.Status)),
			logger.String("past_renewal", age.String()))
		deleted++
	}

	for status, n := range counts {
		gc.metrics.SetCommitments(string(status), n)
	}

	if deleted > 0 {
		gc.logger.Info("garbage collection completed", logger.Int("deleted", deleted))
	} else {
		gc.logger.Debug("no commitments to garbage collect")
	}
	return deleted, nil
}
