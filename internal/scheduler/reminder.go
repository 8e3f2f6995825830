package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/subguard/internal/alarm"
	"github.com/MrSnakeDoc/subguard/internal/domain"
	"github.com/MrSnakeDoc/subguard/internal/logger"
	"github.com/MrSnakeDoc/subguard/internal/metrics"
	"github.com/MrSnakeDoc/subguard/internal/notify"
	"github.com/MrSnakeDoc/subguard/internal/store"
)

const (
	// AlarmPrefix marks timers that carry a commitment id.
	AlarmPrefix = "remind_"
	// DefaultLead is how long before renewal the reminder fires.
	DefaultLead = 24 * time.Hour
	// DefaultSweepInterval is the safety sweep period.
	DefaultSweepInterval = time.Hour
)

// AlarmName derives the timer key for a commitment.
func AlarmName(id string) string {
	return AlarmPrefix + id
}

// ParseAlarmName extracts the commitment id from a timer key.
func ParseAlarmName(name string) (string, bool) {
	id, ok := strings.CutPrefix(name, AlarmPrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// ReminderOptions tunes the scheduler. Zero values use the defaults.
type ReminderOptions struct {
	Lead          time.Duration
	SweepInterval time.Duration
	Now           func() time.Time
}

// Reminder arms one renewal reminder per commitment and runs the periodic
// sweep that catches whatever the direct timers missed.
type Reminder struct {
	store    store.Store
	timers   alarm.Timers
	notifier notify.Notifier
	metrics  metrics.Provider
	logger   logger.Logger

	lead     time.Duration
	interval time.Duration
	now      func() time.Time

	// mu serialises Fire and Sweep so the sent flag is read and written
	// without another delivery path in between.
	mu sync.Mutex

	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewReminder creates a reminder scheduler. manualTrigger may be nil.
func NewReminder(
	st store.Store,
	timers alarm.Timers,
	notifier notify.Notifier,
	m metrics.Provider,
	log logger.Logger,
	opts ReminderOptions,
	manualTrigger chan struct{},
) *Reminder {
	if opts.Lead <= 0 {
		opts.Lead = DefaultLead
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if m == nil {
		m = metrics.New(false, nil)
	}

	return &Reminder{
		store:         st,
		timers:        timers,
		notifier:      notifier,
		metrics:       m,
		logger:        log.With(logger.String("component", "reminder")),
		lead:          opts.Lead,
		interval:      opts.SweepInterval,
		now:           opts.Now,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins timer delivery, re-arms every live commitment, sweeps once
// and then sweeps on every interval.
func (r *Reminder) Start(ctx context.Context) error {
	if err := r.timers.Start(ctx, r.Fire); err != nil {
		return err
	}

	armed := r.Recover(ctx)
	r.logger.Info("reminders recovered", logger.Int("armed", armed))

	r.Sweep(ctx)

	ticker := time.NewTicker(r.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Sweep(ctx)
			case <-r.manualTrigger:
				r.logger.Info("manual sweep triggered")
				r.Sweep(ctx)
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the sweep loop and timer delivery.
func (r *Reminder) Stop() {
	close(r.stopCh)
	r.timers.Stop()
}

// Arm schedules the reminder for c at renewal minus lead. When that instant
// has already passed nothing is armed and any earlier timer is dropped; the
// sweep is then the only path to a notification. It reports whether a timer
// is now pending.
func (r *Reminder) Arm(ctx context.Context, c *domain.Commitment) (bool, error) {
	name := AlarmName(c.ID)
	fireAt := c.RenewalAt.Add(-r.lead)

	if !fireAt.After(r.now()) {
		if err := r.timers.Cancel(ctx, name); err != nil {
			return false, err
		}
		return false, nil
	}
	if err := r.timers.Arm(ctx, name, fireAt); err != nil {
		return false, err
	}

	r.logger.Debug("reminder armed",
		logger.String("id", c.ID),
		logger.String("service", c.ServiceName),
		logger.Time("fire_at", fireAt))
	return true, nil
}

// Disarm drops the pending reminder of a commitment.
func (r *Reminder) Disarm(ctx context.Context, id string) error {
	return r.timers.Cancel(ctx, AlarmName(id))
}

// Recover re-arms every commitment that is not cancelled or expired. Timers
// are disposable; the store is the source of truth.
func (r *Reminder) Recover(ctx context.Context) int {
	list, err := r.store.List(ctx)
	if err != nil {
		r.logger.Error("failed to list commitments for recovery", logger.Error(err))
		return 0
	}

	armed := 0
	for _, c := range list {
		if c.Status.Terminal() {
			continue
		}
		ok, err := r.Arm(ctx, c)
		if err != nil {
			r.logger.Error("failed to re-arm reminder",
				logger.String("id", c.ID),
				logger.Error(err))
			continue
		}
		if ok {
			armed++
		}
	}
	return armed
}

// Fire handles a delivered timer. Unknown names, deleted commitments,
// terminal commitments and reminders already sent are silent no-ops.
func (r *Reminder) Fire(ctx context.Context, name string) {
	id, ok := ParseAlarmName(name)
	if !ok {
		r.logger.Warn("ignoring unknown alarm", logger.String("alarm", name))
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			r.logger.Debug("reminder fired for deleted commitment", logger.String("id", id))
			return
		}
		r.logger.Error("failed to load commitment for reminder",
			logger.String("id", id),
			logger.Error(err))
		return
	}
	// terminal transitions disarm; a timer that fired anyway stays silent
	if c.Status.Terminal() || c.ReminderSent {
		return
	}

	r.deliver(ctx, c, metrics.PathDirect)
}

// Sweep is the periodic safety net: it notifies every live commitment
// renewing within the lead window that has not been reminded yet, and turns
// trials whose end date has passed into active subscriptions. Running it
// twice in a row changes nothing the second time.
func (r *Reminder) Sweep(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.store.List(ctx)
	if err != nil {
		r.logger.Error("sweep failed to list commitments", logger.Error(err))
		return
	}

	now := r.now()
	window := r.lead.Hours()
	counts := map[domain.Status]int{}

	for _, c := range list {
		counts[c.Status]++
		if c.Status.Terminal() {
			continue
		}

		hoursLeft := c.HoursUntilRenewal(now)
		if hoursLeft > 0 && hoursLeft <= window && !c.ReminderSent {
			r.deliver(ctx, c, metrics.PathSweep)
		}

		if c.Status == domain.StatusTrial && c.RenewalAt.Before(now) {
			r.convertTrial(ctx, c.ID)
		}
	}

	for _, s := range []domain.Status{domain.StatusTrial, domain.StatusActive, domain.StatusCancelled, domain.StatusExpired} {
		r.metrics.SetCommitments(string(s), counts[s])
	}
	r.metrics.IncSweeps()
}

// deliver sends the reminder and then raises the sent flag on whatever the
// record looks like now. A failed send leaves the flag down so the next
// sweep retries. Callers hold r.mu.
func (r *Reminder) deliver(ctx context.Context, c *domain.Commitment, path string) {
	n := ReminderNotification(c, r.lead)
	if err := r.notifier.Notify(ctx, n); err != nil {
		r.metrics.IncReminderFailures(path)
		r.logger.Error("failed to send reminder",
			logger.String("id", c.ID),
			logger.String("path", path),
			logger.Error(err))
		return
	}
	r.metrics.IncRemindersSent(path)

	_, err := r.store.Update(ctx, c.ID, func(cur *domain.Commitment) error {
		cur.ReminderSent = true
		return nil
	})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		r.logger.Error("failed to mark reminder sent",
			logger.String("id", c.ID),
			logger.Error(err))
		return
	}

	r.logger.Info("renewal reminder sent",
		logger.String("id", c.ID),
		logger.String("service", c.ServiceName),
		logger.String("path", path))
}

func (r *Reminder) convertTrial(ctx context.Context, id string) {
	converted := false
	_, err := r.store.Update(ctx, id, func(cur *domain.Commitment) error {
		if cur.Status == domain.StatusTrial {
			cur.Status = domain.StatusActive
			converted = true
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			r.logger.Error("failed to convert trial",
				logger.String("id", id),
				logger.Error(err))
		}
		return
	}
	if converted {
		r.metrics.IncTrialConversions()
		r.logger.Info("trial ended, commitment now active", logger.String("id", id))
	}
}
