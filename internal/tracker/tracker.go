// Package tracker turns detections into persisted commitments and keeps
// their reminders armed as records change.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrSnakeDoc/subguard/internal/domain"
	"github.com/MrSnakeDoc/subguard/internal/logger"
	"github.com/MrSnakeDoc/subguard/internal/metrics"
	"github.com/MrSnakeDoc/subguard/internal/notify"
	"github.com/MrSnakeDoc/subguard/internal/store"
)

// Reminders is the part of the reminder scheduler the tracker drives.
type Reminders interface {
	Arm(ctx context.Context, c *domain.Commitment) (bool, error)
	Disarm(ctx context.Context, id string) error
}

// Options configures a Service. Zero values use defaults.
type Options struct {
	UserID string
	Lead   time.Duration
	Now    func() time.Time
	NewID  func() string
}

// Service is the caller of the detection engine: it persists what was
// detected and invokes Arm.
type Service struct {
	store     store.Store
	reminders Reminders
	notifier  notify.Notifier
	metrics   metrics.Provider
	logger    logger.Logger

	userID string
	lead   time.Duration
	now    func() time.Time
	newID  func() string
}

// New creates a tracker service.
func New(st store.Store, r Reminders, n notify.Notifier, m metrics.Provider, log logger.Logger, opts Options) *Service {
	if opts.UserID == "" {
		opts.UserID = "default"
	}
	if opts.Lead <= 0 {
		opts.Lead = 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if m == nil {
		m = metrics.New(false, nil)
	}
	return &Service{
		store:     st,
		reminders: r,
		notifier:  n,
		metrics:   m,
		logger:    log,
		userID:    opts.UserID,
		lead:      opts.Lead,
		now:       opts.Now,
		newID:     opts.NewID,
	}
}

// Track persists a detection message, applying user overrides, and arms its
// reminder.
func (s *Service) Track(ctx context.Context, msg domain.DetectionMessage, ov domain.Overrides) (*domain.Commitment, error) {
	c := domain.NewCommitment(s.newID(), s.userID, msg, ov, s.now().UTC())
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ManualEntry is a commitment typed in by the user rather than detected.
type ManualEntry struct {
	ServiceName  string              `json:"service_name" validate:"required,max=200"`
	URL          string              `json:"url" validate:"omitempty,url"`
	Price        decimal.Decimal     `json:"price"`
	Currency     string              `json:"currency" validate:"omitempty,len=3,uppercase"`
	Cycle        domain.BillingCycle `json:"billing_cycle" validate:"omitempty,oneof=daily weekly monthly yearly"`
	TrialDays    *int                `json:"trial_days,omitempty" validate:"omitempty,min=0"`
	RenewalAt    *time.Time          `json:"renewal_at,omitempty"`
	RiskScore    int                 `json:"risk_score" validate:"min=0,max=100"`
	DarkPatterns []string            `json:"dark_patterns,omitempty"`
}

// Add stores a manual entry. A missing renewal date is derived like a
// detection would be.
func (s *Service) Add(ctx context.Context, e ManualEntry) (*domain.Commitment, error) {
	if err := validate.Struct(e); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	price := e.Price
	msg := domain.DetectionMessage{
		Detection: domain.Detection{
			Detected:      true,
			TrialDetected: e.TrialDays != nil,
			TrialDays:     e.TrialDays,
			Price:         &price,
			Currency:      e.Currency,
			Cycle:         domain.ParseBillingCycle(string(e.Cycle)),
			RiskScore:     e.RiskScore,
			DarkPatterns:  e.DarkPatterns,
		},
		URL:         e.URL,
		ServiceName: e.ServiceName,
	}
	return s.Track(ctx, msg, domain.Overrides{RenewalAt: e.RenewalAt})
}

func (s *Service) save(ctx context.Context, c *domain.Commitment) error {
	if err := s.store.Put(ctx, c); err != nil {
		return fmt.Errorf("failed to save commitment: %w", err)
	}
	s.metrics.IncTracked()

	if _, err := s.reminders.Arm(ctx, c); err != nil {
		// the sweep still covers this commitment
		s.logger.Error("failed to arm reminder",
			logger.String("id", c.ID),
			logger.Error(err))
	}

	s.notify(ctx, notify.Notification{
		ID:      "added_" + c.ID,
		Kind:    notify.KindTracked,
		Title:   "✅ Subscription Tracked!",
		Message: fmt.Sprintf("Now tracking %q. You'll get a reminder %s before renewal.", c.ServiceName, leadText(s.lead)),
	})

	s.logger.Info("commitment tracked",
		logger.String("id", c.ID),
		logger.String("service", c.ServiceName),
		logger.String("status", string(c.Status)),
		logger.Time("renewal_at", c.RenewalAt))
	return nil
}

// List returns every commitment, oldest first.
func (s *Service) List(ctx context.Context) ([]*domain.Commitment, error) {
	return s.store.List(ctx)
}

// Get returns one commitment.
func (s *Service) Get(ctx context.Context, id string) (*domain.Commitment, error) {
	return s.store.Get(ctx, id)
}

// Update applies a user edit. A renewal change re-arms the reminder; moving
// to a terminal status drops it.
func (s *Service) Update(ctx context.Context, id string, p domain.CommitmentPatch) (*domain.Commitment, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	c, err := s.store.Update(ctx, id, func(cur *domain.Commitment) error {
		return p.Apply(cur)
	})
	if err != nil {
		return nil, err
	}

	switch {
	case c.Status.Terminal():
		if err := s.reminders.Disarm(ctx, c.ID); err != nil {
			s.logger.Warn("failed to disarm reminder", logger.String("id", c.ID), logger.Error(err))
		}
	case p.RenewalAt != nil:
		if _, err := s.reminders.Arm(ctx, c); err != nil {
			s.logger.Warn("failed to re-arm reminder", logger.String("id", c.ID), logger.Error(err))
		}
	}
	return c, nil
}

// Cancel marks a commitment cancelled.
func (s *Service) Cancel(ctx context.Context, id string) (*domain.Commitment, error) {
	return s.Update(ctx, id, domain.StatusPatch(domain.StatusCancelled))
}

// Remove deletes a commitment. A reminder that fires afterwards finds
// nothing and does nothing.
func (s *Service) Remove(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.reminders.Disarm(ctx, id); err != nil {
		s.logger.Warn("failed to disarm reminder", logger.String("id", id), logger.Error(err))
	}
	return nil
}

// BurnRate is the monthly cost of every live commitment.
func (s *Service) BurnRate(ctx context.Context) (decimal.Decimal, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.BurnRate(list), nil
}

// Welcome greets the user once, on the first start against an empty store.
func (s *Service) Welcome(ctx context.Context) {
	list, err := s.store.List(ctx)
	if err != nil || len(list) > 0 {
		return
	}
	s.notify(ctx, notify.Notification{
		ID:      "welcome",
		Kind:    notify.KindWelcome,
		Title:   "Subscription Guardian Active 🛡️",
		Message: "Click any subscription button on any website and we'll help you track it!",
	})
}

func (s *Service) notify(ctx context.Context, n notify.Notification) {
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn("failed to send notification",
			logger.String("id", n.ID),
			logger.Error(err))
	}
}

// ErrInvalid wraps validation failures.
var ErrInvalid = errors.New("invalid commitment")

var validate = validator.New()

func leadText(lead time.Duration) string {
	day := 24 * time.Hour
	switch {
	case lead == day:
		return "1 day"
	case lead%day == 0:
		return fmt.Sprintf("%d days", int(lead/day))
	default:
		return fmt.Sprintf("%d hours", int(lead/time.Hour))
	}
}
