package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// BillingCycle is the cadence at which a commitment is charged.
type BillingCycle string

const (
	CycleDaily   BillingCycle = "daily"
	CycleWeekly  BillingCycle = "weekly"
	CycleMonthly BillingCycle = "monthly"
	CycleYearly  BillingCycle = "yearly"
)

// ParseBillingCycle maps free text to a cycle, defaulting to monthly.
func ParseBillingCycle(s string) BillingCycle {
	switch BillingCycle(s) {
	case CycleDaily, CycleWeekly, CycleMonthly, CycleYearly:
		return BillingCycle(s)
	default:
		return CycleMonthly
	}
}

// Status is the lifecycle state of a commitment.
type Status string

const (
	StatusTrial     Status = "trial"
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// ErrTerminalStatus is returned when a transition would leave an absorbing state.
var ErrTerminalStatus = errors.New("commitment status is terminal")

var errNegativePrice = errors.New("price must be >= 0")

// Terminal reports whether no rule may move a commitment out of s.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusExpired
}

// CanTransition reports whether from -> to is allowed.
// Cancelled and expired are absorbing.
func (s Status) CanTransition(to Status) bool {
	if s == to {
		return true
	}
	return !s.Terminal()
}

// Commitment is the durable record of one tracked subscription or trial.
type Commitment struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	// ID is opaque and unique; it also names the reminder alarm.
	ID string `json:"id" validate:"required"`

	// UserID owns the record.
	UserID string `json:"user_id" validate:"required"`

	// ServiceName is the display name, e.g. "Netflix — Premium".
	ServiceName string `json:"service_name" validate:"required,max=200"`

	// URL is the page the commitment was detected on.
	URL string `json:"url" validate:"omitempty,url"`

	// ─────────────────────────────
	// Commercial terms
	// ─────────────────────────────

	// TrialDays is nil when no numeric trial length was found.
	TrialDays *int `json:"trial_days,omitempty" validate:"omitempty,min=0"`

	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency" validate:"required,len=3,uppercase"`
	Cycle    BillingCycle    `json:"billing_cycle" validate:"required,oneof=daily weekly monthly yearly"`

	// ─────────────────────────────
	// Schedule
	// ─────────────────────────────

	StartAt time.Time `json:"start_at"`

	// RenewalAt is set at creation and only changes on explicit user edit.
	RenewalAt time.Time `json:"renewal_at" validate:"required"`

	// ─────────────────────────────
	// Risk & lifecycle
	// ─────────────────────────────

	RiskScore    int      `json:"risk_score" validate:"min=0,max=100"`
	Status       Status   `json:"status" validate:"required,oneof=trial active cancelled expired"`
	DarkPatterns []string `json:"dark_patterns"`

	CreatedAt time.Time `json:"created_at"`

	// ReminderSent flips false->true once and is never reset.
	ReminderSent bool `json:"reminder_sent"`
}

var validate = validator.New()

// Validate checks field constraints that the store relies on.
func (c *Commitment) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid commitment: %w", err)
	}
	if c.Price.IsNegative() {
		return fmt.Errorf("invalid commitment: %w, got %s", errNegativePrice, c.Price)
	}
	return nil
}

// HoursUntilRenewal returns the fractional hours left before renewal.
func (c *Commitment) HoursUntilRenewal(now time.Time) float64 {
	return c.RenewalAt.Sub(now).Hours()
}

// DaysUntilRenewal rounds up to whole days, like a calendar countdown.
func (c *Commitment) DaysUntilRenewal(now time.Time) int {
	return DaysUntil(c.RenewalAt, now)
}

// Clone returns a deep copy safe to mutate.
func (c *Commitment) Clone() *Commitment {
	if c == nil {
		return nil
	}
	out := *c
	if c.TrialDays != nil {
		d := *c.TrialDays
		out.TrialDays = &d
	}
	if c.DarkPatterns != nil {
		out.DarkPatterns = append([]string(nil), c.DarkPatterns...)
	}
	return &out
}
