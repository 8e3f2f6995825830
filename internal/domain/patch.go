package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommitmentPatch is a partial update. Nil fields are left untouched.
// ReminderSent can only be raised; a false value is ignored.
type CommitmentPatch struct {
	ServiceName  *string          `json:"service_name,omitempty" validate:"omitempty,min=1,max=200"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	Currency     *string          `json:"currency,omitempty" validate:"omitempty,len=3,uppercase"`
	Cycle        *BillingCycle    `json:"billing_cycle,omitempty" validate:"omitempty,oneof=daily weekly monthly yearly"`
	RenewalAt    *time.Time       `json:"renewal_at,omitempty"`
	Status       *Status          `json:"status,omitempty" validate:"omitempty,oneof=trial active cancelled expired"`
	ReminderSent *bool            `json:"reminder_sent,omitempty"`
}

// Validate checks the patch payload itself.
func (p *CommitmentPatch) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}
	if p.Price != nil && p.Price.IsNegative() {
		return errNegativePrice
	}
	return nil
}

// Apply mutates c in place. It refuses to move a commitment out of an
// absorbing status.
func (p *CommitmentPatch) Apply(c *Commitment) error {
	if p.Status != nil {
		if !c.Status.CanTransition(*p.Status) {
			return ErrTerminalStatus
		}
		c.Status = *p.Status
	}
	if p.ServiceName != nil {
		c.ServiceName = *p.ServiceName
	}
	if p.Price != nil {
		c.Price = *p.Price
	}
	if p.Currency != nil {
		c.Currency = *p.Currency
	}
	if p.Cycle != nil {
		c.Cycle = *p.Cycle
	}
	if p.RenewalAt != nil {
		c.RenewalAt = *p.RenewalAt
	}
	if p.ReminderSent != nil && *p.ReminderSent {
		c.ReminderSent = true
	}
	return nil
}

// Helpers for building patches inline.

func StatusPatch(s Status) CommitmentPatch {
	return CommitmentPatch{Status: &s}
}

func ReminderSentPatch() CommitmentPatch {
	sent := true
	return CommitmentPatch{ReminderSent: &sent}
}
