package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Detection is the ephemeral result of one user activation.
// It is never persisted as-is; it seeds a Commitment.
type Detection struct {
	Detected      bool             `json:"detected"`
	TrialDetected bool             `json:"trial_detected"`
	TrialDays     *int             `json:"trial_days,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	Currency      string           `json:"currency,omitempty"`
	Cycle         BillingCycle     `json:"billing_cycle"`
	RiskScore     int              `json:"risk_score"`
	DarkPatterns  []string         `json:"dark_patterns"`
	Keywords      []string         `json:"keywords"`
	PlanName      string           `json:"plan_name,omitempty"`
}

// DetectionMessage is the one structured message emitted per activation:
// the detection plus where it came from.
type DetectionMessage struct {
	Detection
	URL         string `json:"url"`
	ServiceName string `json:"service_name"`
}

// Overrides carry user corrections made before a detection is saved.
type Overrides struct {
	ServiceName *string          `json:"service_name,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Cycle       *BillingCycle    `json:"billing_cycle,omitempty"`
	RenewalAt   *time.Time       `json:"renewal_at,omitempty"`
}

// NewCommitment builds a commitment from a detection message.
// Price and cycle are carried over without conversion.
func NewCommitment(id, userID string, msg DetectionMessage, ov Overrides, now time.Time) *Commitment {
	status := StatusActive
	if msg.TrialDetected {
		status = StatusTrial
	}

	currency := msg.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	price := decimal.Zero
	if msg.Price != nil {
		price = *msg.Price
	}
	if ov.Price != nil {
		price = *ov.Price
	}

	cycle := msg.Cycle
	if cycle == "" {
		cycle = CycleMonthly
	}
	if ov.Cycle != nil {
		cycle = *ov.Cycle
	}

	name := msg.ServiceName
	if ov.ServiceName != nil && *ov.ServiceName != "" {
		name = *ov.ServiceName
	}

	renewal := RenewalFrom(now, msg.TrialDays, cycle)
	if ov.RenewalAt != nil {
		renewal = *ov.RenewalAt
	}

	var trial *int
	if msg.TrialDays != nil {
		d := *msg.TrialDays
		trial = &d
	}

	patterns := append([]string{}, msg.DarkPatterns...)

	return &Commitment{
		ID:           id,
		UserID:       userID,
		ServiceName:  name,
		URL:          msg.URL,
		TrialDays:    trial,
		Price:        price,
		Currency:     currency,
		Cycle:        cycle,
		StartAt:      now,
		RenewalAt:    renewal,
		RiskScore:    msg.RiskScore,
		Status:       status,
		DarkPatterns: patterns,
		CreatedAt:    now,
	}
}
