package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func intPtr(i int) *int { return &i }

func sampleCommitment() *Commitment {
	return &Commitment{
		ID:           "c1",
		UserID:       "u1",
		ServiceName:  "Netflix — Premium",
		URL:          "https://www.netflix.com/signup",
		TrialDays:    intPtr(7),
		Price:        decimal.RequireFromString("14.99"),
		Currency:     "USD",
		Cycle:        CycleMonthly,
		StartAt:      now,
		RenewalAt:    now.Add(7 * 24 * time.Hour),
		RiskScore:    65,
		Status:       StatusTrial,
		DarkPatterns: []string{"auto-renew pre-checked"},
		CreatedAt:    now,
	}
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusTrial, StatusActive, true},
		{StatusTrial, StatusCancelled, true},
		{StatusActive, StatusExpired, true},
		{StatusCancelled, StatusActive, false},
		{StatusCancelled, StatusTrial, false},
		{StatusExpired, StatusActive, false},
		{StatusExpired, StatusCancelled, false},
		{StatusCancelled, StatusCancelled, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestParseBillingCycle(t *testing.T) {
	assert.Equal(t, CycleYearly, ParseBillingCycle("yearly"))
	assert.Equal(t, CycleDaily, ParseBillingCycle("daily"))
	assert.Equal(t, CycleMonthly, ParseBillingCycle("fortnightly"))
	assert.Equal(t, CycleMonthly, ParseBillingCycle(""))
}

func TestCommitmentJSONKeepsPriceAndCadence(t *testing.T) {
	c := sampleCommitment()

	raw, err := json.Marshal(c)
	require.NoError(t, err)

	var back Commitment
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, c.Price.Equal(back.Price))
	assert.Equal(t, CycleMonthly, back.Cycle)
	assert.Equal(t, 7, *back.TrialDays)
	assert.True(t, c.RenewalAt.Equal(back.RenewalAt))
}

func TestCommitmentValidate(t *testing.T) {
	assert.NoError(t, sampleCommitment().Validate())

	neg := sampleCommitment()
	neg.Price = decimal.NewFromInt(-1)
	assert.Error(t, neg.Validate())

	badStatus := sampleCommitment()
	badStatus.Status = "paused"
	assert.Error(t, badStatus.Validate())

	noName := sampleCommitment()
	noName.ServiceName = ""
	assert.Error(t, noName.Validate())

	badRisk := sampleCommitment()
	badRisk.RiskScore = 120
	assert.Error(t, badRisk.Validate())
}

func TestCloneIsDeep(t *testing.T) {
	c := sampleCommitment()
	cp := c.Clone()

	*cp.TrialDays = 30
	cp.DarkPatterns[0] = "changed"

	assert.Equal(t, 7, *c.TrialDays)
	assert.Equal(t, "auto-renew pre-checked", c.DarkPatterns[0])
	assert.Nil(t, (*Commitment)(nil).Clone())
}

func TestDaysUntilRenewalRoundsUp(t *testing.T) {
	c := sampleCommitment()
	c.RenewalAt = now.Add(25 * time.Hour)
	assert.Equal(t, 2, c.DaysUntilRenewal(now))
	assert.InDelta(t, 25.0, c.HoursUntilRenewal(now), 0.001)

	c.RenewalAt = now.Add(-1 * time.Hour)
	assert.Equal(t, 0, c.DaysUntilRenewal(now))
}

func TestPatchApply(t *testing.T) {
	c := sampleCommitment()
	name := "Netflix"
	p := CommitmentPatch{ServiceName: &name}
	require.NoError(t, p.Validate())
	require.NoError(t, p.Apply(c))
	assert.Equal(t, "Netflix", c.ServiceName)

	sent := ReminderSentPatch()
	require.NoError(t, sent.Apply(c))
	assert.True(t, c.ReminderSent)

	unsent := false
	require.NoError(t, (&CommitmentPatch{ReminderSent: &unsent}).Apply(c))
	assert.True(t, c.ReminderSent, "reminder flag never goes back")

	cancel := StatusPatch(StatusCancelled)
	require.NoError(t, cancel.Apply(c))
	reactivate := StatusPatch(StatusActive)
	assert.ErrorIs(t, reactivate.Apply(c), ErrTerminalStatus)
	assert.Equal(t, StatusCancelled, c.Status)
}

func TestPatchValidate(t *testing.T) {
	neg := decimal.NewFromInt(-3)
	assert.Error(t, (&CommitmentPatch{Price: &neg}).Validate())

	bad := BillingCycle("hourly")
	assert.Error(t, (&CommitmentPatch{Cycle: &bad}).Validate())

	cur := "eur"
	assert.Error(t, (&CommitmentPatch{Currency: &cur}).Validate())
}

func TestRenewalFrom(t *testing.T) {
	midnight := func(days int) time.Time {
		return time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)
	}

	assert.Equal(t, midnight(7), RenewalFrom(now, intPtr(7), CycleMonthly))
	assert.Equal(t, midnight(365), RenewalFrom(now, nil, CycleYearly))
	assert.Equal(t, midnight(7), RenewalFrom(now, nil, CycleWeekly))
	assert.Equal(t, midnight(1), RenewalFrom(now, nil, CycleDaily))
	assert.Equal(t, midnight(30), RenewalFrom(now, nil, CycleMonthly))
	assert.Equal(t, midnight(30), RenewalFrom(now, intPtr(0), CycleMonthly))
}

func TestBurnRate(t *testing.T) {
	mk := func(price string, cycle BillingCycle, status Status) *Commitment {
		return &Commitment{Price: decimal.RequireFromString(price), Cycle: cycle, Status: status}
	}

	list := []*Commitment{
		mk("10", CycleMonthly, StatusActive),
		mk("120", CycleYearly, StatusTrial),
		mk("5", CycleWeekly, StatusActive),
		mk("99", CycleMonthly, StatusCancelled),
		mk("50", CycleMonthly, StatusExpired),
	}

	// 10 + 10 + 21.65
	assert.Equal(t, "41.65", BurnRate(list).StringFixed(2))
	assert.True(t, BurnRate(nil).IsZero())
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$14.99", FormatPrice(decimal.RequireFromString("14.99"), "USD"))
	assert.Equal(t, "€9.99", FormatPrice(decimal.RequireFromString("9.99"), "EUR"))
	assert.Equal(t, "£10", FormatPrice(decimal.NewFromInt(10), "GBP"))
}

func TestNewCommitmentFromDetection(t *testing.T) {
	price := decimal.RequireFromString("14.99")
	msg := DetectionMessage{
		Detection: Detection{
			Detected:      true,
			TrialDetected: true,
			TrialDays:     intPtr(7),
			Price:         &price,
			Cycle:         CycleMonthly,
			RiskScore:     65,
			DarkPatterns:  []string{"auto-renew pre-checked"},
		},
		URL:         "https://www.netflix.com/signup",
		ServiceName: "Netflix — Premium",
	}

	c := NewCommitment("id-1", "u1", msg, Overrides{}, now)
	assert.Equal(t, StatusTrial, c.Status)
	assert.Equal(t, DefaultCurrency, c.Currency)
	assert.True(t, price.Equal(c.Price))
	assert.Equal(t, time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC), c.RenewalAt)
	assert.False(t, c.ReminderSent)
	require.NoError(t, c.Validate())

	name := "My Netflix"
	yearly := CycleYearly
	renew := now.Add(48 * time.Hour)
	msg.TrialDetected = false
	c = NewCommitment("id-2", "u1", msg, Overrides{ServiceName: &name, Cycle: &yearly, RenewalAt: &renew}, now)
	assert.Equal(t, StatusActive, c.Status)
	assert.Equal(t, "My Netflix", c.ServiceName)
	assert.Equal(t, CycleYearly, c.Cycle)
	assert.Equal(t, renew, c.RenewalAt)
}
