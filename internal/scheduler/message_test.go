package scheduler

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrSnakeDoc/subguard/internal/domain"
	"github.com/MrSnakeDoc/subguard/internal/notify"
)

func TestReminderNotification(t *testing.T) {
	c := &domain.Commitment{
		ID:          "c1",
		ServiceName: "Netflix — Premium",
		Price:       decimal.RequireFromString("14.99"),
		Currency:    "USD",
		Cycle:       domain.CycleMonthly,
		Status:      domain.StatusTrial,
	}

	n := ReminderNotification(c, 24*time.Hour)
	assert.Equal(t, "remind_c1", n.ID)
	assert.Equal(t, notify.KindReminder, n.Kind)
	assert.Equal(t, "⏰ Netflix — Premium — Renews Tomorrow!", n.Title)
	assert.Equal(t, "Your trial ends tomorrow. You'll be charged $14.99/monthly. Cancel now if you don't want to continue.", n.Message)

	c.Status = domain.StatusActive
	c.Currency = "EUR"
	c.Cycle = domain.CycleYearly
	n = ReminderNotification(c, 72*time.Hour)
	assert.Equal(t, "⏰ Netflix — Premium — Renews In 3 days!", n.Title)
	assert.Equal(t, "Your subscription renews in 3 days. You'll be charged €14.99/yearly. Cancel now if you don't want to continue.", n.Message)
}

func TestLeadPhrase(t *testing.T) {
	assert.Equal(t, "tomorrow", leadPhrase(24*time.Hour))
	assert.Equal(t, "in 2 days", leadPhrase(48*time.Hour))
	assert.Equal(t, "in 6 hours", leadPhrase(6*time.Hour))
	assert.Equal(t, "soon", leadPhrase(10*time.Minute))
}
