package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is assumed when no €/£ marker is present.
const DefaultCurrency = "USD"

// weeksPerMonth converts a weekly price into a monthly one.
var weeksPerMonth = decimal.RequireFromString("4.33")

// CurrencySymbol maps an ISO code to the symbol shown in notifications.
func CurrencySymbol(code string) string {
	switch code {
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	default:
		return "$"
	}
}

// FormatPrice renders "$14.99". Whole amounts drop the fraction ("$10").
func FormatPrice(price decimal.Decimal, currency string) string {
	return CurrencySymbol(currency) + price.String()
}

// MonthlyCost normalises a commitment's price to a monthly amount.
func MonthlyCost(c *Commitment) decimal.Decimal {
	switch c.Cycle {
	case CycleYearly:
		return c.Price.Div(decimal.NewFromInt(12))
	case CycleWeekly:
		return c.Price.Mul(weeksPerMonth)
	case CycleDaily:
		return c.Price.Mul(decimal.NewFromInt(30))
	default:
		return c.Price
	}
}

// BurnRate sums the monthly cost of every live commitment, rounded to cents.
func BurnRate(commitments []*Commitment) decimal.Decimal {
	total := decimal.Zero
	for _, c := range commitments {
		if c.Status.Terminal() {
			continue
		}
		total = total.Add(MonthlyCost(c))
	}
	return total.Round(2)
}

// RenewalFrom computes the default renewal date: the trial end when a trial
// length is known, otherwise one billing period. The result is truncated to
// midnight UTC, matching a date-only input.
func RenewalFrom(now time.Time, trialDays *int, cycle BillingCycle) time.Time {
	var d time.Duration
	switch {
	case trialDays != nil && *trialDays > 0:
		d = time.Duration(*trialDays) * 24 * time.Hour
	case cycle == CycleYearly:
		d = 365 * 24 * time.Hour
	case cycle == CycleWeekly:
		d = 7 * 24 * time.Hour
	case cycle == CycleDaily:
		d = 24 * time.Hour
	default:
		d = 30 * 24 * time.Hour
	}
	return now.Add(d).UTC().Truncate(24 * time.Hour)
}

// DaysUntil rounds the distance to whole days, always up.
func DaysUntil(t, now time.Time) int {
	return int(math.Ceil(t.Sub(now).Hours() / 24))
}
