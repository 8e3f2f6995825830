package scheduler

import (
	"fmt"
	"time"

	"github.com/MrSnakeDoc/subguard/internal/domain"
	"github.com/MrSnakeDoc/subguard/internal/notify"
)

// ReminderNotification renders the renewal reminder for c. Nothing here is
// stored; it is derived from the record each time.
func ReminderNotification(c *domain.Commitment, lead time.Duration) notify.Notification {
	label := "subscription renews"
	if c.Status == domain.StatusTrial {
		label = "trial ends"
	}
	when := leadPhrase(lead)

	return notify.Notification{
		ID:    AlarmName(c.ID),
		Kind:  notify.KindReminder,
		Title: fmt.Sprintf("⏰ %s — Renews %s!", c.ServiceName, titleCase(when)),
		Message: fmt.Sprintf("Your %s %s. You'll be charged %s/%s. Cancel now if you don't want to continue.",
			label, when, domain.FormatPrice(c.Price, c.Currency), c.Cycle),
	}
}

// leadPhrase words the reminder lead: "tomorrow", "in 3 days", "in 6 hours".
func leadPhrase(lead time.Duration) string {
	day := 24 * time.Hour
	switch {
	case lead == day:
		return "tomorrow"
	case lead%day == 0:
		return fmt.Sprintf("in %d days", int(lead/day))
	case lead >= time.Hour:
		return fmt.Sprintf("in %d hours", int(lead/time.Hour))
	default:
		return "soon"
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
