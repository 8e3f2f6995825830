// Package notify delivers user-facing notifications.
package notify

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/subguard/internal/logger"
)

// Kinds of notification.
const (
	KindReminder = "reminder"
	KindTracked  = "tracked"
	KindWelcome  = "welcome"
)

// Notification is one message shown to the user. ID is stable per purpose
// (remind_<id>, added_<id>) so a receiver can deduplicate.
type Notification struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Notifier shows notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Log writes notifications to the structured log. It is the fallback when
// no webhook is configured.
type Log struct {
	logger logger.Logger
}

// NewLog creates a log notifier.
func NewLog(log logger.Logger) *Log {
	return &Log{logger: log}
}

// Notify logs n at info level.
func (l *Log) Notify(_ context.Context, n Notification) error {
	l.logger.Info("notification",
		logger.String("id", n.ID),
		logger.String("kind", n.Kind),
		logger.String("title", n.Title),
		logger.String("message", n.Message))
	return nil
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

// Notify records n, or returns the configured failure.
func (r *Recorder) Notify(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, n)
	return nil
}

// FailWith makes subsequent Notify calls fail with err. nil restores delivery.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

// Sent returns a copy of what was delivered.
func (r *Recorder) Sent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.sent...)
}

// Count returns how many notifications of kind were delivered.
func (r *Recorder) Count(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sent {
		if s.Kind == kind {
			n++
		}
	}
	return n
}
