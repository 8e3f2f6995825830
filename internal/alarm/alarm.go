// Package alarm provides named one-shot timers. Arming a name that is
// already pending replaces it, so at most one timer per name exists.
package alarm

import (
	"context"
	"time"
)

// Handler is called with the name of each timer that fires.
type Handler func(ctx context.Context, name string)

// Timers is a persistent (or process-local) named timer service.
type Timers interface {
	// Arm schedules name at the given instant, replacing any pending timer
	// with the same name.
	Arm(ctx context.Context, name string, at time.Time) error
	// Cancel drops a pending timer. Cancelling an unknown name is not an error.
	Cancel(ctx context.Context, name string) error
	// Lookup reports when name is due to fire.
	Lookup(ctx context.Context, name string) (time.Time, bool, error)
	// Start begins delivering fired timers to h.
	Start(ctx context.Context, h Handler) error
	Stop()
}
