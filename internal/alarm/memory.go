package alarm

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	at    time.Time
	timer *time.Timer
}

// Memory keeps timers in process. Pending timers are lost on restart, which
// callers recover from by re-arming at startup.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	handler Handler
	ctx     context.Context
	stopped bool
}

// NewMemory creates an idle timer set. Timers armed before Start are held
// until Start is called.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*memoryEntry)}
}

var _ Timers = (*Memory)(nil)

// Arm schedules or reschedules name.
func (m *Memory) Arm(_ context.Context, name string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.entries[name]; ok && prev.timer != nil {
		prev.timer.Stop()
	}
	e := &memoryEntry{at: at}
	m.entries[name] = e
	if m.handler != nil && !m.stopped {
		m.schedule(name, e)
	}
	return nil
}

// Cancel drops name.
func (m *Memory) Cancel(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[name]; ok {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(m.entries, name)
	}
	return nil
}

// Lookup reports the due time of name.
func (m *Memory) Lookup(_ context.Context, name string) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[name]
	if !ok {
		return time.Time{}, false, nil
	}
	return e.at, true, nil
}

// Len returns the number of pending timers.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Start delivers fired timers to h until Stop or ctx is done.
func (m *Memory) Start(ctx context.Context, h Handler) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.handler = h
	m.ctx = ctx
	for name, e := range m.entries {
		m.schedule(name, e)
	}

	go func() {
		<-ctx.Done()
		m.Stop()
	}()
	return nil
}

// Stop cancels every pending timer delivery. Entries stay inspectable.
func (m *Memory) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopped = true
	for _, e := range m.entries {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
}

// schedule must be called with m.mu held.
func (m *Memory) schedule(name string, e *memoryEntry) {
	delay := time.Until(e.at)
	if delay < 0 {
		delay = 0
	}
	e.timer = time.AfterFunc(delay, func() {
		m.mu.Lock()
		cur, ok := m.entries[name]
		if !ok || cur != e || m.stopped {
			m.mu.Unlock()
			return
		}
		delete(m.entries, name)
		h, ctx := m.handler, m.ctx
		m.mu.Unlock()

		h(ctx, name)
	})
}
