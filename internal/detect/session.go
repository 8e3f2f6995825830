package detect

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/subguard/internal/dom"
	"github.com/MrSnakeDoc/subguard/internal/domain"
)

// DefaultDebounce coalesces double clicks on a commitment control.
const DefaultDebounce = 300 * time.Millisecond

// Sink receives one message per accepted activation.
type Sink func(domain.DetectionMessage)

// Session watches one content tree for commitment controls and turns their
// activation into detection messages.
type Session struct {
	e        *Engine
	root     *dom.Node
	pageURL  string
	pageKey  string
	debounce time.Duration
	sink     Sink

	classifier *Classifier

	// pass serialises observation passes and extractions
	pass sync.Mutex

	mu          sync.Mutex
	attached    map[*dom.Node]struct{}
	pending     *time.Timer
	saved       map[string]struct{}
	scanning    bool
	rerun       bool
	unsubscribe func()
	closed      bool
}

// NewSession binds a tree and its page address. debounce <= 0 uses
// DefaultDebounce.
func (e *Engine) NewSession(root *dom.Node, pageURL string, debounce time.Duration, sink Sink) *Session {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Session{
		e:          e,
		root:       root,
		pageURL:    pageURL,
		pageKey:    PageKey(pageURL),
		debounce:   debounce,
		sink:       sink,
		classifier: e.NewClassifier(pageURL),
		attached:   map[*dom.Node]struct{}{},
		saved:      map[string]struct{}{},
	}
}

// Observe scans the tree once and rescans after every mutation. It returns
// the controls matched by the initial scan.
func (s *Session) Observe() []*dom.Node {
	matched := s.rescan()

	s.mu.Lock()
	if s.unsubscribe == nil && !s.closed {
		s.unsubscribe = s.root.Observe(func(*dom.Node) { s.rescan() })
	}
	s.mu.Unlock()
	return matched
}

// rescan never re-enters itself. A mutation landing while a pass runs
// flags a rerun, which the running pass performs before returning.
func (s *Session) rescan() []*dom.Node {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if s.scanning {
		s.rerun = true
		s.mu.Unlock()
		return nil
	}
	s.scanning = true
	s.mu.Unlock()

	var all []*dom.Node
	for {
		var matched []*dom.Node
		s.pass.Lock()
		s.root.View(func() { matched = s.classifier.Scan(s.root) })
		s.pass.Unlock()
		all = append(all, matched...)

		s.mu.Lock()
		for _, n := range matched {
			s.attached[n] = struct{}{}
		}
		if !s.rerun || s.closed {
			s.rerun = false
			s.scanning = false
			s.mu.Unlock()
			return all
		}
		s.rerun = false
		s.mu.Unlock()
	}
}

// Controls returns every control currently holding an activation handler.
func (s *Session) Controls() []*dom.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*dom.Node, 0, len(s.attached))
	for n := range s.attached {
		out = append(out, n)
	}
	return out
}

// Activate records a user pressing n. It returns false when the activation
// is ignored: n is not a matched control, the page was already saved, or an
// activation is already pending.
func (s *Session) Activate(n *dom.Node) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	if _, ok := s.attached[n]; !ok {
		return false
	}
	if _, ok := s.saved[s.pageKey]; ok {
		return false
	}
	if s.pending != nil {
		return false
	}

	s.pending = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.pending = nil
		s.mu.Unlock()

		// the tree may still be changing; read it like an observation pass
		var msg domain.DetectionMessage
		s.pass.Lock()
		s.root.View(func() { msg = s.e.Message(n, s.pageURL) })
		s.pass.Unlock()
		if s.sink != nil {
			s.sink(msg)
		}
	})
	return true
}

// MarkSaved suppresses further detections on this page.
func (s *Session) MarkSaved() {
	s.mu.Lock()
	s.saved[s.pageKey] = struct{}{}
	s.mu.Unlock()
}

// Close stops observing and drops any pending activation.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}
