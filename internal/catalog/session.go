package catalog

import (
	"sync"
	"time"
)

// Debouncer runs the most recently triggered function once no new trigger
// has arrived for the wait period. It is safe for concurrent use.
type Debouncer struct {
	wait time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	gen     uint64
}

// NewDebouncer returns a Debouncer with the given quiet period. A
// non-positive wait runs functions synchronously on Trigger.
func NewDebouncer(wait time.Duration) *Debouncer {
	return &Debouncer{wait: wait}
}

// Trigger schedules fn, replacing any pending function and restarting the
// quiet period.
func (d *Debouncer) Trigger(fn func()) {
	if d.wait <= 0 {
		fn()
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	gen := d.gen
	d.pending = fn
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.mu.Unlock()
	fn()
}

// Cancel drops the pending function, reporting whether there was one.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	had := d.pending != nil
	d.pending = nil
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	return had
}

// Flush runs the pending function now, if any.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	fn := d.pending
	d.pending = nil
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Querier evaluates a filter state against the current collection.
type Querier interface {
	Query(st FilterState) View
}

// Session owns one caller's FilterState. Query text is evaluated at most once
// per quiet period after the last change; facet toggles and refreshes are
// evaluated immediately. Every evaluation is delivered to onView and its
// pruned state becomes the session state.
type Session struct {
	q      Querier
	deb    *Debouncer
	onView func(View)

	mu    sync.Mutex
	state FilterState
	rev   uint64
}

// NewSession returns a session over q that debounces query text by wait.
func NewSession(q Querier, wait time.Duration, onView func(View)) *Session {
	if onView == nil {
		onView = func(View) {}
	}
	return &Session{q: q, deb: NewDebouncer(wait), onView: onView}
}

// State returns the current filter state.
func (s *Session) State() FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetQuery records the query text and schedules an evaluation.
func (s *Session) SetQuery(q string) {
	s.mu.Lock()
	s.state = s.state.WithQuery(q)
	s.rev++
	s.mu.Unlock()
	s.deb.Trigger(func() { s.evaluate() })
}

// Toggle flips a facet value and evaluates immediately.
func (s *Session) Toggle(kind FacetKind, value string) View {
	s.mu.Lock()
	s.state = s.state.Toggle(kind, value)
	s.rev++
	s.mu.Unlock()
	s.deb.Cancel()
	return s.evaluate()
}

// Refresh evaluates the current state immediately, e.g. after a reload.
func (s *Session) Refresh() View {
	s.deb.Cancel()
	return s.evaluate()
}

// Flush runs a pending query evaluation now instead of waiting out the
// debounce period.
func (s *Session) Flush() { s.deb.Flush() }

// Close drops any pending evaluation.
func (s *Session) Close() { s.deb.Cancel() }

func (s *Session) evaluate() View {
	s.mu.Lock()
	st, rev := s.state, s.rev
	s.mu.Unlock()

	v := s.q.Query(st)

	s.mu.Lock()
	// A change made while evaluating wins over the pruned state.
	if s.rev == rev {
		s.state = v.State
	}
	s.mu.Unlock()

	s.onView(v)
	return v
}
