// Package reveal tracks whether a page section has been on screen at least once.
//
// An Observer starts Unseen and moves to Seen the first time it is told the
// section intersects the viewport. The transition is one-way; once Seen the
// observer stops observing and ignores further callbacks.
package reveal

import "sync"

// State of a reveal observer
type State int

const (
	Unseen State = iota
	Seen
)

func (s State) String() string {
	if s == Seen {
		return "seen"
	}
	return "unseen"
}

// VisibleClass is appended to the base class once a section has been seen
const VisibleClass = "visible"

// Observer is a two-state visibility latch
type Observer struct {
	mu    sync.Mutex
	state State
}

// New returns an observer in the Unseen state
func New() *Observer {
	return &Observer{}
}

// Observe feeds one intersection callback. It returns true only for the call
// that moves the observer to Seen.
func (o *Observer) Observe(intersecting bool) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == Seen || !intersecting {
		return false
	}
	o.state = Seen
	return true
}

// State returns the current state
func (o *Observer) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// IsVisible reports whether the section has been seen
func (o *Observer) IsVisible() bool {
	return o.State() == Seen
}

// Observing reports whether callbacks are still wanted
func (o *Observer) Observing() bool {
	return o.State() == Unseen
}

// Class returns the CSS class list for the section
func (o *Observer) Class(base string) string {
	if !o.IsVisible() {
		return base
	}
	if base == "" {
		return VisibleClass
	}
	return base + " " + VisibleClass
}

// Set is a named group of observers for the sections of one rendered page
type Set struct {
	mu        sync.Mutex
	observers map[string]*Observer
	revealAll bool
}

// NewSet creates an empty set. When revealAll is true every observer handed
// out starts Seen, used when the client asked for reduced motion.
func NewSet(revealAll bool) *Set {
	return &Set{observers: map[string]*Observer{}, revealAll: revealAll}
}

// Get returns the observer for a section, creating it on first use
func (s *Set) Get(section string) *Observer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o, ok := s.observers[section]; ok {
		return o
	}
	o := New()
	if s.revealAll {
		o.Observe(true)
	}
	s.observers[section] = o
	return o
}

// Class is a template helper: the class list for a named section
func (s *Set) Class(section, base string) string {
	return s.Get(section).Class(base)
}
