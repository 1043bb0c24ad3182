// Package datepicker models the single-date picker behind the event date field.
//
// The picker lives in a popover with explicit open/close state. Choosing a day
// closes the popover. Days before today are disabled and months before the
// current one cannot be navigated to.
package datepicker

import (
	"errors"
	"sync"
	"time"

	"obi-site/internal/domain"
)

// Placeholder is shown on the trigger button while nothing is selected
const Placeholder = "Select date"

// MonthLayout is the format of month identifiers, e.g. "2026-10"
const MonthLayout = "2006-01"

var (
	ErrDateDisabled    = errors.New("date is before today")
	ErrMonthOutOfRange = errors.New("month is before the current month")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidMonth    = errors.New("invalid month")
)

// Clock returns the current time
type Clock func() time.Time

// Picker is the popover state plus the selected day
type Picker struct {
	mu       sync.Mutex
	open     bool
	selected *time.Time
	now      Clock
	loc      *time.Location
}

// New creates a closed picker with nothing selected. Day boundaries are taken
// in loc; a nil loc means UTC.
func New(now Clock, loc *time.Location) *Picker {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Picker{now: now, loc: loc}
}

// Open shows the popover
func (p *Picker) Open() { p.SetOpen(true) }

// Close hides the popover
func (p *Picker) Close() { p.SetOpen(false) }

// SetOpen is the popover's open-change callback
func (p *Picker) SetOpen(open bool) {
	p.mu.Lock()
	p.open = open
	p.mu.Unlock()
}

// Toggle flips the popover
func (p *Picker) Toggle() {
	p.mu.Lock()
	p.open = !p.open
	p.mu.Unlock()
}

// IsOpen reports whether the popover is shown
func (p *Picker) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// Select chooses a day and closes the popover. Disabled days are refused and
// leave the picker untouched.
func (p *Picker) Select(d time.Time) error {
	day := p.day(d)
	if p.IsDisabled(day) {
		return ErrDateDisabled
	}

	p.mu.Lock()
	p.selected = &day
	p.open = false
	p.mu.Unlock()
	return nil
}

// SelectString selects a day given as YYYY-MM-DD. An empty string clears.
func (p *Picker) SelectString(s string) error {
	if s == "" {
		p.Clear()
		return nil
	}
	d, err := p.ParseDate(s)
	if err != nil {
		return err
	}
	return p.Select(d)
}

// Clear drops the selection
func (p *Picker) Clear() {
	p.mu.Lock()
	p.selected = nil
	p.mu.Unlock()
}

// Selected returns the chosen day, if any
func (p *Picker) Selected() (time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selected == nil {
		return time.Time{}, false
	}
	return *p.selected, true
}

// Value is the form value: YYYY-MM-DD or empty
func (p *Picker) Value() string {
	if d, ok := p.Selected(); ok {
		return d.Format(domain.DateLayout)
	}
	return ""
}

// Display is the trigger button text
func (p *Picker) Display() string {
	if v := p.Value(); v != "" {
		return v
	}
	return Placeholder
}

// Today returns midnight of the current day in the picker's location
func (p *Picker) Today() time.Time {
	now := p.now().In(p.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, p.loc)
}

// IsDisabled reports whether d falls before today
func (p *Picker) IsDisabled(d time.Time) bool {
	return p.day(d).Before(p.Today())
}

// FromMonth is the earliest month the picker can show
func (p *Picker) FromMonth() time.Time {
	return firstOfMonth(p.Today())
}

// CanNavigateTo reports whether the month containing m may be shown
func (p *Picker) CanNavigateTo(m time.Time) bool {
	return !firstOfMonth(p.day(m)).Before(p.FromMonth())
}

// ParseDate parses YYYY-MM-DD as a day in the picker's location
func (p *Picker) ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(domain.DateLayout, s, p.loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// ParseMonth parses YYYY-MM. An empty string means the current month.
func (p *Picker) ParseMonth(s string) (time.Time, error) {
	if s == "" {
		return p.FromMonth(), nil
	}
	m, err := time.ParseInLocation(MonthLayout, s, p.loc)
	if err != nil {
		return time.Time{}, ErrInvalidMonth
	}
	return m, nil
}

func (p *Picker) day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, p.loc)
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
