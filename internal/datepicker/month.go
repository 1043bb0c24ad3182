package datepicker

import (
	"time"

	"obi-site/internal/domain"
)

// Day is one cell of the month grid
type Day struct {
	Date     string `json:"date"`
	Day      int    `json:"day"`
	Outside  bool   `json:"outside"`
	Disabled bool   `json:"disabled"`
	Today    bool   `json:"today"`
	Selected bool   `json:"selected"`
}

// MonthView is a single month laid out in Sunday-first weeks, with the
// neighbouring months' days filling the first and last week.
type MonthView struct {
	Month   string  `json:"month"`
	Caption string  `json:"caption"`
	Prev    string  `json:"prev,omitempty"`
	Next    string  `json:"next"`
	Weeks   [][]Day `json:"weeks"`
}

// Weekdays are the grid's column headers
var Weekdays = []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

// Month lays out the month containing m
func (p *Picker) Month(m time.Time) (*MonthView, error) {
	first := firstOfMonth(p.day(m))
	if !p.CanNavigateTo(first) {
		return nil, ErrMonthOutOfRange
	}

	today := p.Today()
	selected, hasSelected := p.Selected()

	view := &MonthView{
		Month:   first.Format(MonthLayout),
		Caption: first.Format("January 2006"),
		Next:    first.AddDate(0, 1, 0).Format(MonthLayout),
	}
	if prev := first.AddDate(0, -1, 0); p.CanNavigateTo(prev) {
		view.Prev = prev.Format(MonthLayout)
	}

	start := first.AddDate(0, 0, -int(first.Weekday()))
	last := first.AddDate(0, 1, -1)
	end := last.AddDate(0, 0, int(time.Saturday-last.Weekday()))

	var week []Day
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		week = append(week, Day{
			Date:     d.Format(domain.DateLayout),
			Day:      d.Day(),
			Outside:  d.Month() != first.Month(),
			Disabled: d.Before(today),
			Today:    d.Equal(today),
			Selected: hasSelected && d.Equal(selected),
		})
		if len(week) == 7 {
			view.Weeks = append(view.Weeks, week)
			week = nil
		}
	}

	return view, nil
}
