package stats

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// UnknownWeek is the bucket for dates that do not parse
const UnknownWeek = "Unknown"

// WeekKey returns the ISO year-week ("2024-W02") of date parsed with layout
func WeekKey(date, layout string) string {
	t, err := time.Parse(layout, date)
	if err != nil {
		return UnknownWeek
	}
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Weekly is a per-week country breakdown
type Weekly struct {
	weeks map[string]*Counter[string]
}

// NewWeekly creates an empty weekly table
func NewWeekly() *Weekly {
	return &Weekly{weeks: make(map[string]*Counter[string])}
}

// Add counts one request from country in week
func (w *Weekly) Add(week, country string) {
	c, ok := w.weeks[week]
	if !ok {
		c = NewCounter[string]()
		w.weeks[week] = c
	}
	c.Inc(country)
}

// Weeks returns the week keys in ascending order
func (w *Weekly) Weeks() []string {
	keys := make([]string, 0, len(w.weeks))
	for k := range w.weeks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Week returns the country table of week, nil when absent
func (w *Weekly) Week(week string) *Counter[string] {
	return w.weeks[week]
}

// Total returns the number of requests over all weeks
func (w *Weekly) Total() int {
	total := 0
	for _, c := range w.weeks {
		total += c.Total()
	}
	return total
}

// Merge folds other into w
func (w *Weekly) Merge(other *Weekly) {
	if other == nil {
		return
	}
	for _, week := range other.Weeks() {
		src := other.weeks[week]
		dst, ok := w.weeks[week]
		if !ok {
			dst = NewCounter[string]()
			w.weeks[week] = dst
		}
		dst.Merge(src)
	}
}

// Clone returns an independent copy
func (w *Weekly) Clone() *Weekly {
	clone := NewWeekly()
	clone.Merge(w)
	return clone
}

// MarshalJSON encodes the table as week -> country -> count.
func (w *Weekly) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.weeks)
}
