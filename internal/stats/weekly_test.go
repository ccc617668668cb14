package stats

import (
	"testing"

	"geostats/internal/parser/access"
)

func TestWeekKey(t *testing.T) {
	testCases := []struct {
		date     string
		expected string
	}{
		{"10/Jan/2024", "2024-W02"},
		{"01/Jan/2024", "2024-W01"},
		{"01/Jan/2021", "2020-W53"},
		{"31/Dec/2024", "2025-W01"},
		{"garbage", UnknownWeek},
	}

	for _, tc := range testCases {
		if got := WeekKey(tc.date, access.DateLayout); got != tc.expected {
			t.Errorf("WeekKey(%q): expected '%s', got '%s'", tc.date, tc.expected, got)
		}
	}
}

func TestWeekly_AddAndMerge(t *testing.T) {
	w := NewWeekly()
	w.Add("2024-W02", "US")
	w.Add("2024-W01", "US")
	w.Add("2024-W02", "DE")

	weeks := w.Weeks()
	if len(weeks) != 2 || weeks[0] != "2024-W01" || weeks[1] != "2024-W02" {
		t.Errorf("Expected sorted weeks, got %v", weeks)
	}

	other := NewWeekly()
	other.Add("2024-W02", "US")
	other.Add("2024-W03", "FR")
	w.Merge(other)

	if w.Week("2024-W02").Get("US") != 2 {
		t.Errorf("Expected 2 US requests in W02, got %d", w.Week("2024-W02").Get("US"))
	}
	if w.Total() != 5 {
		t.Errorf("Expected total 5, got %d", w.Total())
	}
	if w.Week("2030-W01") != nil {
		t.Error("Expected nil for missing week")
	}
}
