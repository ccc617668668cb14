package stats

import (
	"testing"

	"geostats/internal/parser/access"
)

func TestIntKeys(t *testing.T) {
	c := NewCounter[int]()
	c.Inc(13)
	c.Inc(2)
	c.Inc(13)

	s := IntKeys(c)
	if s.Get("13") != 2 || s.Get("2") != 1 {
		t.Errorf("Unexpected table %v", s.Map())
	}
	if keys := s.Keys(); keys[0] != "13" {
		t.Errorf("Expected first-seen order kept, got %v", keys)
	}
}

func TestAccessStats_Dimensions(t *testing.T) {
	agg := NewAccessAggregator(10, false)
	agg.Add(&access.Entry{IP: "203.0.113.5", Country: "US", Date: "10/Jan/2024", Hour: 13, Method: "GET", URL: "/", StatusCode: "200"})
	agg.Add(&access.Entry{IP: "203.0.113.6", Country: "KR", Date: "10/Jan/2024", Hour: 14, Method: "GET", URL: "/", StatusCode: "404"})
	dims := agg.Snapshot(RunStats{}).Dimensions()

	if len(dims) != 8 {
		t.Fatalf("Expected 8 dimensions, got %d", len(dims))
	}
	for _, d := range dims {
		if d.Table.Total() != 2 {
			t.Errorf("Expected dimension %s to sum to 2, got %d", d.Name, d.Table.Total())
		}
	}
	if weekly := FindDimension(dims, "weekly"); weekly.Get("2024-W02/US") != 1 {
		t.Errorf("Expected weekly key 2024-W02/US, got %v", weekly.Map())
	}
	if FindDimension(dims, "nope") != nil {
		t.Error("Expected nil for unknown dimension")
	}
}

func TestErrorAndSuccessfulDimensions(t *testing.T) {
	errs := EmptyErrorStats(RunStats{}).Dimensions()
	if FindDimension(errs, "error_type") == nil || FindDimension(errs, "pid") == nil {
		t.Error("Expected error_type and pid dimensions")
	}

	ok := EmptySuccessfulStats(RunStats{}).Dimensions()
	if len(ok) != 5 || FindDimension(ok, "url") == nil {
		t.Errorf("Unexpected successful dimensions %d", len(ok))
	}
}
