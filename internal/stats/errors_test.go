package stats

import (
	"testing"

	"geostats/internal/parser/errorlog"
)

func errorEntry(level, ip, message, errorType string) *errorlog.Entry {
	return &errorlog.Entry{
		Level:      level,
		PID:        1234,
		Message:    message,
		ClientIP:   ip,
		Date:       "2024-01-10",
		Hour:       13,
		Country:    "US",
		ErrorType:  errorType,
		URLPath:    "/missing",
		HTTPMethod: "GET",
	}
}

func TestErrorAggregator_Add(t *testing.T) {
	agg := NewErrorAggregator()
	agg.Add(errorEntry("error", "203.0.113.5", "open() failed", errorlog.TypeOther))
	agg.Add(errorEntry("crit", "203.0.113.5", "open() failed", errorlog.TypeOther))
	agg.Add(errorEntry("error", "198.51.100.1", "upstream timeout", errorlog.TypeTimeout))

	s := agg.Snapshot(RunStats{Accepted: 3})

	if s.TotalErrors != 3 {
		t.Errorf("Expected TotalErrors 3, got %d", s.TotalErrors)
	}
	if s.ErrorsByLevel.Get("error") != 2 || s.ErrorsByLevel.Get("crit") != 1 {
		t.Errorf("Unexpected levels %v", s.ErrorsByLevel.Map())
	}
	if s.TopErrorMessages.Get("open() failed") != 2 {
		t.Errorf("Expected message count 2, got %d", s.TopErrorMessages.Get("open() failed"))
	}
	if s.ErrorsByPID.Get(1234) != 3 {
		t.Errorf("Expected PID count 3, got %d", s.ErrorsByPID.Get(1234))
	}
	if s.ErrorsByIP.Len() != 2 {
		t.Errorf("Expected 2 client IPs, got %d", s.ErrorsByIP.Len())
	}
	if s.ErrorsByErrorType.Get(errorlog.TypeTimeout) != 1 {
		t.Errorf("Expected one timeout, got %d", s.ErrorsByErrorType.Get(errorlog.TypeTimeout))
	}

	for name, c := range map[string]interface{ Total() int }{
		"level":   s.ErrorsByLevel,
		"hour":    s.ErrorsByHour,
		"date":    s.ErrorsByDate,
		"country": s.ErrorsByCountry,
		"url":     s.ErrorsByURL,
		"method":  s.ErrorsByMethod,
		"type":    s.ErrorsByErrorType,
	} {
		if c.Total() != s.TotalErrors {
			t.Errorf("Expected %s sum %d, got %d", name, s.TotalErrors, c.Total())
		}
	}
}

func TestErrorAggregator_Merge(t *testing.T) {
	a := NewErrorAggregator()
	a.Add(errorEntry("error", "1.1.1.1", "m1", errorlog.TypeOther))
	b := NewErrorAggregator()
	b.Add(errorEntry("warn", "1.1.1.1", "m1", errorlog.TypeOther))

	a.Merge(b)
	s := a.Snapshot(RunStats{})

	if s.TotalErrors != 2 {
		t.Errorf("Expected 2 errors, got %d", s.TotalErrors)
	}
	if s.ErrorsByIP.Get("1.1.1.1") != 2 {
		t.Errorf("Expected IP count 2, got %d", s.ErrorsByIP.Get("1.1.1.1"))
	}
	if s.ErrorsByLevel.Len() != 2 {
		t.Errorf("Expected 2 levels, got %d", s.ErrorsByLevel.Len())
	}
}

func TestEmptyErrorStats(t *testing.T) {
	s := EmptyErrorStats(RunStats{FilesFound: 0})
	if s.TotalErrors != 0 || s.ErrorsByLevel == nil || s.ErrorsByLevel.Len() != 0 {
		t.Errorf("Expected empty initialized snapshot, got %+v", s)
	}
}
