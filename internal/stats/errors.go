package stats

import (
	"geostats/internal/parser/errorlog"
)

// ErrorStats is the snapshot of an error log analysis
type ErrorStats struct {
	TotalErrors       int              `json:"total_errors"`
	ErrorsByLevel     *Counter[string] `json:"errors_by_level"`
	ErrorsByHour      *Counter[int]    `json:"errors_by_hour"`
	ErrorsByDate      *Counter[string] `json:"errors_by_date"`
	TopErrorMessages  *Counter[string] `json:"top_error_messages"`
	ErrorsByPID       *Counter[int]    `json:"errors_by_pid"`
	ErrorsByCountry   *Counter[string] `json:"errors_by_country"`
	ErrorsByIP        *Counter[string] `json:"errors_by_ip"`
	ErrorsByURL       *Counter[string] `json:"errors_by_url"`
	ErrorsByMethod    *Counter[string] `json:"errors_by_method"`
	ErrorsByErrorType *Counter[string] `json:"errors_by_error_type"`
	Run               RunStats         `json:"run"`
}

func newErrorStats() ErrorStats {
	return ErrorStats{
		ErrorsByLevel:     NewCounter[string](),
		ErrorsByHour:      NewCounter[int](),
		ErrorsByDate:      NewCounter[string](),
		TopErrorMessages:  NewCounter[string](),
		ErrorsByPID:       NewCounter[int](),
		ErrorsByCountry:   NewCounter[string](),
		ErrorsByIP:        NewCounter[string](),
		ErrorsByURL:       NewCounter[string](),
		ErrorsByMethod:    NewCounter[string](),
		ErrorsByErrorType: NewCounter[string](),
	}
}

// EmptyErrorStats returns a snapshot with no errors
func EmptyErrorStats(run RunStats) *ErrorStats {
	s := newErrorStats()
	s.Run = run
	return &s
}

// ErrorAggregator folds accepted error entries into count tables.
// Messages are keyed verbatim, so TopErrorMessages grows with the
// number of distinct messages.
type ErrorAggregator struct {
	stats ErrorStats
}

// NewErrorAggregator returns an empty aggregator for error-log entries.
func NewErrorAggregator() *ErrorAggregator {
	return &ErrorAggregator{stats: newErrorStats()}
}

// Add counts one accepted entry in every dimension
func (a *ErrorAggregator) Add(e *errorlog.Entry) {
	s := &a.stats
	s.TotalErrors++
	s.ErrorsByLevel.Inc(e.Level)
	s.ErrorsByHour.Inc(e.Hour)
	s.ErrorsByDate.Inc(e.Date)
	s.TopErrorMessages.Inc(e.Message)
	s.ErrorsByPID.Inc(e.PID)
	s.ErrorsByCountry.Inc(e.Country)
	s.ErrorsByIP.Inc(e.ClientIP)
	s.ErrorsByURL.Inc(e.URLPath)
	s.ErrorsByMethod.Inc(e.HTTPMethod)
	s.ErrorsByErrorType.Inc(e.ErrorType)
}

// Merge folds the tables of other into a
func (a *ErrorAggregator) Merge(other *ErrorAggregator) {
	s, o := &a.stats, &other.stats
	s.TotalErrors += o.TotalErrors
	s.ErrorsByLevel.Merge(o.ErrorsByLevel)
	s.ErrorsByHour.Merge(o.ErrorsByHour)
	s.ErrorsByDate.Merge(o.ErrorsByDate)
	s.TopErrorMessages.Merge(o.TopErrorMessages)
	s.ErrorsByPID.Merge(o.ErrorsByPID)
	s.ErrorsByCountry.Merge(o.ErrorsByCountry)
	s.ErrorsByIP.Merge(o.ErrorsByIP)
	s.ErrorsByURL.Merge(o.ErrorsByURL)
	s.ErrorsByMethod.Merge(o.ErrorsByMethod)
	s.ErrorsByErrorType.Merge(o.ErrorsByErrorType)
}

// Snapshot returns an independent copy of the current tables
func (a *ErrorAggregator) Snapshot(run RunStats) *ErrorStats {
	s := &a.stats
	return &ErrorStats{
		TotalErrors:       s.TotalErrors,
		ErrorsByLevel:     s.ErrorsByLevel.Clone(),
		ErrorsByHour:      s.ErrorsByHour.Clone(),
		ErrorsByDate:      s.ErrorsByDate.Clone(),
		TopErrorMessages:  s.TopErrorMessages.Clone(),
		ErrorsByPID:       s.ErrorsByPID.Clone(),
		ErrorsByCountry:   s.ErrorsByCountry.Clone(),
		ErrorsByIP:        s.ErrorsByIP.Clone(),
		ErrorsByURL:       s.ErrorsByURL.Clone(),
		ErrorsByMethod:    s.ErrorsByMethod.Clone(),
		ErrorsByErrorType: s.ErrorsByErrorType.Clone(),
		Run:               run,
	}
}
