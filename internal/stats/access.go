package stats

import (
	"slices"

	"geostats/internal/parser/access"
)

// IPRecord is the per-request listing kept when record retention is enabled
type IPRecord struct {
	IP       string `json:"ip"`
	Country  string `json:"country"`
	Date     string `json:"date"`
	HTTPCode string `json:"http_code"`
	Method   string `json:"method"`
	Query    string `json:"query"`
}

// AccessStats is the snapshot of an access log analysis
type AccessStats struct {
	TotalRequests     int              `json:"total_requests"`
	TotalUniqueIPs    int              `json:"total_unique_ips"`
	TopCountries      []Pair[string]   `json:"top_countries"`
	RequestsByCountry *Counter[string] `json:"requests_by_country"`
	RequestsByHour    *Counter[int]    `json:"requests_by_hour"`
	RequestsByDate    *Counter[string] `json:"requests_by_date"`
	RequestsByStatus  *Counter[string] `json:"requests_by_status"`
	RequestsByMethod  *Counter[string] `json:"requests_by_method"`
	RequestsByURL     *Counter[string] `json:"requests_by_url"`
	RequestsByIP      *Counter[string] `json:"requests_by_ip"`
	WeeklyStats       *Weekly          `json:"weekly_stats"`
	Records           []IPRecord       `json:"records,omitempty"`
	Run               RunStats         `json:"run"`
}

func newAccessStats() AccessStats {
	return AccessStats{
		RequestsByCountry: NewCounter[string](),
		RequestsByHour:    NewCounter[int](),
		RequestsByDate:    NewCounter[string](),
		RequestsByStatus:  NewCounter[string](),
		RequestsByMethod:  NewCounter[string](),
		RequestsByURL:     NewCounter[string](),
		RequestsByIP:      NewCounter[string](),
		WeeklyStats:       NewWeekly(),
	}
}

// EmptyAccessStats returns a snapshot with no requests
func EmptyAccessStats(run RunStats) *AccessStats {
	s := newAccessStats()
	s.Run = run
	return &s
}

// AccessAggregator folds accepted access entries into count tables
type AccessAggregator struct {
	topN        int
	keepRecords bool
	stats       AccessStats
}

// NewAccessAggregator creates an aggregator whose snapshots carry the topN
// countries. With keepRecords every accepted entry is also listed.
func NewAccessAggregator(topN int, keepRecords bool) *AccessAggregator {
	return &AccessAggregator{
		topN:        topN,
		keepRecords: keepRecords,
		stats:       newAccessStats(),
	}
}

// Add counts one accepted entry in every dimension
func (a *AccessAggregator) Add(e *access.Entry) {
	s := &a.stats
	s.TotalRequests++
	s.RequestsByCountry.Inc(e.Country)
	s.RequestsByHour.Inc(e.Hour)
	s.RequestsByDate.Inc(e.Date)
	s.RequestsByStatus.Inc(e.StatusCode)
	s.RequestsByMethod.Inc(e.Method)
	s.RequestsByURL.Inc(e.URL)
	s.RequestsByIP.Inc(e.IP)
	s.WeeklyStats.Add(WeekKey(e.Date, access.DateLayout), e.Country)

	if a.keepRecords {
		s.Records = append(s.Records, IPRecord{
			IP:       e.IP,
			Country:  e.Country,
			Date:     e.Date,
			HTTPCode: e.StatusCode,
			Method:   e.Method,
			Query:    e.URL,
		})
	}
}

// Merge folds the tables of other into a
func (a *AccessAggregator) Merge(other *AccessAggregator) {
	s, o := &a.stats, &other.stats
	s.TotalRequests += o.TotalRequests
	s.RequestsByCountry.Merge(o.RequestsByCountry)
	s.RequestsByHour.Merge(o.RequestsByHour)
	s.RequestsByDate.Merge(o.RequestsByDate)
	s.RequestsByStatus.Merge(o.RequestsByStatus)
	s.RequestsByMethod.Merge(o.RequestsByMethod)
	s.RequestsByURL.Merge(o.RequestsByURL)
	s.RequestsByIP.Merge(o.RequestsByIP)
	s.WeeklyStats.Merge(o.WeeklyStats)
	if a.keepRecords {
		s.Records = append(s.Records, o.Records...)
	}
}

// Snapshot returns an independent copy of the current tables
func (a *AccessAggregator) Snapshot(run RunStats) *AccessStats {
	s := &a.stats
	return &AccessStats{
		TotalRequests:     s.TotalRequests,
		TotalUniqueIPs:    s.RequestsByIP.Len(),
		TopCountries:      s.RequestsByCountry.Top(a.topN),
		RequestsByCountry: s.RequestsByCountry.Clone(),
		RequestsByHour:    s.RequestsByHour.Clone(),
		RequestsByDate:    s.RequestsByDate.Clone(),
		RequestsByStatus:  s.RequestsByStatus.Clone(),
		RequestsByMethod:  s.RequestsByMethod.Clone(),
		RequestsByURL:     s.RequestsByURL.Clone(),
		RequestsByIP:      s.RequestsByIP.Clone(),
		WeeklyStats:       s.WeeklyStats.Clone(),
		Records:           slices.Clone(s.Records),
		Run:               run,
	}
}
