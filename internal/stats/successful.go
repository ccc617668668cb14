package stats

import (
	"slices"
	"time"

	"geostats/internal/parser/access"
	"geostats/internal/parser/useragent"
)

// DetailTimeLayout formats timestamps of exported detail records
const DetailTimeLayout = "2006-01-02 15:04:05"

// SuccessfulRequestStats is the snapshot of a successful-request analysis.
// Unlike the other variants it keeps every accepted entry.
type SuccessfulRequestStats struct {
	TotalSuccessfulRequests int              `json:"total_successful_requests"`
	UniqueIPs               int              `json:"unique_ips"`
	ByCountry               *Counter[string] `json:"successful_requests_by_country"`
	ByDate                  *Counter[string] `json:"successful_requests_by_date"`
	ByHour                  *Counter[int]    `json:"successful_requests_by_hour"`
	ByMethod                *Counter[string] `json:"successful_requests_by_method"`
	ByURL                   *Counter[string] `json:"successful_requests_by_url"`
	TopCountries            []Pair[string]   `json:"top_successful_countries"`
	TopURLs                 []Pair[string]   `json:"top_successful_urls"`
	Details                 []*access.Entry  `json:"-"`
	Run                     RunStats         `json:"run"`
}

// DetailRecord is one accepted successful request flattened for tabular export
type DetailRecord struct {
	IP           string `json:"ip"`
	Timestamp    string `json:"timestamp"`
	Method       string `json:"method"`
	URL          string `json:"url"`
	StatusCode   string `json:"status_code"`
	Country      string `json:"country"`
	Date         string `json:"date"`
	Hour         int    `json:"hour"`
	UserAgent    string `json:"user_agent"`
	Referer      string `json:"referer"`
	ResponseSize int64  `json:"response_size"`
	Browser      string `json:"browser"`
	OS           string `json:"os"`
	DeviceType   string `json:"device_type"`

	Time time.Time `json:"-"`
}

// Flatten converts an entry into a DetailRecord; a missing response size becomes 0
func Flatten(e *access.Entry) DetailRecord {
	var size int64
	if e.ResponseSize != nil {
		size = *e.ResponseSize
	}
	ua := useragent.Classify(e.UserAgent)
	return DetailRecord{
		IP:           e.IP,
		Timestamp:    e.Timestamp.Format(DetailTimeLayout),
		Method:       e.Method,
		URL:          e.URL,
		StatusCode:   e.StatusCode,
		Country:      e.Country,
		Date:         e.Date,
		Hour:         e.Hour,
		UserAgent:    e.UserAgent,
		Referer:      e.Referer,
		ResponseSize: size,
		Browser:      ua.Browser,
		OS:           ua.OS,
		DeviceType:   ua.DeviceType,
		Time:         e.Timestamp,
	}
}

// Records flattens every retained entry in acceptance order
func (s *SuccessfulRequestStats) Records() []DetailRecord {
	records := make([]DetailRecord, 0, len(s.Details))
	for _, e := range s.Details {
		records = append(records, Flatten(e))
	}
	return records
}

func newSuccessfulStats() SuccessfulRequestStats {
	return SuccessfulRequestStats{
		ByCountry: NewCounter[string](),
		ByDate:    NewCounter[string](),
		ByHour:    NewCounter[int](),
		ByMethod:  NewCounter[string](),
		ByURL:     NewCounter[string](),
	}
}

// EmptySuccessfulStats returns a snapshot with no requests
func EmptySuccessfulStats(run RunStats) *SuccessfulRequestStats {
	s := newSuccessfulStats()
	s.Run = run
	return &s
}

// SuccessfulAggregator retains accepted 2xx entries and counts them
type SuccessfulAggregator struct {
	topN  int
	ips   map[string]struct{}
	stats SuccessfulRequestStats
}

// NewSuccessfulAggregator returns an empty aggregator that keeps the topN
// entries in its ranked tables.
func NewSuccessfulAggregator(topN int) *SuccessfulAggregator {
	return &SuccessfulAggregator{
		topN:  topN,
		ips:   make(map[string]struct{}),
		stats: newSuccessfulStats(),
	}
}

// Add retains the entry and counts it in every dimension
func (a *SuccessfulAggregator) Add(e *access.Entry) {
	s := &a.stats
	s.TotalSuccessfulRequests++
	a.ips[e.IP] = struct{}{}
	s.ByCountry.Inc(e.Country)
	s.ByDate.Inc(e.Date)
	s.ByHour.Inc(e.Hour)
	s.ByMethod.Inc(e.Method)
	s.ByURL.Inc(e.URL)
	s.Details = append(s.Details, e)
}

// Snapshot returns an independent copy of the current tables.
// Retained entries are shared, not copied.
func (a *SuccessfulAggregator) Snapshot(run RunStats) *SuccessfulRequestStats {
	s := &a.stats
	return &SuccessfulRequestStats{
		TotalSuccessfulRequests: s.TotalSuccessfulRequests,
		UniqueIPs:               len(a.ips),
		ByCountry:               s.ByCountry.Clone(),
		ByDate:                  s.ByDate.Clone(),
		ByHour:                  s.ByHour.Clone(),
		ByMethod:                s.ByMethod.Clone(),
		ByURL:                   s.ByURL.Clone(),
		TopCountries:            s.ByCountry.Top(a.topN),
		TopURLs:                 s.ByURL.Top(a.topN),
		Details:                 slices.Clone(s.Details),
		Run:                     run,
	}
}
