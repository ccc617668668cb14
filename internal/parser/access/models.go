package access

import (
	"time"
)

// Entry represents one accepted nginx access log line
type Entry struct {
	IP         string
	Timestamp  time.Time
	Method     string
	URL        string
	StatusCode string // always three characters, "000" when the line carries no request
	Country    string
	Date       string
	Hour       int

	// Successful-request detail (populated by SuccessParser only)
	UserAgent    string
	Referer      string
	ResponseSize *int64
}

// ClientAddr returns the client address used for the country lookup.
func (e *Entry) ClientAddr() string {
	return e.IP
}

// SetCountry records the resolved country name on the entry.
func (e *Entry) SetCountry(country string) {
	e.Country = country
}
