package errorlog

import (
	"time"
)

// Entry represents one accepted nginx error log line
type Entry struct {
	Timestamp time.Time
	Level     string
	PID       int
	TID       int
	ClientID  int
	Message   string
	ClientIP  string
	Server    string
	Request   string
	Host      string
	Referrer  string // empty when the line has no referrer suffix

	// Derived fields
	Date       string
	Hour       int
	Country    string
	ErrorType  string
	URLPath    string
	HTTPMethod string
}

// ClientAddr returns the client address used for the country lookup.
func (e *Entry) ClientAddr() string {
	return e.ClientIP
}

// SetCountry records the resolved country name on the entry.
func (e *Entry) SetCountry(country string) {
	e.Country = country
}
