package ingestion

import (
	"strings"
)

// Filter drops entries from self IPs or excluded countries.
// A nil Filter drops nothing.
type Filter struct {
	selfIPs   map[string]struct{}
	countries map[string]struct{}
}

// NewFilter builds a filter; country codes compare case-insensitively
func NewFilter(selfIPs, excludedCountries []string) *Filter {
	f := &Filter{
		selfIPs:   make(map[string]struct{}, len(selfIPs)),
		countries: make(map[string]struct{}, len(excludedCountries)),
	}
	for _, ip := range selfIPs {
		if ip = strings.TrimSpace(ip); ip != "" {
			f.selfIPs[ip] = struct{}{}
		}
	}
	for _, c := range excludedCountries {
		if c = strings.TrimSpace(c); c != "" {
			f.countries[strings.ToUpper(c)] = struct{}{}
		}
	}
	return f
}

// SkipIP reports whether ip is one of the self IPs
func (f *Filter) SkipIP(ip string) bool {
	if f == nil {
		return false
	}
	_, ok := f.selfIPs[ip]
	return ok
}

// SkipCountry reports whether the resolved country is excluded
func (f *Filter) SkipCountry(country string) bool {
	if f == nil {
		return false
	}
	_, ok := f.countries[strings.ToUpper(country)]
	return ok
}
