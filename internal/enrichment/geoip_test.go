package enrichment

import (
	"errors"
	"net"
	"path/filepath"
	"testing"

	"github.com/pterm/pterm"
)

type fakeLookup struct {
	codes  map[string]string
	calls  int
	closed int
}

func (f *fakeLookup) Country(ip net.IP) (string, error) {
	f.calls++
	code, ok := f.codes[ip.String()]
	if !ok {
		return "", errors.New("address not found")
	}
	return code, nil
}

func (f *fakeLookup) Close() error {
	f.closed++
	return nil
}

func openerFor(l Lookup) Opener {
	return func(string) (Lookup, error) { return l, nil }
}

func TestCountryResolver_Resolve(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	backend := &fakeLookup{codes: map[string]string{
		"203.0.113.5": "US",
		"2001:db8::1": "DE",
		"192.0.2.1":   "",
	}}

	r := NewCountryResolver(openerFor(backend), "ignored", logger)
	if !r.Enabled() {
		t.Fatal("Expected resolver to be enabled")
	}

	testCases := []struct {
		ip       string
		expected string
	}{
		{"203.0.113.5", "US"},
		{"2001:db8::1", "DE"},
		{"192.0.2.1", UnknownCountry},
		{"198.51.100.9", UnknownCountry},
		{"not-an-ip", UnknownCountry},
		{"", UnknownCountry},
	}

	for _, tc := range testCases {
		if got := r.Resolve(tc.ip); got != tc.expected {
			t.Errorf("Resolve(%q): expected '%s', got '%s'", tc.ip, tc.expected, got)
		}
	}

	// Malformed input never reaches the backend
	if backend.calls != 4 {
		t.Errorf("Expected 4 backend calls, got %d", backend.calls)
	}
}

func TestCountryResolver_OpenFailure(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	failing := func(string) (Lookup, error) { return nil, errors.New("no such file") }

	r := NewCountryResolver(failing, "missing.mmdb", logger)
	if r.Enabled() {
		t.Error("Expected resolver to be disabled")
	}
	if got := r.Resolve("203.0.113.5"); got != UnknownCountry {
		t.Errorf("Expected '%s', got '%s'", UnknownCountry, got)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Expected nil error closing disabled resolver, got %v", err)
	}
}

func TestCountryResolver_CloseOnce(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	backend := &fakeLookup{}

	r := NewCountryResolver(openerFor(backend), "ignored", logger)
	r.Close()
	r.Close()

	if backend.closed != 1 {
		t.Errorf("Expected backend closed once, got %d", backend.closed)
	}
}

func TestOpenGeoIP_MissingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.mmdb")

	if _, err := OpenGeoIP(path, 10); err == nil {
		t.Error("Expected error opening missing database")
	}

	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	r := NewCountryResolver(GeoIPOpener(10), path, logger)
	if r.Enabled() {
		t.Error("Expected resolver disabled for missing database")
	}
}

func TestCachedLookup_Hit(t *testing.T) {
	backend := &fakeLookup{codes: map[string]string{"203.0.113.5": "US"}}
	c := NewCachedLookup(backend, 10)
	ip := net.ParseIP("203.0.113.5")

	for i := 0; i < 3; i++ {
		code, err := c.Country(ip)
		if err != nil {
			t.Fatalf("Country() failed: %v", err)
		}
		if code != "US" {
			t.Errorf("Expected US, got %q", code)
		}
	}

	if backend.calls != 1 {
		t.Errorf("Expected 1 backend call, got %d", backend.calls)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 cached entry, got %d", c.Len())
	}
}

func TestCachedLookup_FailureNotCached(t *testing.T) {
	backend := &fakeLookup{codes: map[string]string{}}
	c := NewCachedLookup(backend, 10)
	ip := net.ParseIP("198.51.100.7")

	for i := 0; i < 2; i++ {
		if _, err := c.Country(ip); err == nil {
			t.Error("Expected lookup error")
		}
	}

	if backend.calls != 2 {
		t.Errorf("Expected 2 backend calls, got %d", backend.calls)
	}
	if c.Len() != 0 {
		t.Errorf("Expected empty cache, got %d entries", c.Len())
	}
}

func TestCachedLookup_Eviction(t *testing.T) {
	codes := make(map[string]string)
	for i := 1; i <= 21; i++ {
		codes[net.IPv4(10, 0, 0, byte(i)).String()] = "IT"
	}
	backend := &fakeLookup{codes: codes}
	c := NewCachedLookup(backend, 20)

	for i := 1; i <= 20; i++ {
		if _, err := c.Country(net.IPv4(10, 0, 0, byte(i))); err != nil {
			t.Fatalf("Country() failed: %v", err)
		}
	}
	if c.Len() != 20 {
		t.Fatalf("Expected full cache of 20, got %d", c.Len())
	}

	// Full: 2 entries (10%) go before the new one is stored
	if _, err := c.Country(net.IPv4(10, 0, 0, 21)); err != nil {
		t.Fatalf("Country() failed: %v", err)
	}
	if c.Len() != 19 {
		t.Errorf("Expected 19 entries after eviction, got %d", c.Len())
	}

	// The newest answer survives eviction
	calls := backend.calls
	if code, _ := c.Country(net.IPv4(10, 0, 0, 21)); code != "IT" {
		t.Errorf("Expected IT, got %q", code)
	}
	if backend.calls != calls {
		t.Errorf("Expected cached answer for newest entry, backend called %d times", backend.calls-calls)
	}
}

func TestCachedLookup_SmallCacheEvictsOne(t *testing.T) {
	backend := &fakeLookup{codes: map[string]string{
		"192.0.2.1": "FR",
		"192.0.2.2": "ES",
		"192.0.2.3": "PT",
	}}
	c := NewCachedLookup(backend, 3)

	for _, ip := range []string{"192.0.2.1", "192.0.2.2", "192.0.2.3"} {
		if _, err := c.Country(net.ParseIP(ip)); err != nil {
			t.Fatalf("Country(%s) failed: %v", ip, err)
		}
	}
	backend.codes["192.0.2.4"] = "GR"
	if _, err := c.Country(net.ParseIP("192.0.2.4")); err != nil {
		t.Fatalf("Country() failed: %v", err)
	}

	if c.Len() != 3 {
		t.Errorf("Expected 3 entries, got %d", c.Len())
	}
}

func TestCachedLookup_DefaultSizeAndClose(t *testing.T) {
	backend := &fakeLookup{codes: map[string]string{}}
	c := NewCachedLookup(backend, 0)

	if c.size != 10000 {
		t.Errorf("Expected default size 10000, got %d", c.size)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	if backend.closed != 1 {
		t.Errorf("Expected backend closed once, got %d", backend.closed)
	}
}
