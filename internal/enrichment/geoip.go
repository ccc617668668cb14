// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package enrichment

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/oschwald/geoip2-golang"
	"github.com/pterm/pterm"
)

// UnknownCountry is returned for every IP that cannot be resolved
const UnknownCountry = "Unknown"

// ErrInvalidIP is returned by a Lookup for text that is not an IP address
var ErrInvalidIP = errors.New("invalid IP address")

// Lookup is a country lookup backend
type Lookup interface {
	Country(ip net.IP) (string, error)
	Close() error
}

// Opener opens a lookup backend from a database path
type Opener func(path string) (Lookup, error)

// GeoIPLookup is a Lookup backed by a MaxMind country database
type GeoIPLookup struct {
	reader *geoip2.Reader
}

// OpenGeoIP opens a GeoLite2/GeoIP2 country database behind a cache of
// cacheSize answers
func OpenGeoIP(path string, cacheSize int) (*CachedLookup, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database %s: %w", path, err)
	}

	return NewCachedLookup(&GeoIPLookup{reader: reader}, cacheSize), nil
}

// GeoIPOpener returns an Opener for OpenGeoIP with the given cache size
func GeoIPOpener(cacheSize int) Opener {
	return func(path string) (Lookup, error) {
		lookup, err := OpenGeoIP(path, cacheSize)
		if err != nil {
			return nil, err
		}
		return lookup, nil
	}
}

// Country returns the ISO country code of ip, empty when the database has none
func (g *GeoIPLookup) Country(ip net.IP) (string, error) {
	record, err := g.reader.Country(ip)
	if err != nil {
		return "", err
	}
	return record.Country.IsoCode, nil
}

// Close releases the database
func (g *GeoIPLookup) Close() error {
	return g.reader.Close()
}

// CachedLookup keeps a bounded in-memory map of answers from another Lookup.
// Failed lookups are not cached.
type CachedLookup struct {
	backend Lookup
	cache   map[string]string
	mu      sync.RWMutex
	size    int
}

// NewCachedLookup wraps backend with a cache of at most size entries
func NewCachedLookup(backend Lookup, size int) *CachedLookup {
	if size <= 0 {
		size = 10000
	}
	return &CachedLookup{
		backend: backend,
		cache:   make(map[string]string, size),
		size:    size,
	}
}

// Country answers from the cache, falling back to the backend
func (c *CachedLookup) Country(ip net.IP) (string, error) {
	key := ip.String()

	c.mu.RLock()
	code, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return code, nil
	}

	code, err := c.backend.Country(ip)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	if len(c.cache) >= c.size {
		// Evict ~10% of entries when full
		toEvict := c.size / 10
		if toEvict == 0 {
			toEvict = 1
		}
		for k := range c.cache {
			delete(c.cache, k)
			toEvict--
			if toEvict <= 0 {
				break
			}
		}
	}
	c.cache[key] = code
	c.mu.Unlock()

	return code, nil
}

// Len returns the number of cached answers
func (c *CachedLookup) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Close releases the backend
func (c *CachedLookup) Close() error {
	return c.backend.Close()
}

// CountryResolver maps IP text to a country code and never fails.
// When the backend could not be opened every call returns UnknownCountry.
type CountryResolver struct {
	backend Lookup
	logger  *pterm.Logger
	once    sync.Once
}

// NewCountryResolver opens the backend at path. An open failure is logged
// as a warning and leaves the resolver disabled.
func NewCountryResolver(open Opener, path string, logger *pterm.Logger) *CountryResolver {
	r := &CountryResolver{logger: logger}

	backend, err := open(path)
	if err != nil {
		logger.Warn("GeoIP database not available, countries will be Unknown",
			logger.Args("path", path, "error", err))
		return r
	}

	r.backend = backend
	logger.Info("Loaded GeoIP database", logger.Args("path", path))
	return r
}

// Enabled reports whether a backend is available
func (r *CountryResolver) Enabled() bool {
	return r.backend != nil
}

// Resolve returns the country code of ip or UnknownCountry
func (r *CountryResolver) Resolve(ip string) string {
	if r.backend == nil {
		return UnknownCountry
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		r.logger.Debug("Invalid IP address for GeoIP lookup", r.logger.Args("ip", ip, "error", ErrInvalidIP))
		return UnknownCountry
	}

	code, err := r.backend.Country(parsed)
	if err != nil {
		r.logger.Debug("GeoIP lookup failed", r.logger.Args("ip", ip, "error", err))
		return UnknownCountry
	}
	if code == "" {
		return UnknownCountry
	}

	r.logger.Trace("GeoIP lookup successful", r.logger.Args("ip", ip, "country", code))
	return code
}

// Close releases the backend. Safe to call more than once.
func (r *CountryResolver) Close() error {
	var err error
	r.once.Do(func() {
		if r.backend != nil {
			err = r.backend.Close()
		}
	})
	return err
}
