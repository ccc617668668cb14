package ingestion

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"geostats/internal/enrichment"
	"geostats/internal/stats"

	"github.com/pterm/pterm"
)

const accessFixture = `203.0.113.5 - - [10/Jan/2024:13:45:02 +0000] "GET /index.html HTTP/1.1" 200 512 "-" "Mozilla/5.0 (X11)"
198.51.100.7 - - [10/Jan/2024:14:00:00 +0000] "POST /login HTTP/1.1" 302 0 "https://example.com/" "Mozilla/5.0 (X11)"
10.0.0.1 - - [11/Jan/2024:09:00:00 +0000] "GET / HTTP/1.1" 200 10 "-" "curl/8.0"
not a log line at all
192.0.2.9 - - [12/Jan/2024:23:59:59 +0000] "GET /a HTTP/1.1" 404 0 "-" "Mozilla/5.0 (X11)"
`

const errorFixture = `2024/01/10 13:45:02 [error] 1234#0: *5 open() failed (2: No such file or directory), client: 203.0.113.5, server: example.com, request: "GET /missing HTTP/1.1", host: "example.com"
2024/01/10 13:46:00 [error] 1234#0: *6 directory index of "/var/www/" is forbidden, client: 192.0.2.9, server: example.com, request: "GET / HTTP/1.1", host: "example.com"
2024/01/10 13:47:00 [warn] 1234#0: *7 upstream timeout, client: 10.0.0.1, server: example.com, request: "GET / HTTP/1.1", host: "example.com"
`

type fakeLookup struct {
	codes  map[string]string
	closed bool
}

func (f *fakeLookup) Country(ip net.IP) (string, error) {
	code, ok := f.codes[ip.String()]
	if !ok {
		return "", errors.New("address not found")
	}
	return code, nil
}

func (f *fakeLookup) Close() error {
	f.closed = true
	return nil
}

type observed struct {
	mu    sync.Mutex
	kinds []string
	runs  map[string]stats.RunStats
}

func (o *observed) Observe(kind string, run stats.RunStats, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.runs == nil {
		o.runs = make(map[string]stats.RunStats)
	}
	o.kinds = append(o.kinds, kind)
	o.runs[kind] = run
}

func newTestAnalyzer(dir string, lookup *fakeLookup, obs Observer) *Analyzer {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	opener := func(string) (enrichment.Lookup, error) { return lookup, nil }
	return NewAnalyzer(Options{
		LogDir:           dir,
		GeoIPDB:          "test.mmdb",
		SelfIPs:          []string{"10.0.0.1"},
		ExcludeCountries: []string{"de"},
		TopN:             10,
	}, opener, obs, logger)
}

func fixtureLookup() *fakeLookup {
	return &fakeLookup{codes: map[string]string{
		"203.0.113.5":  "US",
		"198.51.100.7": "DE",
		"10.0.0.1":     "US",
	}}
}

func TestAnalyzer_RunAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "access.log"), accessFixture)
	writeFile(t, filepath.Join(dir, "error.log"), errorFixture)

	lookup := fixtureLookup()
	obs := &observed{}
	results, err := newTestAnalyzer(dir, lookup, obs).RunAll(context.Background())
	if err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}

	a := results.Access
	if a.TotalRequests != 2 {
		t.Errorf("Expected 2 access requests, got %d", a.TotalRequests)
	}
	if a.RequestsByCountry.Get("US") != 1 || a.RequestsByCountry.Get("Unknown") != 1 {
		t.Errorf("Unexpected countries %v", a.RequestsByCountry.Map())
	}
	if a.Run.FilteredSelfIP != 1 || a.Run.FilteredCountry != 1 || a.Run.Unparsed != 1 || a.Run.LinesRead != 5 {
		t.Errorf("Unexpected access run %+v", a.Run)
	}
	if a.RequestsByMethod.Total() != a.TotalRequests {
		t.Errorf("Expected method sum %d, got %d", a.TotalRequests, a.RequestsByMethod.Total())
	}

	e := results.Errors
	if e.TotalErrors != 2 {
		t.Errorf("Expected 2 errors, got %d", e.TotalErrors)
	}
	if e.ErrorsByErrorType.Get("Directory Index Forbidden") != 1 || e.ErrorsByErrorType.Get("Other") != 1 {
		t.Errorf("Unexpected error types %v", e.ErrorsByErrorType.Map())
	}

	s := results.Successful
	if s.TotalSuccessfulRequests != 1 || s.UniqueIPs != 1 {
		t.Errorf("Expected 1 successful request from 1 IP, got %d/%d", s.TotalSuccessfulRequests, s.UniqueIPs)
	}
	if s.Run.NotSuccessful != 2 {
		t.Errorf("Expected 2 non-2xx lines, got %d", s.Run.NotSuccessful)
	}
	if len(s.Details) != 1 || s.Details[0].Country != "US" || s.Details[0].Date != "2024-01-10" {
		t.Errorf("Unexpected details %+v", s.Details)
	}

	if !lookup.closed {
		t.Error("Expected GeoIP backend to be closed after the run")
	}
	if !reflect.DeepEqual(obs.kinds, []string{KindAccess, KindError, KindSuccessful}) {
		t.Errorf("Unexpected observed kinds %v", obs.kinds)
	}
	if obs.runs[KindAccess].FilesFound != 1 {
		t.Errorf("Expected 1 access file found, got %d", obs.runs[KindAccess].FilesFound)
	}
}

func TestAnalyzer_GzipMatchesPlain(t *testing.T) {
	plainDir := t.TempDir()
	gzipDir := t.TempDir()
	writeFile(t, filepath.Join(plainDir, "access.log"), accessFixture)
	writeFile(t, filepath.Join(plainDir, "error.log"), errorFixture)
	writeGzip(t, filepath.Join(gzipDir, "access.log.1.gz"), accessFixture)
	writeGzip(t, filepath.Join(gzipDir, "error.log.1.gz"), errorFixture)

	ctx := context.Background()
	plain, err := newTestAnalyzer(plainDir, fixtureLookup(), nil).RunAll(ctx)
	if err != nil {
		t.Fatalf("Plain run failed: %v", err)
	}
	compressed, err := newTestAnalyzer(gzipDir, fixtureLookup(), nil).RunAll(ctx)
	if err != nil {
		t.Fatalf("Gzip run failed: %v", err)
	}

	if !reflect.DeepEqual(plain.Access, compressed.Access) {
		t.Error("Expected identical access snapshots for plain and gzip input")
	}
	if !reflect.DeepEqual(plain.Errors, compressed.Errors) {
		t.Error("Expected identical error snapshots for plain and gzip input")
	}
	if !reflect.DeepEqual(plain.Successful.Records(), compressed.Successful.Records()) {
		t.Error("Expected identical successful records for plain and gzip input")
	}
}

func TestAnalyzer_NoFiles(t *testing.T) {
	lookup := fixtureLookup()
	a := newTestAnalyzer(filepath.Join(t.TempDir(), "missing"), lookup, nil)

	s, err := a.AnalyzeAccess(context.Background())
	if err != nil {
		t.Fatalf("Expected nil error for empty input, got %v", err)
	}
	if s.TotalRequests != 0 || s.RequestsByCountry == nil {
		t.Errorf("Expected empty initialized snapshot, got %+v", s)
	}
	if lookup.closed {
		t.Error("Expected backend to stay unopened without input files")
	}
}

func TestAnalyzer_CorruptFileDoesNotAbortBatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "access.log"), accessFixture)
	writeFile(t, filepath.Join(dir, "access.log.2.gz"), "not gzip at all\n")

	s, err := newTestAnalyzer(dir, fixtureLookup(), nil).AnalyzeAccess(context.Background())
	if err != nil {
		t.Fatalf("AnalyzeAccess failed: %v", err)
	}
	if s.TotalRequests != 2 {
		t.Errorf("Expected 2 requests from the readable file, got %d", s.TotalRequests)
	}
	if s.Run.FilesFound != 2 || s.Run.FilesProcessed != 1 || s.Run.FilesFailed != 1 {
		t.Errorf("Unexpected file counters %+v", s.Run)
	}
}

func TestAnalyzer_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "access.log"), accessFixture)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lookup := fixtureLookup()
	if _, err := newTestAnalyzer(dir, lookup, nil).AnalyzeAccess(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if !lookup.closed {
		t.Error("Expected backend to be closed on cancellation")
	}
}
