package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"geostats/internal/stats"
)

// Default report file names
const (
	SuccessfulDetailsFile = "successful_requests_detailed.csv"
	IPRecordsFile         = "ip_stats.csv"
	ErrorsByDateFile      = "error_stats.csv"
	ErrorsByCountryFile   = "error_country_stats.csv"
	WeeklyFile            = "weekly_country_stats.csv"
)

type csvWriter struct {
	w   *csv.Writer
	buf *bufio.Writer
}

func newCSV(w io.Writer) *csvWriter {
	bw := bufio.NewWriterSize(w, 1<<16)
	return &csvWriter{
		w:   csv.NewWriter(bw),
		buf: bw,
	}
}

func (cw *csvWriter) row(fields ...string) error {
	return cw.w.Write(fields)
}

func (cw *csvWriter) flush() error {
	cw.w.Flush()
	if err := cw.w.Error(); err != nil {
		return err
	}
	return cw.buf.Flush()
}

// WriteFile creates dir/name and hands it to write. The path is returned
// even on failure so the caller can log it.
func WriteFile(dir, name string, write func(io.Writer) error) (path string, err error) {
	path = filepath.Join(dir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return path, fmt.Errorf("failed to create report directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return path, fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close report file: %w", cerr)
		}
	}()

	if err := write(f); err != nil {
		return path, fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}

// WriteSuccessfulDetails writes one row per accepted successful request
func WriteSuccessfulDetails(w io.Writer, records []stats.DetailRecord) error {
	cw := newCSV(w)
	if err := cw.row("ip", "timestamp", "method", "url", "status_code", "country", "date", "hour",
		"user_agent", "referer", "response_size", "browser", "os", "device_type"); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.row(
			r.IP, r.Timestamp, r.Method, r.URL, r.StatusCode, r.Country, r.Date,
			strconv.Itoa(r.Hour), r.UserAgent, r.Referer,
			strconv.FormatInt(r.ResponseSize, 10), r.Browser, r.OS, r.DeviceType,
		); err != nil {
			return err
		}
	}
	return cw.flush()
}

// WriteIPRecords writes the per-request access listing
func WriteIPRecords(w io.Writer, records []stats.IPRecord) error {
	cw := newCSV(w)
	if err := cw.row("ip", "country", "date", "http_code", "method", "query"); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.row(r.IP, r.Country, r.Date, r.HTTPCode, r.Method, r.Query); err != nil {
			return err
		}
	}
	return cw.flush()
}

// WriteErrorsByDate writes the daily error counts, oldest date first
func WriteErrorsByDate(w io.Writer, s *stats.ErrorStats) error {
	dates := s.ErrorsByDate.Keys()
	sort.Strings(dates)

	cw := newCSV(w)
	if err := cw.row("date", "error_count"); err != nil {
		return err
	}
	for _, date := range dates {
		if err := cw.row(date, strconv.Itoa(s.ErrorsByDate.Get(date))); err != nil {
			return err
		}
	}
	return cw.flush()
}

// WriteErrorsByCountry writes error counts per country with their share of the total
func WriteErrorsByCountry(w io.Writer, s *stats.ErrorStats) error {
	cw := newCSV(w)
	if err := cw.row("country", "error_count", "percentage"); err != nil {
		return err
	}
	for _, p := range s.ErrorsByCountry.MostCommon() {
		pct := share(p.Count, s.TotalErrors)
		if err := cw.row(p.Key, strconv.Itoa(p.Count), strconv.FormatFloat(pct, 'f', 2, 64)); err != nil {
			return err
		}
	}
	return cw.flush()
}

// WriteWeekly writes the ISO week x country table
func WriteWeekly(w io.Writer, weekly *stats.Weekly) error {
	cw := newCSV(w)
	if err := cw.row("week", "country", "count"); err != nil {
		return err
	}
	for _, week := range weekly.Weeks() {
		for _, p := range weekly.Week(week).MostCommon() {
			if err := cw.row(week, p.Key, strconv.Itoa(p.Count)); err != nil {
				return err
			}
		}
	}
	return cw.flush()
}

func share(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
