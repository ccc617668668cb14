package access

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	parsers "geostats/internal/parser"

	"github.com/pterm/pterm"
)

const (
	// DateLayout is the access log day format, kept verbatim in Entry.Date
	DateLayout = "02/Jan/2006"

	UnknownMethod  = "UNKNOWN"
	DefaultURL     = "/"
	NoStatus       = "000"
	UnknownCountry = "Unknown"
)

var (
	// Full form: <ip> - - [<day>/<mon>/<year>:<time> <tz>] "<METHOD> <url> <proto>" <status>
	// The time of day is matched but not kept.
	fullPattern = regexp.MustCompile(
		`^([0-9A-Fa-f:.]+) - - \[(\d{2}/\w{3}/\d{4}):[^\]]+\] "(\w+) ([^ ]+) [^"]+" (\d{3})`)

	// Basic form: <ip> - - [<day>/<mon>/<year>
	basicPattern = regexp.MustCompile(
		`^([0-9A-Fa-f:.]+) - - \[(\d{2}/\w{3}/\d{4})`)
)

// Parser implements the two-tier access log grammar
type Parser struct {
	logger *pterm.Logger
}

// NewParser creates a new access log parser
func NewParser(logger *pterm.Logger) *Parser {
	return &Parser{
		logger: logger,
	}
}

// Name returns the parser name
func (p *Parser) Name() string {
	return "access"
}

// CanParse reports whether the line matches either tier of the grammar
func (p *Parser) CanParse(line string) bool {
	return fullPattern.MatchString(line) || basicPattern.MatchString(line)
}

// Parse converts a raw access log line into an Entry.
// The full form is tried first; the basic form is the fallback.
func (p *Parser) Parse(line string) (*Entry, error) {
	if strings.TrimSpace(line) == "" {
		return nil, parsers.ErrEmptyLine
	}

	if m := fullPattern.FindStringSubmatch(line); m != nil {
		day, err := parseDate(m[2])
		if err != nil {
			return nil, err
		}
		entry := &Entry{
			IP:         m[1],
			Timestamp:  day,
			Method:     m[3],
			URL:        m[4],
			StatusCode: m[5],
			Country:    UnknownCountry,
			Date:       m[2],
			Hour:       day.Hour(),
		}
		p.logger.Trace("Parsed access line (full form)",
			p.logger.Args("ip", entry.IP, "method", entry.Method, "url", entry.URL, "status", entry.StatusCode))
		return entry, nil
	}

	if m := basicPattern.FindStringSubmatch(line); m != nil {
		day, err := parseDate(m[2])
		if err != nil {
			return nil, err
		}
		entry := &Entry{
			IP:         m[1],
			Timestamp:  day,
			Method:     UnknownMethod,
			URL:        DefaultURL,
			StatusCode: NoStatus,
			Country:    UnknownCountry,
			Date:       m[2],
			Hour:       day.Hour(),
		}
		p.logger.Trace("Parsed access line (basic form)", p.logger.Args("ip", entry.IP, "date", entry.Date))
		return entry, nil
	}

	return nil, parsers.ErrNoMatch
}

// parseDate parses the day of an access line; entries carry midnight of that day
func parseDate(date string) (time.Time, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", parsers.ErrInvalidTimestamp, date, err)
	}
	return day, nil
}
