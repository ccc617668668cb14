package errorlog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	parsers "geostats/internal/parser"

	"github.com/pterm/pterm"
)

const (
	TimestampLayout = "2006/01/02 15:04:05"
	DateLayout      = "2006-01-02"

	UnknownMethod  = "UNKNOWN"
	DefaultURL     = "/"
	UnknownCountry = "Unknown"
)

// Error type labels
const (
	TypeDirectoryIndex = "Directory Index Forbidden"
	TypeBodyTooLarge   = "Request Body Too Large"
	TypeConnRefused    = "Connection Refused"
	TypeTimeout        = "Timeout"
	TypeNotFound       = "Not Found"
	TypeOther          = "Other"
)

var errorPattern = regexp.MustCompile(
	`^(\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}) \[(\w+)\] (\d+)#(\d+): \*(\d+) (.+?), client: ([0-9A-Fa-f:.]+), server: ([^,]+), request: "([^"]+)", host: "([^"]+)"(?:, referrer: "([^"]+)")?$`)

// errorTypes is checked in order, first match wins
var errorTypes = []struct {
	keyword string
	label   string
}{
	{"directory index", TypeDirectoryIndex},
	{"client intended to send too large body", TypeBodyTooLarge},
	{"connection refused", TypeConnRefused},
	{"timeout", TypeTimeout},
	{"not found", TypeNotFound},
}

// Parser handles the nginx error log format
type Parser struct {
	logger *pterm.Logger
}

// NewParser creates a new error log parser
func NewParser(logger *pterm.Logger) *Parser {
	return &Parser{
		logger: logger,
	}
}

// Name returns the parser name
func (p *Parser) Name() string {
	return "error"
}

// CanParse checks if the line matches the error log grammar
func (p *Parser) CanParse(line string) bool {
	return errorPattern.MatchString(line)
}

// Parse converts a raw error log line into an Entry
func (p *Parser) Parse(line string) (*Entry, error) {
	if strings.TrimSpace(line) == "" {
		return nil, parsers.ErrEmptyLine
	}

	m := errorPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, parsers.ErrNoMatch
	}

	ts, err := time.Parse(TimestampLayout, m[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", parsers.ErrInvalidTimestamp, m[1], err)
	}

	pid, err := strconv.Atoi(m[3])
	if err != nil {
		return nil, fmt.Errorf("%w: pid %q", parsers.ErrNoMatch, m[3])
	}
	tid, err := strconv.Atoi(m[4])
	if err != nil {
		return nil, fmt.Errorf("%w: tid %q", parsers.ErrNoMatch, m[4])
	}
	clientID, err := strconv.Atoi(m[5])
	if err != nil {
		return nil, fmt.Errorf("%w: connection %q", parsers.ErrNoMatch, m[5])
	}

	method, path := SplitRequest(m[9])

	entry := &Entry{
		Timestamp:  ts,
		Level:      m[2],
		PID:        pid,
		TID:        tid,
		ClientID:   clientID,
		Message:    m[6],
		ClientIP:   m[7],
		Server:     m[8],
		Request:    m[9],
		Host:       m[10],
		Referrer:   m[11],
		Date:       ts.Format(DateLayout),
		Hour:       ts.Hour(),
		Country:    UnknownCountry,
		ErrorType:  ClassifyError(m[6]),
		URLPath:    path,
		HTTPMethod: method,
	}

	p.logger.Trace("Parsed error line",
		p.logger.Args("level", entry.Level, "client", entry.ClientIP, "type", entry.ErrorType))

	return entry, nil
}

// ClassifyError maps a free-text message to an error type label.
// Keywords are matched as written, first match in order wins.
func ClassifyError(message string) string {
	for _, t := range errorTypes {
		if strings.Contains(message, t.keyword) {
			return t.label
		}
	}
	return TypeOther
}

// SplitRequest returns the method and path of a raw request line,
// or (UNKNOWN, /) when the line has fewer than two tokens
func SplitRequest(request string) (method, path string) {
	parts := strings.Split(request, " ")
	if len(parts) < 2 {
		return UnknownMethod, DefaultURL
	}
	return parts[0], parts[1]
}
