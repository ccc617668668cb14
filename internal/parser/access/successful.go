package access

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	parsers "geostats/internal/parser"

	"github.com/pterm/pterm"
)

const (
	minSuccessTokens = 12
	// bracketedLayout matches tokens 3 and 4 joined: [10/Jan/2024:13:45:02 +0000]
	bracketedLayout = "[02/Jan/2006:15:04:05 -0700]"
	// SuccessDateLayout is the Entry.Date format for successful requests
	SuccessDateLayout = "2006-01-02"
)

// SuccessParser is the stricter whitespace-token parser used for
// successful-request analysis. It only accepts 2xx responses.
type SuccessParser struct {
	logger *pterm.Logger
}

// NewSuccessParser creates a new successful-request parser
func NewSuccessParser(logger *pterm.Logger) *SuccessParser {
	return &SuccessParser{
		logger: logger,
	}
}

// Name returns the parser name
func (p *SuccessParser) Name() string {
	return "successful"
}

// IsSuccessful reports whether the status parses as an integer in [200, 300)
func IsSuccessful(status string) bool {
	code, err := strconv.Atoi(status)
	if err != nil {
		return false
	}
	return code >= 200 && code < 300
}

// Parse extracts a successful request from a combined-format line
func (p *SuccessParser) Parse(line string) (entry *Entry, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.WithCaller().Warn("Recovered while parsing log line", p.logger.Args("panic", r))
			entry, err = nil, fmt.Errorf("%w: %v", parsers.ErrNoMatch, r)
		}
	}()

	if strings.TrimSpace(line) == "" {
		return nil, parsers.ErrEmptyLine
	}

	parts := strings.Fields(line)
	if len(parts) < minSuccessTokens {
		return nil, fmt.Errorf("%w: %d tokens", parsers.ErrNoMatch, len(parts))
	}

	ip := parts[0]
	method := strings.Trim(parts[5], `"`)
	url := parts[6]
	status := parts[8]

	if !IsSuccessful(status) {
		return nil, parsers.ErrNotSuccessful
	}

	ts, err := time.Parse(bracketedLayout, parts[3]+" "+parts[4])
	if err != nil {
		p.logger.Debug("Invalid timestamp in access line", p.logger.Args("ip", ip, "error", err))
		return nil, fmt.Errorf("%w: %v", parsers.ErrInvalidTimestamp, err)
	}

	entry = &Entry{
		IP:         ip,
		Timestamp:  ts,
		Method:     method,
		URL:        url,
		StatusCode: status,
		Country:    UnknownCountry,
		Date:       ts.Format(SuccessDateLayout),
		Hour:       ts.Hour(),
	}

	// Heuristics on quoted tokens; later matches win
	for _, part := range parts {
		if !strings.HasPrefix(part, `"`) {
			continue
		}
		switch {
		case strings.Contains(part, "Mozilla"):
			entry.UserAgent = strings.Trim(part, `"`)
		case strings.Contains(part, "http://") || strings.Contains(part, "https://"):
			entry.Referer = strings.Trim(part, `"`)
		}
	}

	if size, err := strconv.ParseInt(parts[len(parts)-1], 10, 64); err == nil {
		entry.ResponseSize = &size
	}

	return entry, nil
}
