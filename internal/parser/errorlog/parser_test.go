package errorlog

import (
	"errors"
	"testing"

	parsers "geostats/internal/parser"

	"github.com/pterm/pterm"
)

func TestParser_Parse_ValidLine(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	parser := NewParser(logger)

	line := `2024/01/10 13:45:02 [error] 1234#0: *5 open() failed (2: No such file or directory), client: 203.0.113.5, server: example.com, request: "GET /missing HTTP/1.1", host: "example.com"`

	if !parser.CanParse(line) {
		t.Fatal("Expected parser to accept error line")
	}

	entry, err := parser.Parse(line)
	if err != nil {
		t.Fatalf("Failed to parse valid error line: %v", err)
	}

	if entry.Level != "error" {
		t.Errorf("Expected Level 'error', got '%s'", entry.Level)
	}
	if entry.PID != 1234 {
		t.Errorf("Expected PID 1234, got %d", entry.PID)
	}
	if entry.TID != 0 {
		t.Errorf("Expected TID 0, got %d", entry.TID)
	}
	if entry.ClientID != 5 {
		t.Errorf("Expected ClientID 5, got %d", entry.ClientID)
	}
	if entry.ClientIP != "203.0.113.5" {
		t.Errorf("Expected ClientIP '203.0.113.5', got '%s'", entry.ClientIP)
	}
	if entry.Message != "open() failed (2: No such file or directory)" {
		t.Errorf("Unexpected Message '%s'", entry.Message)
	}
	if entry.ErrorType != TypeOther {
		t.Errorf("Expected ErrorType '%s', got '%s'", TypeOther, entry.ErrorType)
	}
	if entry.HTTPMethod != "GET" {
		t.Errorf("Expected HTTPMethod 'GET', got '%s'", entry.HTTPMethod)
	}
	if entry.URLPath != "/missing" {
		t.Errorf("Expected URLPath '/missing', got '%s'", entry.URLPath)
	}
	if entry.Date != "2024-01-10" {
		t.Errorf("Expected Date '2024-01-10', got '%s'", entry.Date)
	}
	if entry.Hour != 13 {
		t.Errorf("Expected Hour 13, got %d", entry.Hour)
	}
	if entry.Referrer != "" {
		t.Errorf("Expected empty Referrer, got '%s'", entry.Referrer)
	}
	if entry.Server != "example.com" || entry.Host != "example.com" {
		t.Errorf("Unexpected server/host '%s'/'%s'", entry.Server, entry.Host)
	}
}

func TestParser_Parse_WithReferrer(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	parser := NewParser(logger)

	line := `2024/02/01 00:05:59 [crit] 77#3: *901 connect() failed (111: Connection refused) while connecting to upstream, client: 2001:db8::7, server: api.local, request: "POST /v1/items HTTP/2.0", host: "api.local", referrer: "https://api.local/ui"`

	entry, err := parser.Parse(line)
	if err != nil {
		t.Fatalf("Failed to parse error line with referrer: %v", err)
	}

	if entry.Referrer != "https://api.local/ui" {
		t.Errorf("Expected Referrer 'https://api.local/ui', got '%s'", entry.Referrer)
	}
	if entry.ClientIP != "2001:db8::7" {
		t.Errorf("Expected IPv6 client, got '%s'", entry.ClientIP)
	}
	// nginx capitalizes the system error text, which the keyword does not match
	if entry.ErrorType != TypeOther {
		t.Errorf("Expected ErrorType '%s', got '%s'", TypeOther, entry.ErrorType)
	}
	if entry.Level != "crit" {
		t.Errorf("Expected Level 'crit', got '%s'", entry.Level)
	}
}

func TestParser_Parse_Rejected(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	parser := NewParser(logger)

	testCases := []struct {
		name string
		line string
		want error
	}{
		{"empty", "", parsers.ErrEmptyLine},
		{"garbage", "not a log line at all", parsers.ErrNoMatch},
		{"no client section", `2024/01/10 13:45:02 [notice] 1#1: signal process started`, parsers.ErrNoMatch},
		{"bad date", `2024/13/40 13:45:02 [error] 1#0: *1 boom, client: 1.2.3.4, server: s, request: "GET / HTTP/1.1", host: "h"`, parsers.ErrInvalidTimestamp},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			entry, err := parser.Parse(tc.line)
			if entry != nil {
				t.Errorf("Expected nil entry, got %+v", entry)
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestClassifyError(t *testing.T) {
	testCases := []struct {
		message  string
		expected string
	}{
		{"directory index of \"/var/www/\" is forbidden", TypeDirectoryIndex},
		{"client intended to send too large body: 2000000 bytes", TypeBodyTooLarge},
		{"connect() failed (111: Connection refused)", TypeOther},
		{"connect() failed: connection refused by upstream", TypeConnRefused},
		{"Directory index of \"/var/www/\" is forbidden", TypeOther},
		{"upstream TIMEOUT", TypeOther},
		{"upstream timed out (110: Connection timed out)", TypeOther},
		{"upstream timeout while reading", TypeTimeout},
		{"\"/var/www/x\" is not found", TypeNotFound},
		{"directory index forbidden, then timeout", TypeDirectoryIndex},
		{"something unexpected", TypeOther},
	}

	for _, tc := range testCases {
		if got := ClassifyError(tc.message); got != tc.expected {
			t.Errorf("ClassifyError(%q): expected '%s', got '%s'", tc.message, tc.expected, got)
		}
	}
}

func TestSplitRequest(t *testing.T) {
	testCases := []struct {
		request, method, path string
	}{
		{"GET /missing HTTP/1.1", "GET", "/missing"},
		{"DELETE /a/b", "DELETE", "/a/b"},
		{"garbage", UnknownMethod, DefaultURL},
		{"", UnknownMethod, DefaultURL},
	}

	for _, tc := range testCases {
		method, path := SplitRequest(tc.request)
		if method != tc.method || path != tc.path {
			t.Errorf("SplitRequest(%q): expected (%s, %s), got (%s, %s)", tc.request, tc.method, tc.path, method, path)
		}
	}
}
