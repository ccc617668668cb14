package logging

import (
	"strings"

	"github.com/pterm/pterm"
)

var levels = map[string]pterm.LogLevel{
	"trace":    pterm.LogLevelTrace,
	"debug":    pterm.LogLevelDebug,
	"info":     pterm.LogLevelInfo,
	"warn":     pterm.LogLevelWarn,
	"warning":  pterm.LogLevelWarn,
	"error":    pterm.LogLevelError,
	"disabled": pterm.LogLevelDisabled,
}

// ParseLevel maps a level name to a pterm level; unknown names map to info
func ParseLevel(name string) (pterm.LogLevel, bool) {
	level, ok := levels[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return pterm.LogLevelInfo, false
	}
	return level, true
}

// New creates the application logger
func New(level string) *pterm.Logger {
	lvl, ok := ParseLevel(level)
	logger := pterm.DefaultLogger.
		WithLevel(lvl).
		WithTime(true)

	if !ok && level != "" {
		logger.Warn("Unknown log level, using info", logger.Args("level", level))
	}
	return logger
}
