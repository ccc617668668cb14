package parsers

import "errors"

// Parse failures. Parsers wrap these with context so callers can match them
// with errors.Is and count rejected lines by reason.
var (
	ErrEmptyLine        = errors.New("empty log line")
	ErrNoMatch          = errors.New("line does not match log format")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrNotSuccessful    = errors.New("status is not successful")
)

// Reason returns a short label for a parse failure, used for run counters.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyLine):
		return "empty"
	case errors.Is(err, ErrNoMatch):
		return "no_match"
	case errors.Is(err, ErrInvalidTimestamp):
		return "invalid_timestamp"
	case errors.Is(err, ErrNotSuccessful):
		return "not_successful"
	default:
		return "other"
	}
}
