package selector

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Duration constants.
const (
	Day   = 24 * time.Hour
	Week  = 7 * Day
	Month = 30 * Day // Approximate
)

// ErrInvalidDuration indicates that the duration string could not be parsed.
var ErrInvalidDuration = errors.New("invalid duration format")

// ErrNegativeDuration indicates that a negative duration was provided.
var ErrNegativeDuration = errors.New("duration cannot be negative")

// durationPattern matches duration strings like "3d", "2w", "1mo".
var durationPattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*(d|w|mo|h|m|s)\s*$`)

// ParseDuration parses a human-readable duration string.
// It supports the following formats:
//   - Days: "1d", "3d"
//   - Weeks: "1w", "2w"
//   - Months: "1mo" (30 days per month)
//   - Standard Go duration: "24h", "90m", "1h30m"
//
// Returns ErrInvalidDuration if the format is not recognized.
// Returns ErrNegativeDuration if the value is negative.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidDuration)
	}

	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeDuration
	}

	matches := durationPattern.FindStringSubmatch(s)
	if matches == nil {
		// Try standard Go duration as fallback
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		return d, nil
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	var multiplier time.Duration
	switch strings.ToLower(matches[2]) {
	case "d":
		multiplier = Day
	case "w":
		multiplier = Week
	case "mo":
		multiplier = Month
	case "h":
		multiplier = time.Hour
	case "m":
		multiplier = time.Minute
	case "s":
		multiplier = time.Second
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidDuration, matches[2])
	}

	return time.Duration(value * float64(multiplier)), nil
}
