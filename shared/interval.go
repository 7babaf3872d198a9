package shared

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// secondsPerDay is the number of seconds in a calendar day.
	secondsPerDay = 86400
	// minutesPerDay is the number of minutes in a calendar day.
	minutesPerDay = 1440
	// hoursPerDay is the number of hours in a calendar day.
	hoursPerDay = 24
)

// ErrUnsupportedInterval indicates a sampling interval window normalization
// cannot reconcile with a calendar day lookback.
var ErrUnsupportedInterval = errors.New("unsupported interval type for window normalization")

// IntervalType represents the sampling granularity of a price history.
type IntervalType int

const (
	Second IntervalType = iota
	Minute
	Hour
	Day
	Week
	Month
	Quarter
	Year
)

// String stringifies the provided interval type.
func (t *IntervalType) String() string {
	switch *t {
	case Second:
		return "S"
	case Minute:
		return "MIN"
	case Hour:
		return "H"
	case Day:
		return "D"
	case Week:
		return "W"
	case Month:
		return "M"
	case Quarter:
		return "Q"
	case Year:
		return "Y"
	default:
		return "unknown"
	}
}

// ParseIntervalType parses an interval type from the provided string.
func ParseIntervalType(interval string) (IntervalType, error) {
	switch strings.ToLower(interval) {
	case "second", "s":
		return Second, nil
	case "minute", "min":
		return Minute, nil
	case "hour", "h":
		return Hour, nil
	case "day", "d":
		return Day, nil
	case "week", "w":
		return Week, nil
	case "month", "m":
		return Month, nil
	case "quarter", "q":
		return Quarter, nil
	case "year", "y":
		return Year, nil
	default:
		return 0, fmt.Errorf("unknown interval type: %s", interval)
	}
}

// NormalizeWindow converts a lookback window expressed in calendar days into
// an observation count for the provided sampling interval. Monthly and
// coarser intervals return zero observations, the caller must resample to
// one observation per period instead of windowing by count.
func NormalizeWindow(intervalType IntervalType, interval int, windowInDays int) (int, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive, got %d", interval)
	}
	if windowInDays <= 0 {
		return 0, fmt.Errorf("window must be positive, got %d days", windowInDays)
	}

	switch intervalType {
	case Second:
		return (windowInDays * secondsPerDay) / interval, nil
	case Minute:
		return (windowInDays * minutesPerDay) / interval, nil
	case Hour:
		return (windowInDays * hoursPerDay) / interval, nil
	case Day:
		return windowInDays / interval, nil
	case Month, Quarter, Year:
		return 0, nil
	default:
		return 0, ErrUnsupportedInterval
	}
}
