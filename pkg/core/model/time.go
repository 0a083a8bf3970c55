package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidTime is returned when a time-of-day string cannot be parsed
var ErrInvalidTime = errors.New("invalid time")

// Time is a clock time within a single day (no date, no timezone)
type Time struct {
	Hour   uint8
	Minute uint8
}

// NewTime creates a Time without validation. Use ParseTime for untrusted input.
func NewTime(hour, minute uint8) Time {
	return Time{Hour: hour, Minute: minute}
}

// ParseTime parses a time of day in either fixed-width "HHMM" or "H:MM"/"HH:MM" form.
// Hours must be in [0, 24) and minutes in [0, 60).
func ParseTime(s string) (Time, error) {
	s = strings.TrimSpace(s)

	var hourStr, minStr string
	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		hourStr, minStr = s[:idx], s[idx+1:]
		if len(minStr) != 2 || len(hourStr) == 0 || len(hourStr) > 2 {
			return Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
	} else {
		if len(s) != 4 {
			return Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		hourStr, minStr = s[:2], s[2:]
	}

	hour, err := strconv.ParseUint(hourStr, 10, 8)
	if err != nil {
		return Time{}, fmt.Errorf("%w: bad hour in %q", ErrInvalidTime, s)
	}
	minute, err := strconv.ParseUint(minStr, 10, 8)
	if err != nil {
		return Time{}, fmt.Errorf("%w: bad minute in %q", ErrInvalidTime, s)
	}

	if hour >= 24 {
		return Time{}, fmt.Errorf("%w: hour %d out of range", ErrInvalidTime, hour)
	}
	if minute >= 60 {
		return Time{}, fmt.Errorf("%w: minute %d out of range", ErrInvalidTime, minute)
	}

	return Time{Hour: uint8(hour), Minute: uint8(minute)}, nil
}

// MustParseTime is like ParseTime but panics on error. Intended for constants and tests.
func MustParseTime(s string) Time {
	t, err := ParseTime(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Minutes returns the offset of this time from midnight in minutes
func (t Time) Minutes() uint16 {
	return uint16(t.Hour)*60 + uint16(t.Minute)
}

// Compare returns -1, 0 or 1 ordering by hour then minute
func (t Time) Compare(other Time) int {
	switch {
	case t.Hour < other.Hour:
		return -1
	case t.Hour > other.Hour:
		return 1
	case t.Minute < other.Minute:
		return -1
	case t.Minute > other.Minute:
		return 1
	}
	return 0
}

func (t Time) Before(other Time) bool {
	return t.Compare(other) < 0
}

func (t Time) After(other Time) bool {
	return t.Compare(other) > 0
}

// String formats the time as "HH:MM"
func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// MarshalText implements encoding.TextMarshaler (used by JSON and YAML)
func (t Time) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *Time) UnmarshalText(text []byte) error {
	parsed, err := ParseTime(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
