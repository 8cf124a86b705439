// Package timeutil is the single authority for translating between the
// organization's local wall clock and stored absolute instants. Everything
// else in the system derives calendar dates through it.
package timeutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// TimeFormatError reports a malformed date or wall-clock value. Inputs that
// fail to parse are rejected, never coerced to a default.
type TimeFormatError struct {
	Input  string
	Reason string
}

func (e *TimeFormatError) Error() string {
	return fmt.Sprintf("invalid time value %q: %s", e.Input, e.Reason)
}

// Normalizer converts between local wall-clock times and absolute instants
// under one fixed offset. There is deliberately no DST handling: the
// organization schedules against a flat offset, so a given date+hour always
// maps to exactly one instant.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer builds a Normalizer for a fixed offset given in minutes east
// of UTC (e.g. 540 for UTC+9).
func NewNormalizer(offsetMinutes int) *Normalizer {
	sign := "+"
	m := offsetMinutes
	if m < 0 {
		sign = "-"
		m = -m
	}
	name := fmt.Sprintf("UTC%s%02d:%02d", sign, m/60, m%60)
	return &Normalizer{loc: time.FixedZone(name, offsetMinutes*60)}
}

// Location returns the fixed zone used for all conversions.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// ToInstant converts "HH on calendar date D, local" to an absolute instant.
// hour is expressed in fractional hours (13.5 = 13:30) and may exceed 24 for
// segment ends that run past midnight, up to 48. A segment's calendar date is
// always derived from its start, so starts must stay below 24.
func (n *Normalizer) ToInstant(date string, hour float64) (time.Time, error) {
	day, err := n.parseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	if hour < 0 || hour > 48 {
		return time.Time{}, &TimeFormatError{
			Input:  strconv.FormatFloat(hour, 'g', -1, 64),
			Reason: "hour out of range [0,48]",
		}
	}
	minutes := int(math.Round(hour * 60))
	return day.Add(time.Duration(minutes) * time.Minute), nil
}

// ToInstantClock is ToInstant for "HH:MM" wall-clock strings.
func (n *Normalizer) ToInstantClock(date, clock string) (time.Time, error) {
	h, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return n.ToInstant(date, h)
}

// CalendarDate derives the canonical calendar date of an instant under the
// organization offset.
func (n *Normalizer) CalendarDate(t time.Time) string {
	return t.In(n.loc).Format(dateLayout)
}

// DayWindow returns the [start, end) instants of the local calendar day.
func (n *Normalizer) DayWindow(date string) (time.Time, time.Time, error) {
	day, err := n.parseDate(date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return day, day.Add(24 * time.Hour), nil
}

// Weekday reports the local weekday of a calendar date.
func (n *Normalizer) Weekday(date string) (time.Weekday, error) {
	day, err := n.parseDate(date)
	if err != nil {
		return time.Sunday, err
	}
	return day.Weekday(), nil
}

func (n *Normalizer) parseDate(date string) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, date, n.loc)
	if err != nil {
		return time.Time{}, &TimeFormatError{Input: date, Reason: "want YYYY-MM-DD"}
	}
	return day, nil
}

// ParseClock converts "HH:MM" to fractional hours. Hours up to 47 are
// accepted so ranges ending past midnight ("22:00-31:00") stay expressible.
func ParseClock(clock string) (float64, error) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return 0, &TimeFormatError{Input: clock, Reason: "want HH:MM"}
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 47 {
		return 0, &TimeFormatError{Input: clock, Reason: "bad hour"}
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || len(parts[1]) != 2 {
		return 0, &TimeFormatError{Input: clock, Reason: "bad minute"}
	}
	return float64(h) + float64(m)/60, nil
}

// ParseHourRange converts a contract-style "HH:MM-HH:MM" range to fractional
// start/end hours, requiring start < end.
func ParseHourRange(r string) (float64, float64, error) {
	parts := strings.Split(r, "-")
	if len(parts) != 2 {
		return 0, 0, &TimeFormatError{Input: r, Reason: "want HH:MM-HH:MM"}
	}
	start, err := ParseClock(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseClock(parts[1])
	if err != nil {
		return 0, 0, err
	}
	if start >= end {
		return 0, 0, &TimeFormatError{Input: r, Reason: "start must precede end"}
	}
	if start >= 24 {
		return 0, 0, &TimeFormatError{Input: r, Reason: "start must be before 24:00"}
	}
	return start, end, nil
}
