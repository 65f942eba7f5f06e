// Package clock holds the wall-clock helpers used by scheduling.
// All times are studio-local "HH:MM" strings on a single calendar date; there is
// no timezone handling.
package clock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format used on the wire and in filters.
const DateLayout = "2006-01-02"

var (
	ErrInvalidClock = errors.New("time must be in HH:MM format")
	ErrInvalidDate  = errors.New("date must be in YYYY-MM-DD format")
)

// ParseClock converts "HH:MM" into minutes since midnight.
// Hours past 23 are accepted because AddHours can produce them.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) < 2 || len(mm) != 2 || !digits(hh) || !digits(mm) {
		return 0, ErrInvalidClock
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 {
		return 0, ErrInvalidClock
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, ErrInvalidClock
	}
	return h*60 + m, nil
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseWallClock is ParseClock restricted to a real time of day (00:00-23:59).
func ParseWallClock(s string) (int, error) {
	m, err := ParseClock(s)
	if err != nil {
		return 0, err
	}
	if m >= 24*60 {
		return 0, ErrInvalidClock
	}
	return m, nil
}

// FormatClock renders minutes since midnight as zero-padded "HH:MM".
func FormatClock(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// AddHours adds whole hours to the hour component only.
// There is no wraparound: "23:00" + 2 gives "25:00".
func AddHours(s string, hours int) (string, error) {
	m, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return FormatClock(m + hours*60), nil
}

// Hour returns the hour component of "HH:MM", ignoring minutes.
func Hour(s string) (int, error) {
	m, err := ParseClock(s)
	if err != nil {
		return 0, err
	}
	return m / 60, nil
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Touching intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// Interval is a half-open [Start, End) range in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

// ParseInterval parses a start/end pair and requires start < end.
func ParseInterval(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	if s >= e {
		return Interval{}, fmt.Errorf("start %s must be before end %s", start, end)
	}
	return Interval{Start: s, End: e}, nil
}

// Overlaps reports whether the two intervals intersect.
func (i Interval) Overlaps(o Interval) bool {
	return Overlaps(i.Start, i.End, o.Start, o.End)
}

// Contains reports whether minute m lies in [Start, End], ends included.
func (i Interval) Contains(m int) bool {
	return i.Start <= m && m <= i.End
}

// Touches reports whether o starts or ends within i, ends included, or o
// encloses i. Unlike Overlaps, back-to-back intervals touch.
func (i Interval) Touches(o Interval) bool {
	return i.Contains(o.Start) || i.Contains(o.End) || (o.Start <= i.Start && i.End <= o.End)
}

// Hours returns the interval length in hours.
func (i Interval) Hours() float64 {
	return float64(i.End-i.Start) / 60
}

func (i Interval) String() string {
	return FormatClock(i.Start) + "-" + FormatClock(i.End)
}

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// SameDate compares calendar dates regardless of time of day.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
