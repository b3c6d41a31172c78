// Package timeutil provides the wall-clock and interval arithmetic the
// phase simulation is built on: time-of-day values with no date or zone
// attached, signed circular differences, and half-open UTC intervals.
package timeutil

import (
	"fmt"
	"math"
	"time"

	"github.com/dromara/carbon/v2"
)

// HoursPerDay is the circular period all time-of-day arithmetic wraps on.
const HoursPerDay = 24.0

// TimeOfDay is a local wall-clock reading in [00:00, 24:00) with no date
// and no timezone attached.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay parses a "HH:MM" or "HH:MM:SS" 24-hour string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		t, err = time.Parse("15:04", s)
	}
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("failed to parse time string %q; format must be HH:MM or HH:MM:SS: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
}

// FromHours converts a fractional hour count into a TimeOfDay, wrapping
// into [0, 24). Sub-second precision is truncated.
func FromHours(h float64) TimeOfDay {
	h = WrapHours(h)
	whole := int(h)
	rem := (h - float64(whole)) * 60
	minute := int(rem)
	second := int((rem - float64(minute)) * 60)
	return TimeOfDay{Hour: whole, Minute: minute, Second: second}
}

// Hours returns the reading as fractional hours since midnight.
func (t TimeOfDay) Hours() float64 {
	return float64(t.Hour) + float64(t.Minute)/60 + float64(t.Second)/3600
}

// AddHours shifts the reading by a (possibly negative, possibly
// fractional) number of hours, wrapping into [0, 24).
func (t TimeOfDay) AddHours(h float64) TimeOfDay {
	return FromHours(t.Hours() + h)
}

func (t TimeOfDay) String() string {
	if t.Second == 0 {
		return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
	}
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Midpoint returns the wall-clock midpoint between two readings. When b
// is not after a, b is rolled into the next day, so midnight-crossing
// windows resolve the way a sleep schedule would expect.
func Midpoint(a, b TimeOfDay) TimeOfDay {
	if a == b {
		return a
	}
	ah, bh := a.Hours(), b.Hours()
	if bh <= ah {
		bh += HoursPerDay
	}
	return FromHours(ah + (bh-ah)/2)
}

// WrapHours wraps an hour count into [0, 24).
func WrapHours(h float64) float64 {
	h = math.Mod(h, HoursPerDay)
	if h < 0 {
		h += HoursPerDay
	}
	return h
}

// SignedDeltaHours returns the signed circular difference b-a wrapped
// into (-12, +12]. A raw result of exactly -12 is canonicalized to +12
// so the range is half-open on the negative side only.
func SignedDeltaHours(a, b float64) float64 {
	d := math.Mod(b-a+12, HoursPerDay)
	if d < 0 {
		d += HoursPerDay
	}
	d -= 12
	if d == -12 {
		d = 12
	}
	return d
}

// DurationFromHours converts fractional hours to a time.Duration.
func DurationFromHours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

// ISOUTC formats an instant as RFC3339 in UTC with a literal Z suffix.
func ISOUTC(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// MidnightUTC returns the start of the UTC calendar day containing t.
func MidnightUTC(t time.Time) time.Time {
	return carbon.CreateFromStdTime(t.UTC()).StartOfDay().StdTime()
}

// NextOccurrenceAfter returns the first instant strictly after the given
// instant whose UTC time-of-day equals hourOfDay (fractional hours).
func NextOccurrenceAfter(hourOfDay float64, after time.Time) time.Time {
	candidate := MidnightUTC(after).Add(DurationFromHours(WrapHours(hourOfDay)))
	if !candidate.After(after) {
		candidate = carbon.CreateFromStdTime(candidate).AddDay().StdTime()
	}
	return candidate
}

// Interval is a half-open UTC interval [Start, End). Start never exceeds
// End for intervals produced by NewInterval.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval builds an interval, swapping the endpoints when they
// arrive inverted.
func NewInterval(start, end time.Time) Interval {
	if end.Before(start) {
		start, end = end, start
	}
	return Interval{Start: start, End: end}
}

// Duration returns the interval length.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Contains reports whether t falls inside the half-open interval.
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// Overlaps is the half-open overlap test: a.start < b.end && b.start < a.end.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start.Before(o.End) && o.Start.Before(iv.End)
}

// Intersect returns the overlapping part of two intervals, if any.
func (iv Interval) Intersect(o Interval) (Interval, bool) {
	start := iv.Start
	if o.Start.After(start) {
		start = o.Start
	}
	end := iv.End
	if o.End.Before(end) {
		end = o.End
	}
	if !start.Before(end) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// IntersectionHours returns the overlap length in hours, 0 when disjoint.
func (iv Interval) IntersectionHours(o Interval) float64 {
	overlap, ok := iv.Intersect(o)
	if !ok {
		return 0
	}
	return overlap.Duration().Hours()
}
