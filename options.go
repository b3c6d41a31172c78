package jetlag

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/chronoplan/go-jetlag/internal/phase"
	"github.com/chronoplan/go-jetlag/internal/rules"
	"github.com/chronoplan/go-jetlag/internal/timeutil"
)

var (
	// ErrInvalidArgument marks rejected caller input such as negative
	// preconditioning days or out-of-range UTC offsets.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidInterval marks an inverted travel interval under the
	// strict interval option.
	ErrInvalidInterval = errors.New("invalid interval")
	// ErrNonConvergence marks a simulation that hit the iteration ceiling
	// without reaching destination alignment.
	ErrNonConvergence = errors.New("phase simulation did not converge")
)

// Public aliases for the supporting types consumers need alongside the
// builder API.
type (
	TimeOfDay  = timeutil.TimeOfDay
	Interval   = timeutil.Interval
	Methods    = phase.Methods
	ClipPolicy = rules.ClipPolicy
)

const (
	ClipEarliest = rules.ClipEarliest
	ClipLargest  = rules.ClipLargest
	ClipReject   = rules.ClipReject
)

// ParseTimeOfDay parses a "HH:MM" or "HH:MM:SS" wall-clock string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	return timeutil.ParseTimeOfDay(s)
}

// maxOffsetHours bounds accepted UTC offsets; real zones span -12..+14.
const maxOffsetHours = 14.0

// Options tunes timetable construction. The zero value is the default
// behavior: travel gates both shifting and interventions, inverted
// travel intervals are silently normalized, and gated sleep windows keep
// their earliest surviving segment.
type Options struct {
	// IgnoreTravelInterventions stops the travel interval from blocking
	// intervention placement.
	IgnoreTravelInterventions bool
	// ShiftDuringTravel allows phase shifting on travel days and starts
	// the adjustment before arrival even without preconditioning days.
	ShiftDuringTravel bool
	// StrictTravelInterval rejects an inverted travel interval with
	// ErrInvalidInterval instead of swapping the endpoints.
	StrictTravelInterval bool
	// ClipPolicy selects the surviving segment of a sleep window clipped
	// by travel. Empty means ClipEarliest.
	ClipPolicy ClipPolicy
}

func (o Options) clipPolicy() ClipPolicy {
	if o.ClipPolicy == "" {
		return ClipEarliest
	}
	return o.ClipPolicy
}

// Request is one timetable computation. Sleep times are local wall-clock
// readings at the respective end of the trip; travel instants are
// absolute UTC times.
type Request struct {
	OriginOffsetHours float64
	DestOffsetHours   float64

	OriginSleepStart TimeOfDay
	OriginSleepEnd   TimeOfDay
	DestSleepStart   TimeOfDay
	DestSleepEnd     TimeOfDay

	TravelStart time.Time
	TravelEnd   time.Time

	Methods          Methods
	PreconditionDays int

	Options Options
}

func (r Request) validate() error {
	if r.PreconditionDays < 0 {
		return fmt.Errorf("precondition days must be non-negative, got %d: %w", r.PreconditionDays, ErrInvalidArgument)
	}
	if math.Abs(r.OriginOffsetHours) > maxOffsetHours {
		return fmt.Errorf("origin offset %+.2fh out of range: %w", r.OriginOffsetHours, ErrInvalidArgument)
	}
	if math.Abs(r.DestOffsetHours) > maxOffsetHours {
		return fmt.Errorf("destination offset %+.2fh out of range: %w", r.DestOffsetHours, ErrInvalidArgument)
	}
	if r.TravelStart.IsZero() || r.TravelEnd.IsZero() {
		return fmt.Errorf("travel interval is required: %w", ErrInvalidArgument)
	}
	return nil
}

// travelInterval normalizes the travel endpoints to UTC, swapping an
// inverted pair unless the strict option demands a rejection.
func (r Request) travelInterval() (timeutil.Interval, error) {
	start, end := r.TravelStart.UTC(), r.TravelEnd.UTC()
	if end.Before(start) && r.Options.StrictTravelInterval {
		return timeutil.Interval{}, fmt.Errorf("travel ends %s before it starts %s: %w",
			timeutil.ISOUTC(end), timeutil.ISOUTC(start), ErrInvalidInterval)
	}
	return timeutil.NewInterval(start, end), nil
}
