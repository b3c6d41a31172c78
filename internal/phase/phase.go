// Package phase owns the CBTmin tracker: the day-by-day state machine
// that moves the body's circadian phase marker from origin alignment to
// destination alignment and decides which behavioral interventions a
// given simulated day can carry.
package phase

import (
	"math"
	"time"

	"github.com/chronoplan/go-jetlag/internal/timeutil"
)

// Direction is the fixed shift direction for a whole simulation run,
// derived once at construction from the signed circular difference
// between origin and destination phase.
type Direction string

const (
	DirectionAdvance Direction = "advance"
	DirectionDelay   Direction = "delay"
	DirectionAligned Direction = "aligned"
)

const (
	// Epsilon is the alignment tolerance in hours. The per-step shift is
	// clamped to the remaining distance, so the state lands on the target
	// exactly; the epsilon only absorbs float residue.
	Epsilon = 1e-6

	// CBTminFromWakeHours places CBTmin relative to habitual wake time.
	CBTminFromWakeHours = -3.0

	// interventionCutoffHours suppresses all interventions once the
	// remaining distance to target drops below it.
	interventionCutoffHours = 3.0

	// travelGuardHours is the window before a candidate CBTmin that must
	// be clear of the blocked interval for a shift to happen that day.
	travelGuardHours = 8.0
)

// Offsets of each intervention relative to the reference CBTmin, in
// hours, by direction.
const (
	melatoninAdvanceHours = -11.5
	melatoninDelayHours   = 4.0
	windowSpanHours       = 3.0
)

// Methods selects which interventions the traveler is willing to use.
type Methods struct {
	Melatonin bool
	Exercise  bool
	Light     bool
	Dark      bool
}

// Any reports whether at least one method is enabled.
func (m Methods) Any() bool {
	return m.Melatonin || m.Exercise || m.Light || m.Dark
}

// ShiftMagnitude is the empirical per-day shift policy: interventions
// roughly double the achievable daily shift, and preconditioning before
// travel is more conservative than post-arrival shifting.
func ShiftMagnitude(anyMethod, preconditioning bool) float64 {
	switch {
	case anyMethod && !preconditioning:
		return 1.5
	case anyMethod && preconditioning:
		return 1.0
	case !anyMethod && !preconditioning:
		return 1.0
	default:
		return 0.0
	}
}

// Gates carries the blocked windows for one simulated day. Shift gates
// the phase movement itself; Interventions gates where interventions may
// be placed. Either may be nil to disable that gate.
type Gates struct {
	Shift         *timeutil.Interval
	Interventions *timeutil.Interval
}

// Placement reports one intervention for one simulated day. Point
// placements (melatonin) use At; window placements use Window.
type Placement struct {
	Applied bool
	Point   bool
	At      time.Time
	Window  timeutil.Interval
}

// StepResult is the outcome of advancing the tracker by one day.
type StepResult struct {
	// At is the instant of this day's CBTmin after any applied shift.
	At time.Time
	// ShiftHours is the signed shift applied this day (0 on no-op days).
	ShiftHours float64

	Melatonin Placement
	Light     Placement
	Dark      Placement
	Exercise  Placement
}

// State tracks the current CBTmin time-of-day (UTC hour-of-day) against
// a fixed destination target. It is mutated once per simulated day by
// Next and owned exclusively by a single timetable build.
type State struct {
	origin      float64
	dest        float64
	current     float64
	direction   Direction
	initialDiff float64
}

// NewState builds a tracker from explicit origin and destination phases,
// both already UTC-normalized hour-of-day readings.
func NewState(origin, dest timeutil.TimeOfDay) *State {
	diff := timeutil.SignedDeltaHours(origin.Hours(), dest.Hours())
	dir := DirectionAligned
	if diff > 0 {
		dir = DirectionDelay
	} else if diff < 0 {
		dir = DirectionAdvance
	}
	return &State{
		origin:      origin.Hours(),
		dest:        dest.Hours(),
		current:     origin.Hours(),
		direction:   dir,
		initialDiff: diff,
	}
}

// NewStateFromWake builds a tracker from habitual wake times at origin
// and destination. CBTmin is modeled as wake time minus 3 hours; local
// wall-clock readings are normalized to UTC via the fixed offsets.
func NewStateFromWake(originWake, destWake timeutil.TimeOfDay, originOffset, destOffset float64) *State {
	origin := timeutil.FromHours(originWake.Hours() + CBTminFromWakeHours - originOffset)
	dest := timeutil.FromHours(destWake.Hours() + CBTminFromWakeHours - destOffset)
	return NewState(origin, dest)
}

// Direction returns the fixed shift direction for this run.
func (s *State) Direction() Direction {
	return s.direction
}

// InitialDiffHours is the signed circular difference destination-origin
// computed at construction, in (-12, +12].
func (s *State) InitialDiffHours() float64 {
	return s.initialDiff
}

// CurrentHours is the tracker's current UTC hour-of-day.
func (s *State) CurrentHours() float64 {
	return s.current
}

// RemainingHours is the signed circular distance still to cover.
func (s *State) RemainingHours() float64 {
	return timeutil.SignedDeltaHours(s.current, s.dest)
}

// Aligned reports whether the tracker has reached the destination phase.
func (s *State) Aligned() bool {
	return math.Abs(s.RemainingHours()) < Epsilon
}

func (s *State) directionSign() float64 {
	switch s.direction {
	case DirectionDelay:
		return 1
	case DirectionAdvance:
		return -1
	default:
		return 0
	}
}

// placements computes the candidate intervention placements for one day,
// relative to the reference CBTmin (the occurrence 24h before the
// candidate), suppressing each that collides with the blocked window.
func (s *State) placements(reference time.Time, blocked *timeutil.Interval, methods Methods) (mel, light, dark, exercise Placement) {
	delay := s.direction == DirectionDelay

	if methods.Melatonin {
		offset := melatoninAdvanceHours
		if delay {
			offset = melatoninDelayHours
		}
		at := reference.Add(timeutil.DurationFromHours(offset))
		mel = Placement{Applied: blocked == nil || !blocked.Contains(at), Point: true, At: at}
	}

	// Light and exercise share a window; dark mirrors it.
	after := timeutil.Interval{Start: reference, End: reference.Add(timeutil.DurationFromHours(windowSpanHours))}
	before := timeutil.Interval{Start: reference.Add(timeutil.DurationFromHours(-windowSpanHours)), End: reference}

	lightWindow, darkWindow := after, before
	if delay {
		lightWindow, darkWindow = before, after
	}
	windowOpen := func(w timeutil.Interval) bool {
		return blocked == nil || blocked.IntersectionHours(w) == 0
	}
	if methods.Light {
		light = Placement{Applied: windowOpen(lightWindow), Window: lightWindow}
	}
	if methods.Dark {
		dark = Placement{Applied: windowOpen(darkWindow), Window: darkWindow}
	}
	if methods.Exercise {
		exercise = Placement{Applied: windowOpen(lightWindow), Window: lightWindow}
	}
	return mel, light, dark, exercise
}

// Next advances the simulation by one day. It finds the next calendar
// occurrence of the current phase strictly after atOrAfter, decides the
// day's interventions and shift magnitude, mutates the tracker when a
// shift happens, and reports the day's outcome. With skipShift set the
// candidate is returned unchanged and no interventions are reported as
// applied, even if they could have been placed.
func (s *State) Next(atOrAfter time.Time, gates Gates, methods Methods, preconditioning, skipShift bool) StepResult {
	candidate := timeutil.NextOccurrenceAfter(s.current, atOrAfter)
	reference := candidate.Add(-24 * time.Hour)

	mel, light, dark, exercise := s.placements(reference, gates.Interventions, methods)

	// Within the diminishing-returns cutoff no intervention is worth its
	// burden regardless of placement.
	if math.Abs(s.RemainingHours()) < interventionCutoffHours {
		mel.Applied = false
		light.Applied = false
		dark.Applied = false
		exercise.Applied = false
	}

	anyApplied := mel.Applied || light.Applied || dark.Applied || exercise.Applied
	magnitude := ShiftMagnitude(anyApplied, preconditioning)
	if remaining := math.Abs(s.RemainingHours()); magnitude > remaining {
		magnitude = remaining
	}
	if gates.Shift != nil {
		guard := timeutil.Interval{
			Start: candidate.Add(timeutil.DurationFromHours(-travelGuardHours)),
			End:   candidate,
		}
		if guard.Overlaps(*gates.Shift) {
			magnitude = 0
		}
	}

	if magnitude == 0 || s.direction == DirectionAligned || skipShift {
		return StepResult{
			At:        candidate,
			Melatonin: notApplied(mel),
			Light:     notApplied(light),
			Dark:      notApplied(dark),
			Exercise:  notApplied(exercise),
		}
	}

	delta := magnitude * s.directionSign()
	s.current = timeutil.WrapHours(s.current + delta)
	return StepResult{
		At:         candidate.Add(timeutil.DurationFromHours(delta)),
		ShiftHours: delta,
		Melatonin:  mel,
		Light:      light,
		Dark:       dark,
		Exercise:   exercise,
	}
}

func notApplied(p Placement) Placement {
	p.Applied = false
	return p
}
