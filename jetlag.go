// Package jetlag builds jet-lag adjustment timetables: given the
// traveler's habitual sleep at both ends of a trip, the travel interval
// and the interventions they are willing to use, it simulates the
// day-by-day drift of the circadian phase marker (CBTmin) from origin
// alignment to destination alignment and emits the resulting schedule
// as a time-ordered event list.
package jetlag

import (
	"fmt"
	"time"

	"github.com/Workiva/go-datastructures/queue"
	"github.com/dromara/carbon/v2"

	"github.com/chronoplan/go-jetlag/internal/phase"
	"github.com/chronoplan/go-jetlag/internal/rules"
	"github.com/chronoplan/go-jetlag/internal/timeutil"
)

// extraAlignedDays is how many stabilizing days are simulated past the
// first aligned day so the tail of the timetable shows the settled phase.
const extraAlignedDays = 2

// convergenceCeilingDays backstops the iteration loop; no feasible shift
// sequence needs anywhere near ten years of days.
const convergenceCeilingDays = 3650

// BuildTimetable runs the full simulation for one request and returns
// the merged, start-ordered event list. Events with equal start keep
// their emission order: per-day CBTmin then interventions, then sleep
// windows, then travel.
func BuildTimetable(req Request) ([]TimelineEvent, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	travel, err := req.travelInterval()
	if err != nil {
		return nil, err
	}

	state := phase.NewStateFromWake(req.OriginSleepEnd, req.DestSleepEnd, req.OriginOffsetHours, req.DestOffsetHours)
	b := &builder{
		req:       req,
		travel:    travel,
		state:     state,
		direction: state.Direction(),
		diff:      state.InitialDiffHours(),
	}

	lastCBT, err := b.simulate()
	if err != nil {
		return nil, err
	}
	b.emitSleep(lastCBT)
	b.interval(EventTravel, travel, nil)

	return b.sorted()
}

type builder struct {
	req       Request
	travel    timeutil.Interval
	state     *phase.State
	direction Direction
	diff      float64

	events []TimelineEvent
}

// simulate runs the day loop and returns the instant of the last CBTmin
// emitted, which anchors the sleep horizon.
func (b *builder) simulate() (time.Time, error) {
	preMidnight := timeutil.MidnightUTC(b.travel.Start)

	// Shifting begins with preconditioning (or on travel days when the
	// caller allows it); otherwise nothing moves until arrival.
	startOfShift := b.travel.End
	if b.req.PreconditionDays > 0 || b.req.Options.ShiftDuringTravel {
		startOfShift = carbon.CreateFromStdTime(preMidnight).SubDays(b.req.PreconditionDays).StdTime()
	}

	gates := phase.Gates{}
	if !b.req.Options.ShiftDuringTravel {
		gates.Shift = &b.travel
	}
	if !b.req.Options.IgnoreTravelInterventions {
		gates.Interventions = &b.travel
	}

	// Seed one day before any shifting could start, so the first event
	// shows the unshifted origin phase.
	seedStart := carbon.CreateFromStdTime(preMidnight).SubDays(b.req.PreconditionDays + 1).StdTime()
	seed := b.state.Next(seedStart, phase.Gates{}, b.req.Methods, false, true)
	seedDay := 0
	b.point(EventCBTmin, seed.At, &seedDay)
	if b.direction == DirectionAligned {
		return seed.At, nil
	}

	ceiling := b.req.PreconditionDays + convergenceCeilingDays
	cursor := seed.At
	day := 0
	alignedDays := 0
	for iter := 0; ; iter++ {
		if iter >= ceiling {
			return time.Time{}, fmt.Errorf("no alignment after %d simulated days: %w", iter, ErrNonConvergence)
		}
		if b.state.Aligned() {
			if alignedDays >= extraAlignedDays {
				break
			}
			alignedDays++
		}

		candidate := timeutil.NextOccurrenceAfter(b.state.CurrentHours(), cursor)
		skip := candidate.Before(startOfShift)
		// A candidate landing exactly on startOfShift is always consumed
		// by the seed day, so both bounds stay exclusive.
		preconditioning := !skip && candidate.After(startOfShift) && candidate.Before(b.travel.Start)

		res := b.state.Next(cursor, gates, b.req.Methods, preconditioning, skip)
		day++
		idx := day
		b.point(EventCBTmin, res.At, &idx)
		b.emitInterventions(res, idx)
		cursor = res.At
	}
	return cursor, nil
}

func (b *builder) emitInterventions(res phase.StepResult, day int) {
	if res.Melatonin.Applied {
		idx := day
		b.point(EventMelatonin, res.Melatonin.At, &idx)
	}
	windowed := []struct {
		kind EventKind
		p    phase.Placement
	}{
		{EventLight, res.Light},
		{EventDark, res.Dark},
		{EventExercise, res.Exercise},
	}
	for _, w := range windowed {
		if !w.p.Applied {
			continue
		}
		idx := day
		b.interval(w.kind, w.p.Window, &idx)
	}
}

// emitSleep expands the daily sleep recurrences across the planning
// horizon, origin schedule before travel and destination schedule after,
// clipping each window against the travel interval.
func (b *builder) emitSleep(lastCBT time.Time) {
	horizonStart := timeutil.MidnightUTC(b.events[0].Start)
	horizonEnd := carbon.CreateFromStdTime(timeutil.MidnightUTC(lastCBT)).AddDays(2).StdTime()

	var templates []rules.Window
	travelStart := b.travel.Start

	if dur := sleepDurationHours(b.req.OriginSleepStart, b.req.OriginSleepEnd); dur > 0 {
		startH := timeutil.WrapHours(b.req.OriginSleepStart.Hours() - b.req.OriginOffsetHours)
		anchor := timeutil.NextOccurrenceAfter(startH, horizonStart.Add(-24*time.Hour))
		templates = append(templates, rules.Window{
			Type:        "sleep",
			Start:       anchor,
			End:         anchor.Add(timeutil.DurationFromHours(dur)),
			RepeatUntil: &travelStart,
		})
	}
	if dur := sleepDurationHours(b.req.DestSleepStart, b.req.DestSleepEnd); dur > 0 {
		startH := timeutil.WrapHours(b.req.DestSleepStart.Hours() - b.req.DestOffsetHours)
		anchor := timeutil.NextOccurrenceAfter(startH, travelStart)
		templates = append(templates, rules.Window{
			Type:        "sleep",
			Start:       anchor,
			End:         anchor.Add(timeutil.DurationFromHours(dur)),
			RepeatUntil: &horizonEnd,
		})
	}

	blocking := []rules.Window{{
		Type:    "travel",
		Start:   b.travel.Start,
		End:     b.travel.End,
		Blocked: []string{rules.Wildcard},
	}}
	for _, w := range rules.Expand(templates, horizonStart, horizonEnd) {
		seg, ok := rules.GateInterval(w.Interval(), blocking, "sleep", b.req.Options.clipPolicy())
		if !ok {
			continue
		}
		b.interval(EventSleep, seg, nil)
	}
}

// sleepDurationHours is the wall-clock sleep length, rolling a start
// after the end into the next day. Equal readings mean no sleep window.
func sleepDurationHours(start, end TimeOfDay) float64 {
	return timeutil.WrapHours(end.Hours() - start.Hours())
}

func (b *builder) point(kind EventKind, at time.Time, day *int) {
	b.events = append(b.events, TimelineEvent{
		Kind:            kind,
		Start:           at,
		Flags:           FlagsFor(kind),
		DayIndex:        day,
		PhaseDirection:  b.direction,
		SignedDiffHours: b.diff,
	})
}

func (b *builder) interval(kind EventKind, iv timeutil.Interval, day *int) {
	end := iv.End
	b.events = append(b.events, TimelineEvent{
		Kind:            kind,
		Start:           iv.Start,
		End:             &end,
		Flags:           FlagsFor(kind),
		DayIndex:        day,
		PhaseDirection:  b.direction,
		SignedDiffHours: b.diff,
	})
}

// mergeItem orders events by start instant, ties broken by emission
// sequence so the merge is stable.
type mergeItem struct {
	event TimelineEvent
	seq   int
}

func (m mergeItem) Compare(other queue.Item) int {
	o := other.(mergeItem)
	switch {
	case m.event.Start.Before(o.event.Start):
		return -1
	case o.event.Start.Before(m.event.Start):
		return 1
	case m.seq < o.seq:
		return -1
	case m.seq > o.seq:
		return 1
	default:
		return 0
	}
}

func (b *builder) sorted() ([]TimelineEvent, error) {
	pq := queue.NewPriorityQueue(len(b.events), true)
	for i, e := range b.events {
		if err := pq.Put(mergeItem{event: e, seq: i}); err != nil {
			return nil, fmt.Errorf("ordering events: %w", err)
		}
	}
	out := make([]TimelineEvent, 0, len(b.events))
	for !pq.Empty() {
		items, err := pq.Get(1)
		if err != nil {
			return nil, fmt.Errorf("ordering events: %w", err)
		}
		out = append(out, items[0].(mergeItem).event)
	}
	return out, nil
}
