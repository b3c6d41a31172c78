// Package rules expands repeatable rule windows into concrete intervals
// over a planning horizon and gates proposed intervention placements
// against the windows that block them.
package rules

import (
	"sort"
	"time"

	"github.com/dromara/carbon/v2"

	"github.com/chronoplan/go-jetlag/internal/timeutil"
)

// Wildcard in a window's blocked list blocks every intervention.
const Wildcard = "*"

// Window is one rule window. With RepeatUntil set it is a template that
// expands into one concrete window per calendar day; otherwise it is a
// single concrete window. Callers own their templates; Expand never
// mutates them.
type Window struct {
	Type        string
	Start       time.Time
	End         time.Time
	Blocked     []string
	RepeatUntil *time.Time
}

// Interval is the window's [Start, End) span.
func (w Window) Interval() timeutil.Interval {
	return timeutil.Interval{Start: w.Start, End: w.End}
}

// Blocks reports whether this window blocks the named intervention.
func (w Window) Blocks(name string) bool {
	for _, b := range w.Blocked {
		if b == name || b == Wildcard {
			return true
		}
	}
	return false
}

// Expand turns templates into the concrete, start-sorted window list for
// one planning horizon. Non-repeating windows pass through when they
// intersect the horizon. Repeating windows produce one instance per
// calendar day, preserving duration, stopping strictly before
// min(RepeatUntil, horizonEnd); instances outside the horizon are
// dropped.
func Expand(templates []Window, horizonStart, horizonEnd time.Time) []Window {
	horizon := timeutil.Interval{Start: horizonStart, End: horizonEnd}
	expanded := make([]Window, 0, len(templates))

	for _, tpl := range templates {
		if tpl.RepeatUntil == nil {
			if tpl.Interval().Overlaps(horizon) {
				w := tpl
				w.RepeatUntil = nil
				expanded = append(expanded, w)
			}
			continue
		}

		repeatEnd := *tpl.RepeatUntil
		if horizonEnd.Before(repeatEnd) {
			repeatEnd = horizonEnd
		}
		duration := tpl.End.Sub(tpl.Start)
		for start := tpl.Start; start.Before(repeatEnd); start = carbon.CreateFromStdTime(start).AddDay().StdTime() {
			instance := Window{
				Type:    tpl.Type,
				Start:   start,
				End:     start.Add(duration),
				Blocked: tpl.Blocked,
			}
			if instance.Interval().Overlaps(horizon) {
				expanded = append(expanded, instance)
			}
		}
	}

	sort.SliceStable(expanded, func(i, j int) bool {
		return expanded[i].Start.Before(expanded[j].Start)
	})
	return expanded
}

// ClipPolicy selects which surviving segment a gated interval keeps when
// blocking windows punch holes in it.
type ClipPolicy string

const (
	// ClipEarliest keeps the earliest surviving segment (default).
	ClipEarliest ClipPolicy = "earliest"
	// ClipLargest keeps the longest surviving segment.
	ClipLargest ClipPolicy = "largest"
	// ClipReject drops the proposal when any blocking window overlaps it.
	ClipReject ClipPolicy = "reject"
)

// GatePoint reports whether a point-in-time proposal survives gating:
// false when any blocking window covering the named intervention
// contains the point.
func GatePoint(at time.Time, blocking []Window, name string) bool {
	for _, w := range blocking {
		if w.Blocks(name) && w.Interval().Contains(at) {
			return false
		}
	}
	return true
}

// GateInterval subtracts every blocking window covering the named
// intervention from the proposed interval and returns the segment the
// clip policy selects. The second return is false when nothing survives.
func GateInterval(proposed timeutil.Interval, blocking []Window, name string, policy ClipPolicy) (timeutil.Interval, bool) {
	var blocks []timeutil.Interval
	for _, w := range blocking {
		if !w.Blocks(name) {
			continue
		}
		if overlap, ok := proposed.Intersect(w.Interval()); ok {
			blocks = append(blocks, overlap)
		}
	}

	if len(blocks) == 0 {
		return proposed, true
	}
	if policy == ClipReject {
		return timeutil.Interval{}, false
	}

	segments := subtract(proposed, blocks)
	if len(segments) == 0 {
		return timeutil.Interval{}, false
	}
	if policy == ClipLargest {
		best := segments[0]
		for _, seg := range segments[1:] {
			if seg.Duration() > best.Duration() {
				best = seg
			}
		}
		return best, true
	}
	return segments[0], true
}

// subtract removes the merged blocks from base, returning the surviving
// sub-intervals in order.
func subtract(base timeutil.Interval, blocks []timeutil.Interval) []timeutil.Interval {
	merged := merge(blocks)
	pieces := []timeutil.Interval{base}
	for _, block := range merged {
		var next []timeutil.Interval
		for _, piece := range pieces {
			overlap, ok := piece.Intersect(block)
			if !ok {
				next = append(next, piece)
				continue
			}
			if piece.Start.Before(overlap.Start) {
				next = append(next, timeutil.Interval{Start: piece.Start, End: overlap.Start})
			}
			if overlap.End.Before(piece.End) {
				next = append(next, timeutil.Interval{Start: overlap.End, End: piece.End})
			}
		}
		pieces = next
		if len(pieces) == 0 {
			break
		}
	}
	return pieces
}

// merge sorts and coalesces overlapping or touching intervals.
func merge(intervals []timeutil.Interval) []timeutil.Interval {
	if len(intervals) == 0 {
		return nil
	}
	ordered := make([]timeutil.Interval, len(intervals))
	copy(ordered, intervals)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start.Before(ordered[j].Start)
	})

	merged := []timeutil.Interval{ordered[0]}
	for _, iv := range ordered[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}
