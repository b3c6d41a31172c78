package jetlag

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/chronoplan/go-jetlag/internal/timeutil"
)

// Slot is one fixed-width cell of a rasterized timetable: the union of
// every event active during [Start, End).
type Slot struct {
	Start  time.Time
	End    time.Time
	Events []string
	Flags  Flags
}

type slotJSON struct {
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Events      []string `json:"events"`
	IsCBTmin    bool     `json:"is_cbtmin"`
	IsMelatonin bool     `json:"is_melatonin"`
	IsLight     bool     `json:"is_light"`
	IsDark      bool     `json:"is_dark"`
	IsExercise  bool     `json:"is_exercise"`
	IsSleep     bool     `json:"is_sleep"`
	IsTravel    bool     `json:"is_travel"`
}

func (s Slot) MarshalJSON() ([]byte, error) {
	events := s.Events
	if events == nil {
		events = []string{}
	}
	return json.Marshal(slotJSON{
		Start:       timeutil.ISOUTC(s.Start),
		End:         timeutil.ISOUTC(s.End),
		Events:      events,
		IsCBTmin:    s.Flags.CBTmin,
		IsMelatonin: s.Flags.Melatonin,
		IsLight:     s.Flags.Light,
		IsDark:      s.Flags.Dark,
		IsExercise:  s.Flags.Exercise,
		IsSleep:     s.Flags.Sleep,
		IsTravel:    s.Flags.Travel,
	})
}

// Rasterize projects a timetable onto a fixed-step grid over
// [windowStart, windowEnd). Point events land in the slot containing
// their instant; interval events mark every slot they overlap. The
// final slot is clipped to the window end. Zero-length interval events
// (a same-instant travel hop) are treated as points.
func Rasterize(events []TimelineEvent, windowStart, windowEnd time.Time, step time.Duration) ([]Slot, error) {
	if step <= 0 {
		return nil, fmt.Errorf("raster step must be positive, got %s: %w", step, ErrInvalidArgument)
	}
	windowStart, windowEnd = windowStart.UTC(), windowEnd.UTC()
	if !windowStart.Before(windowEnd) {
		return []Slot{}, nil
	}

	var slots []Slot
	for cur := windowStart; cur.Before(windowEnd); cur = cur.Add(step) {
		end := cur.Add(step)
		if end.After(windowEnd) {
			end = windowEnd
		}
		slot := timeutil.Interval{Start: cur, End: end}

		var flags Flags
		kinds := map[string]bool{}
		for _, e := range events {
			if !eventTouches(e, slot) {
				continue
			}
			flags = flags.Or(e.Flags)
			kinds[string(e.Kind)] = true
		}

		names := make([]string, 0, len(kinds))
		for k := range kinds {
			names = append(names, k)
		}
		sort.Strings(names)
		slots = append(slots, Slot{Start: cur, End: end, Events: names, Flags: flags})
	}
	return slots, nil
}

func eventTouches(e TimelineEvent, slot timeutil.Interval) bool {
	if e.IsPoint() {
		return slot.Contains(e.Start.UTC())
	}
	return slot.Overlaps(timeutil.Interval{Start: e.Start.UTC(), End: e.End.UTC()})
}
