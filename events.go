package jetlag

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/chronoplan/go-jetlag/internal/phase"
	"github.com/chronoplan/go-jetlag/internal/timeutil"
)

// EventKind identifies what a timeline event represents.
type EventKind string

const (
	EventCBTmin    EventKind = "cbtmin"
	EventMelatonin EventKind = "melatonin"
	EventLight     EventKind = "light"
	EventDark      EventKind = "dark"
	EventExercise  EventKind = "exercise"
	EventSleep     EventKind = "sleep"
	EventTravel    EventKind = "travel"
)

// Flags carries the seven per-event boolean markers of the wire format.
type Flags struct {
	CBTmin    bool `json:"is_cbtmin"`
	Melatonin bool `json:"is_melatonin"`
	Light     bool `json:"is_light"`
	Dark      bool `json:"is_dark"`
	Exercise  bool `json:"is_exercise"`
	Sleep     bool `json:"is_sleep"`
	Travel    bool `json:"is_travel"`
}

// Or returns the field-wise logical OR of two flag sets.
func (f Flags) Or(o Flags) Flags {
	return Flags{
		CBTmin:    f.CBTmin || o.CBTmin,
		Melatonin: f.Melatonin || o.Melatonin,
		Light:     f.Light || o.Light,
		Dark:      f.Dark || o.Dark,
		Exercise:  f.Exercise || o.Exercise,
		Sleep:     f.Sleep || o.Sleep,
		Travel:    f.Travel || o.Travel,
	}
}

// FlagsFor returns the flag set with only the marker for kind raised.
func FlagsFor(kind EventKind) Flags {
	switch kind {
	case EventCBTmin:
		return Flags{CBTmin: true}
	case EventMelatonin:
		return Flags{Melatonin: true}
	case EventLight:
		return Flags{Light: true}
	case EventDark:
		return Flags{Dark: true}
	case EventExercise:
		return Flags{Exercise: true}
	case EventSleep:
		return Flags{Sleep: true}
	case EventTravel:
		return Flags{Travel: true}
	default:
		return Flags{}
	}
}

// TimelineEvent is one entry of a built timetable. Point events
// (cbtmin, melatonin) have a nil End; interval events have End > Start.
// Events are immutable once emitted.
type TimelineEvent struct {
	Kind            EventKind
	Start           time.Time
	End             *time.Time
	Flags           Flags
	DayIndex        *int
	PhaseDirection  Direction
	SignedDiffHours float64
}

// IsPoint reports whether the event has no meaningful duration: a nil
// End, or an End equal to Start (the zero-length travel case).
func (e TimelineEvent) IsPoint() bool {
	return e.End == nil || e.End.Equal(e.Start)
}

// eventJSON is the pinned wire representation consumed by the CLI and
// server collaborators.
type eventJSON struct {
	Event           string  `json:"event"`
	Start           string  `json:"start"`
	End             *string `json:"end"`
	IsCBTmin        bool    `json:"is_cbtmin"`
	IsMelatonin     bool    `json:"is_melatonin"`
	IsLight         bool    `json:"is_light"`
	IsDark          bool    `json:"is_dark"`
	IsExercise      bool    `json:"is_exercise"`
	IsSleep         bool    `json:"is_sleep"`
	IsTravel        bool    `json:"is_travel"`
	DayIndex        *int    `json:"day_index"`
	PhaseDirection  string  `json:"phase_direction"`
	SignedDiffHours float64 `json:"signed_initial_diff_hours"`
}

func (e TimelineEvent) MarshalJSON() ([]byte, error) {
	var end *string
	if e.End != nil {
		s := timeutil.ISOUTC(*e.End)
		end = &s
	}
	return json.Marshal(eventJSON{
		Event:           string(e.Kind),
		Start:           timeutil.ISOUTC(e.Start),
		End:             end,
		IsCBTmin:        e.Flags.CBTmin,
		IsMelatonin:     e.Flags.Melatonin,
		IsLight:         e.Flags.Light,
		IsDark:          e.Flags.Dark,
		IsExercise:      e.Flags.Exercise,
		IsSleep:         e.Flags.Sleep,
		IsTravel:        e.Flags.Travel,
		DayIndex:        e.DayIndex,
		PhaseDirection:  string(e.PhaseDirection),
		SignedDiffHours: e.SignedDiffHours,
	})
}

func (e *TimelineEvent) UnmarshalJSON(data []byte) error {
	var w eventJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	start, err := time.Parse(time.RFC3339, w.Start)
	if err != nil {
		return fmt.Errorf("invalid event start %q: %w", w.Start, err)
	}
	var end *time.Time
	if w.End != nil {
		t, err := time.Parse(time.RFC3339, *w.End)
		if err != nil {
			return fmt.Errorf("invalid event end %q: %w", *w.End, err)
		}
		t = t.UTC()
		end = &t
	}
	*e = TimelineEvent{
		Kind:  EventKind(w.Event),
		Start: start.UTC(),
		End:   end,
		Flags: Flags{
			CBTmin:    w.IsCBTmin,
			Melatonin: w.IsMelatonin,
			Light:     w.IsLight,
			Dark:      w.IsDark,
			Exercise:  w.IsExercise,
			Sleep:     w.IsSleep,
			Travel:    w.IsTravel,
		},
		DayIndex:        w.DayIndex,
		PhaseDirection:  Direction(w.PhaseDirection),
		SignedDiffHours: w.SignedDiffHours,
	}
	return nil
}

// Direction re-exports the phase direction for API consumers.
type Direction = phase.Direction

const (
	DirectionAdvance = phase.DirectionAdvance
	DirectionDelay   = phase.DirectionDelay
	DirectionAligned = phase.DirectionAligned
)
