// Package httpapi carries the JSON contract shared by the jetlag-calc
// CLI, the HTTP/websocket server and the client, and the glue that turns
// a wire request into a computed response.
package httpapi

import (
	"fmt"
	"time"

	"github.com/chronoplan/go-jetlag"
	"github.com/chronoplan/go-jetlag/internal/sunlight"
	"github.com/chronoplan/go-jetlag/internal/timeutil"
)

// travelLayout is the naive local timestamp format of the wire contract.
const travelLayout = "2006-01-02T15:04"

// CalcRequest is the pinned request schema. Travel timestamps are naive
// local wall-clock readings, interpreted at the origin offset for the
// start and the destination offset for the end.
type CalcRequest struct {
	OriginOffset float64 `json:"originOffset"`
	DestOffset   float64 `json:"destOffset"`

	OriginSleepStart string `json:"originSleepStart"`
	OriginSleepEnd   string `json:"originSleepEnd"`
	DestSleepStart   string `json:"destSleepStart"`
	DestSleepEnd     string `json:"destSleepEnd"`

	TravelStart string `json:"travelStart"`
	TravelEnd   string `json:"travelEnd"`

	UseMelatonin bool `json:"useMelatonin"`
	UseExercise  bool `json:"useExercise"`
	UseLightDark bool `json:"useLightDark"`

	PreDays                   int  `json:"preDays"`
	ShiftOnTravelDays         bool `json:"shiftOnTravelDays"`
	IgnoreTravelInterventions bool `json:"ignoreTravelInterventions"`

	Origin      *sunlight.Coordinate `json:"origin,omitempty"`
	Destination *sunlight.Coordinate `json:"destination,omitempty"`
}

// Daylight pairs per-day daylight windows for both ends of the trip.
type Daylight struct {
	Origin      []sunlight.Window `json:"origin,omitempty"`
	Destination []sunlight.Window `json:"destination,omitempty"`
}

// CalcResponse is the success payload.
type CalcResponse struct {
	Events   []jetlag.TimelineEvent `json:"events"`
	Daylight *Daylight              `json:"daylight,omitempty"`
}

// ErrorResponse is the failure payload. Traceback carries the full error
// chain and is only populated in debug mode.
type ErrorResponse struct {
	Error     string `json:"error"`
	Traceback string `json:"traceback,omitempty"`
}

// ToRequest converts the wire document into a builder request.
func (c CalcRequest) ToRequest() (jetlag.Request, error) {
	parseClock := func(field, value string) (jetlag.TimeOfDay, error) {
		t, err := jetlag.ParseTimeOfDay(value)
		if err != nil {
			return jetlag.TimeOfDay{}, fmt.Errorf("%s: %w", field, err)
		}
		return t, nil
	}
	originStart, err := parseClock("originSleepStart", c.OriginSleepStart)
	if err != nil {
		return jetlag.Request{}, err
	}
	originEnd, err := parseClock("originSleepEnd", c.OriginSleepEnd)
	if err != nil {
		return jetlag.Request{}, err
	}
	destStart, err := parseClock("destSleepStart", c.DestSleepStart)
	if err != nil {
		return jetlag.Request{}, err
	}
	destEnd, err := parseClock("destSleepEnd", c.DestSleepEnd)
	if err != nil {
		return jetlag.Request{}, err
	}

	travelStart, err := parseTravel("travelStart", c.TravelStart, c.OriginOffset)
	if err != nil {
		return jetlag.Request{}, err
	}
	travelEnd, err := parseTravel("travelEnd", c.TravelEnd, c.DestOffset)
	if err != nil {
		return jetlag.Request{}, err
	}

	for _, coord := range []*sunlight.Coordinate{c.Origin, c.Destination} {
		if coord == nil {
			continue
		}
		if err := coord.Validate(); err != nil {
			return jetlag.Request{}, fmt.Errorf("%w: %s", jetlag.ErrInvalidArgument, err)
		}
	}

	return jetlag.Request{
		OriginOffsetHours: c.OriginOffset,
		DestOffsetHours:   c.DestOffset,
		OriginSleepStart:  originStart,
		OriginSleepEnd:    originEnd,
		DestSleepStart:    destStart,
		DestSleepEnd:      destEnd,
		TravelStart:       travelStart,
		TravelEnd:         travelEnd,
		Methods: jetlag.Methods{
			Melatonin: c.UseMelatonin,
			Exercise:  c.UseExercise,
			Light:     c.UseLightDark,
			Dark:      c.UseLightDark,
		},
		PreconditionDays: c.PreDays,
		Options: jetlag.Options{
			ShiftDuringTravel:         c.ShiftOnTravelDays,
			IgnoreTravelInterventions: c.IgnoreTravelInterventions,
		},
	}, nil
}

// parseTravel reads a naive local timestamp and shifts it to UTC by the
// fixed offset of the zone it was written in.
func parseTravel(field, value string, offsetHours float64) (time.Time, error) {
	t, err := time.Parse(travelLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: failed to parse %q; format must be YYYY-MM-DDTHH:MM: %w", field, value, err)
	}
	return t.UTC().Add(-timeutil.DurationFromHours(offsetHours)), nil
}

// Compute runs the full calculation for one wire request, including the
// optional daylight advisory when coordinates are present. Config-level
// options (the clip policy) are folded into the request.
func (cfg Config) Compute(c CalcRequest) (CalcResponse, error) {
	req, err := c.ToRequest()
	if err != nil {
		return CalcResponse{}, err
	}
	if req.Options.ClipPolicy, err = cfg.clipPolicy(); err != nil {
		return CalcResponse{}, err
	}
	events, err := jetlag.BuildTimetable(req)
	if err != nil {
		return CalcResponse{}, err
	}

	resp := CalcResponse{Events: events}
	if (c.Origin != nil || c.Destination != nil) && len(events) > 0 {
		from := events[0].Start
		to := events[len(events)-1].Start
		for _, e := range events {
			if e.End != nil && e.End.After(to) {
				to = *e.End
			}
		}
		daylight := &Daylight{}
		if c.Origin != nil {
			daylight.Origin = sunlight.Range(*c.Origin, from, req.TravelStart)
		}
		if c.Destination != nil {
			daylight.Destination = sunlight.Range(*c.Destination, req.TravelStart, to)
		}
		resp.Daylight = daylight
	}
	return resp, nil
}
