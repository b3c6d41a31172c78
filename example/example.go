// Example: build the timetable for an eastbound New York to Paris trip
// with two preconditioning days and print a compact daily plan.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	jetlag "github.com/chronoplan/go-jetlag"
)

func main() {
	clock := func(h int) jetlag.TimeOfDay { return jetlag.TimeOfDay{Hour: h} }

	events, err := jetlag.BuildTimetable(jetlag.Request{
		OriginOffsetHours: -5, // New York, EST
		DestOffsetHours:   1,  // Paris, CET
		OriginSleepStart:  clock(23),
		OriginSleepEnd:    clock(7),
		DestSleepStart:    clock(23),
		DestSleepEnd:      clock(7),
		TravelStart:       time.Date(2025, time.June, 1, 23, 30, 0, 0, time.UTC),
		TravelEnd:         time.Date(2025, time.June, 2, 7, 0, 0, 0, time.UTC),
		Methods:           jetlag.Methods{Melatonin: true, Light: true, Dark: true},
		PreconditionDays:  2,
	})
	if err != nil {
		slog.Error("building timetable failed", "error", err)
		os.Exit(1)
	}

	for _, e := range events {
		switch {
		case e.End != nil:
			fmt.Printf("%s  %-9s  until %s\n",
				e.Start.Format(time.RFC3339), e.Kind, e.End.Format("15:04"))
		case e.DayIndex != nil:
			fmt.Printf("%s  %-9s  day %d\n",
				e.Start.Format(time.RFC3339), e.Kind, *e.DayIndex)
		default:
			fmt.Printf("%s  %-9s\n", e.Start.Format(time.RFC3339), e.Kind)
		}
	}

	// Half-hour raster across the travel day, handy for plotting.
	slots, err := jetlag.Rasterize(events,
		time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 3, 0, 0, 0, 0, time.UTC),
		30*time.Minute)
	if err != nil {
		slog.Error("rasterizing failed", "error", err)
		os.Exit(1)
	}
	busy := 0
	for _, s := range slots {
		if len(s.Events) > 0 {
			busy++
		}
	}
	fmt.Printf("\n%d of %d travel-day slots carry at least one event\n", busy, len(slots))
}
