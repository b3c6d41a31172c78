// Package sunlight computes daylight windows for a coordinate, used to
// annotate timetables with whether a scheduled light window can rely on
// natural daylight.
package sunlight

import (
	"fmt"
	"time"

	"github.com/dromara/carbon/v2"
	sunriseLib "github.com/nathan-osman/go-sunrise"
)

// Coordinate is a geographic position in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Validate rejects out-of-range coordinates.
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]", c.Lon)
	}
	return nil
}

// Window is one day's daylight span in UTC. Polar days and nights yield
// Polar=true with zero Rise/Set.
type Window struct {
	Rise  time.Time `json:"rise"`
	Set   time.Time `json:"set"`
	Polar bool      `json:"polar,omitempty"`
}

// Day returns the daylight window for the UTC calendar day containing t.
func Day(coord Coordinate, t time.Time) Window {
	date := carbon.CreateFromStdTime(t.UTC())
	rise, set := sunriseLib.SunriseSunset(coord.Lat, coord.Lon, date.Year(), time.Month(date.Month()), date.Day())
	if rise.IsZero() || set.IsZero() {
		return Window{Polar: true}
	}
	return Window{Rise: rise.UTC(), Set: set.UTC()}
}

// Range returns one window per UTC calendar day from the day containing
// from through the day containing to.
func Range(coord Coordinate, from, to time.Time) []Window {
	if to.Before(from) {
		from, to = to, from
	}
	var windows []Window
	last := carbon.CreateFromStdTime(to.UTC()).StartOfDay()
	for day := carbon.CreateFromStdTime(from.UTC()).StartOfDay(); !day.Gt(last); day = day.AddDay() {
		windows = append(windows, Day(coord, day.StdTime()))
	}
	return windows
}
