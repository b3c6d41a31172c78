package sunlight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paris = Coordinate{Lat: 48.8566, Lon: 2.3522}

func TestCoordinate_Validate(t *testing.T) {
	tests := []struct {
		name  string
		coord Coordinate
		ok    bool
	}{
		{name: "valid", coord: paris, ok: true},
		{name: "latitude too high", coord: Coordinate{Lat: 91}, ok: false},
		{name: "longitude too low", coord: Coordinate{Lon: -181}, ok: false},
		{name: "origin point", coord: Coordinate{}, ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coord.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestDay(t *testing.T) {
	w := Day(paris, time.Date(2025, 6, 21, 12, 0, 0, 0, time.UTC))
	require.False(t, w.Polar)
	assert.True(t, w.Rise.Before(w.Set))
	// Midsummer Paris: roughly 04:00 to 20:00 UTC.
	assert.Equal(t, 21, w.Rise.Day())
	assert.InDelta(t, 4, float64(w.Rise.Hour()), 1.5)
	assert.InDelta(t, 20, float64(w.Set.Hour()), 1.5)
}

func TestDay_PolarNight(t *testing.T) {
	svalbard := Coordinate{Lat: 78.22, Lon: 15.63}
	w := Day(svalbard, time.Date(2025, 12, 21, 12, 0, 0, 0, time.UTC))
	assert.True(t, w.Polar)
}

func TestRange(t *testing.T) {
	from := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 4, 2, 0, 0, 0, time.UTC)

	windows := Range(paris, from, to)
	require.Len(t, windows, 4, "one window per touched calendar day")
	for i := 1; i < len(windows); i++ {
		assert.True(t, windows[i-1].Rise.Before(windows[i].Rise))
	}

	// Swapped endpoints behave the same.
	assert.Equal(t, windows, Range(paris, to, from))
}
