package httpapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronoplan/go-jetlag"
	"github.com/chronoplan/go-jetlag/internal/sunlight"
)

func parisTrip() CalcRequest {
	return CalcRequest{
		OriginOffset:     -5,
		DestOffset:       1,
		OriginSleepStart: "23:00",
		OriginSleepEnd:   "07:00",
		DestSleepStart:   "23:00",
		DestSleepEnd:     "07:00",
		TravelStart:      "2025-06-01T18:30",
		TravelEnd:        "2025-06-02T08:00",
		UseMelatonin:     true,
		UseLightDark:     true,
		PreDays:          2,
	}
}

func TestCalcRequest_ToRequest(t *testing.T) {
	req, err := parisTrip().ToRequest()
	require.NoError(t, err)

	// 18:30 at UTC-5 is 23:30 UTC; 08:00 at UTC+1 is 07:00 UTC.
	assert.Equal(t, time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC), req.TravelStart)
	assert.Equal(t, time.Date(2025, 6, 2, 7, 0, 0, 0, time.UTC), req.TravelEnd)

	assert.Equal(t, jetlag.TimeOfDay{Hour: 23}, req.OriginSleepStart)
	assert.Equal(t, jetlag.TimeOfDay{Hour: 7}, req.OriginSleepEnd)
	assert.Equal(t, 2, req.PreconditionDays)

	// useLightDark drives both window methods together.
	assert.True(t, req.Methods.Melatonin)
	assert.True(t, req.Methods.Light)
	assert.True(t, req.Methods.Dark)
	assert.False(t, req.Methods.Exercise)
}

func TestCalcRequest_ToRequestErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CalcRequest)
	}{
		{name: "bad sleep clock", mutate: func(c *CalcRequest) { c.OriginSleepStart = "25:99" }},
		{name: "bad travel format", mutate: func(c *CalcRequest) { c.TravelStart = "06/01/2025 18:30" }},
		{name: "bad coordinate", mutate: func(c *CalcRequest) { c.Origin = &sunlight.Coordinate{Lat: 123} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := parisTrip()
			tt.mutate(&c)
			_, err := c.ToRequest()
			assert.Error(t, err)
		})
	}
}

func TestConfig_Compute(t *testing.T) {
	resp, err := DefaultConfig().Compute(parisTrip())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Events)
	assert.Nil(t, resp.Daylight, "no coordinates means no daylight block")
}

func TestConfig_ComputeWithDaylight(t *testing.T) {
	c := parisTrip()
	c.Origin = &sunlight.Coordinate{Lat: 40.71, Lon: -74.01}
	c.Destination = &sunlight.Coordinate{Lat: 48.86, Lon: 2.35}

	resp, err := DefaultConfig().Compute(c)
	require.NoError(t, err)
	require.NotNil(t, resp.Daylight)
	assert.NotEmpty(t, resp.Daylight.Origin)
	assert.NotEmpty(t, resp.Daylight.Destination)
}

func TestConfig_ComputeRejectsBadInput(t *testing.T) {
	c := parisTrip()
	c.PreDays = -1
	_, err := DefaultConfig().Compute(c)
	assert.ErrorIs(t, err, jetlag.ErrInvalidArgument)
}
