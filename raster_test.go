package jetlag

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pointAt(kind EventKind, at time.Time) TimelineEvent {
	return TimelineEvent{Kind: kind, Start: at, Flags: FlagsFor(kind)}
}

func spanAt(kind EventKind, start, end time.Time) TimelineEvent {
	return TimelineEvent{Kind: kind, Start: start, End: &end, Flags: FlagsFor(kind)}
}

func TestRasterize(t *testing.T) {
	day := utc(2025, time.June, 2, 0, 0)
	events := []TimelineEvent{
		pointAt(EventCBTmin, day.Add(90*time.Minute)),
		spanAt(EventSleep, day, day.Add(2*time.Hour)),
		spanAt(EventLight, day.Add(3*time.Hour), day.Add(4*time.Hour)),
	}

	slots, err := Rasterize(events, day, day.Add(4*time.Hour), time.Hour)
	require.NoError(t, err)
	require.Len(t, slots, 4)

	assert.Equal(t, []string{"sleep"}, slots[0].Events)
	assert.True(t, slots[0].Flags.Sleep)
	assert.False(t, slots[0].Flags.CBTmin)

	// The point event lands in the slot containing its instant, on top of
	// the sleep window still covering that hour.
	assert.Equal(t, []string{"cbtmin", "sleep"}, slots[1].Events)
	assert.True(t, slots[1].Flags.CBTmin)

	assert.Empty(t, slots[2].Events)
	assert.Equal(t, []string{"light"}, slots[3].Events)
}

func TestRasterize_ClipsFinalSlot(t *testing.T) {
	start := utc(2025, time.June, 2, 0, 0)
	slots, err := Rasterize(nil, start, start.Add(100*time.Minute), time.Hour)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, start.Add(100*time.Minute), slots[1].End)
	assert.Equal(t, 40*time.Minute, slots[1].End.Sub(slots[1].Start))
}

func TestRasterize_ZeroLengthIntervalActsAsPoint(t *testing.T) {
	at := utc(2025, time.June, 2, 1, 30)
	travel := spanAt(EventTravel, at, at)

	slots, err := Rasterize([]TimelineEvent{travel}, utc(2025, time.June, 2, 0, 0), utc(2025, time.June, 2, 3, 0), time.Hour)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Empty(t, slots[0].Events)
	assert.Equal(t, []string{"travel"}, slots[1].Events)
	assert.Empty(t, slots[2].Events)
}

func TestRasterize_BoundarySemantics(t *testing.T) {
	start := utc(2025, time.June, 2, 0, 0)
	// A point exactly on a slot boundary belongs to the slot it opens,
	// and an interval ending on a boundary does not reach into the next.
	events := []TimelineEvent{
		pointAt(EventMelatonin, start.Add(time.Hour)),
		spanAt(EventDark, start, start.Add(time.Hour)),
	}

	slots, err := Rasterize(events, start, start.Add(2*time.Hour), time.Hour)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, []string{"dark"}, slots[0].Events)
	assert.Equal(t, []string{"melatonin"}, slots[1].Events)
}

func TestRasterize_InvalidStep(t *testing.T) {
	start := utc(2025, time.June, 2, 0, 0)
	_, err := Rasterize(nil, start, start.Add(time.Hour), 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Rasterize(nil, start, start.Add(time.Hour), -time.Minute)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRasterize_EmptyWindow(t *testing.T) {
	start := utc(2025, time.June, 2, 0, 0)
	slots, err := Rasterize(nil, start, start, time.Hour)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestRasterize_FullTimetableCoverage(t *testing.T) {
	events, err := BuildTimetable(newYorkToParis())
	require.NoError(t, err)

	from := utc(2025, time.May, 29, 0, 0)
	to := utc(2025, time.June, 9, 0, 0)
	slots, err := Rasterize(events, from, to, 30*time.Minute)
	require.NoError(t, err)
	require.Len(t, slots, 11*48)

	// Every event inside the window shows up in at least one slot.
	covered := map[string]bool{}
	for _, s := range slots {
		for _, k := range s.Events {
			covered[k] = true
		}
	}
	for _, kind := range []string{"cbtmin", "melatonin", "light", "dark", "sleep", "travel"} {
		assert.True(t, covered[kind], "kind %s missing from raster", kind)
	}
}
