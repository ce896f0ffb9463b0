package schedule

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/reinarrr/TLR-web-cfpages/internal/target"
)

// Sunday 4 January 2026, 01:00 UTC.
var service = time.Date(2026, 1, 4, 1, 0, 0, 0, time.UTC)

func TestPreviousAndNext(t *testing.T) {
	r := DefaultRule()

	tests := []struct {
		name     string
		now      time.Time
		previous time.Time
		next     time.Time
	}{
		{"saturday evening", time.Date(2026, 1, 3, 22, 0, 0, 0, time.UTC), service.AddDate(0, 0, -7), service},
		{"sunday before start", time.Date(2026, 1, 4, 0, 59, 59, 0, time.UTC), service.AddDate(0, 0, -7), service},
		{"exactly at start", service, service, service.AddDate(0, 0, 7)},
		{"sunday after start", time.Date(2026, 1, 4, 5, 0, 0, 0, time.UTC), service, service.AddDate(0, 0, 7)},
		{"midweek", time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC), service, service.AddDate(0, 0, 7)},
		{"non-utc input", time.Date(2026, 1, 3, 19, 0, 0, 0, time.FixedZone("EST", -5*3600)), service.AddDate(0, 0, -7), service},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.previous, r.Previous(tt.now))
			assert.Equal(t, tt.next, r.Next(tt.now))
		})
	}
}

func TestStatusLiveWindow(t *testing.T) {
	r := DefaultRule()

	st := r.StatusAt(service, time.UTC)
	assert.Equal(t, StateLive, st.State)
	assert.Equal(t, "● LIVE NOW", st.Label)
	assert.Equal(t, service, st.Start)

	st = r.StatusAt(service.Add(2*time.Hour-time.Second), time.UTC)
	assert.Equal(t, StateLive, st.State)

	st = r.StatusAt(service.Add(2*time.Hour), time.UTC)
	assert.Equal(t, StateStandard, st.State)
	assert.Equal(t, service.AddDate(0, 0, 7), st.Start)
	assert.Equal(t, "Sunday, January 11 at 1:00 AM", st.Label)
	assert.Equal(t, "Converted to your time (UTC)", st.Subtitle)
}

func TestStatusImminentCountdown(t *testing.T) {
	r := DefaultRule()
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	st := r.StatusAt(service.Add(-3*time.Hour), ny)
	assert.Equal(t, StateImminent, st.State)
	assert.Equal(t, "03:00:00", st.Countdown)
	assert.Equal(t, "Live in 03:00:00", st.Label)
	assert.Equal(t, "Starts at 8:00 PM • America/New York", st.Subtitle)

	st = r.StatusAt(service.Add(-3*time.Hour+time.Second), ny)
	assert.Equal(t, "02:59:59", st.Countdown)

	st = r.StatusAt(service.Add(-1500*time.Millisecond), ny)
	assert.Equal(t, "00:00:01", st.Countdown)
}

func TestStatusCountdownBoundary(t *testing.T) {
	r := DefaultRule()

	st := r.StatusAt(service.Add(-8*time.Hour), time.UTC)
	assert.Equal(t, StateStandard, st.State)
	assert.Equal(t, "Sunday, January 4 at 1:00 AM", st.Label)

	st = r.StatusAt(service.Add(-8*time.Hour+time.Second), time.UTC)
	assert.Equal(t, StateImminent, st.State)
	assert.Equal(t, "07:59:59", st.Countdown)
}

func TestStatusLiveSubtitleLocalTime(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	st := DefaultRule().StatusAt(service.Add(30*time.Minute), ny)
	assert.Equal(t, StateLive, st.State)
	assert.Equal(t, "Started at 8:00 PM (America/New York)", st.Subtitle)
}

func TestFormatCountdown(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatCountdown(-time.Second))
	assert.Equal(t, "00:00:00", FormatCountdown(999*time.Millisecond))
	assert.Equal(t, "01:02:03", FormatCountdown(time.Hour+2*time.Minute+3*time.Second))
	assert.Equal(t, "30:00:00", FormatCountdown(30*time.Hour))
}

func TestRuleValidate(t *testing.T) {
	require.NoError(t, DefaultRule().Validate())

	r := DefaultRule()
	r.Hour = 24
	assert.Error(t, r.Validate())

	r = DefaultRule()
	r.Minute = -1
	assert.Error(t, r.Validate())

	r = DefaultRule()
	r.LiveWindow = 0
	assert.Error(t, r.Validate())

	r = DefaultRule()
	r.Weekday = 9
	assert.Error(t, r.Validate())
}

func TestLabelHTML(t *testing.T) {
	assert.Equal(t, `<span class="text-teal animate-pulse">● LIVE NOW</span>`, LabelHTML(Status{State: StateLive, Label: "● LIVE NOW"}))
	assert.Equal(t, "Live in 03:00:00", LabelHTML(Status{State: StateImminent, Label: "Live in 03:00:00"}))
}

func TestClockRendersImmediatelyAndStops(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	surface := target.NewMemory(TimeContainer, ZoneContainer)
	c := Start(DefaultRule(), time.UTC, surface, Options{
		Interval: time.Hour,
		Now:      func() time.Time { return service.Add(-3 * time.Hour) },
		Logger:   zerolog.Nop(),
	})

	label, ok := surface.Content(TimeContainer)
	require.True(t, ok)
	assert.Equal(t, "Live in 03:00:00", label)
	zone, ok := surface.Content(ZoneContainer)
	require.True(t, ok)
	assert.Equal(t, "Starts at 1:00 AM • UTC", zone)

	c.Stop()
	c.Stop()
}

func TestClockTicks(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var offset atomic.Int64
	now := func() time.Time {
		return service.Add(-3*time.Hour + time.Duration(offset.Load()))
	}

	surface := target.NewMemory(TimeContainer, ZoneContainer)
	c := Start(DefaultRule(), time.UTC, surface, Options{Interval: 5 * time.Millisecond, Now: now, Logger: zerolog.Nop()})
	defer c.Stop()

	offset.Store(int64(3 * time.Hour))
	require.Eventually(t, func() bool {
		label, _ := surface.Content(TimeContainer)
		return label == `<span class="text-teal animate-pulse">● LIVE NOW</span>`
	}, time.Second, 5*time.Millisecond)

	offset.Store(int64(5 * time.Hour))
	require.Eventually(t, func() bool {
		zone, _ := surface.Content(ZoneContainer)
		return zone == "Converted to your time (UTC)"
	}, time.Second, 5*time.Millisecond)
}

func TestClockWithoutContainerIsNoop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	surface := target.NewMemory("youtube-feed")
	c := Start(DefaultRule(), time.UTC, surface, Options{Logger: zerolog.Nop()})
	c.Stop()
	assert.Empty(t, surface.Snapshot())
}
