package outage

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closedEvent(stationID string, startEpochMs, durationMinutes int64) *OutageEvent {
	end := startEpochMs + durationMinutes*minuteMs
	return &OutageEvent{
		StationID:       stationID,
		StartEpochMs:    startEpochMs,
		EndEpochMs:      &end,
		DurationMinutes: &durationMinutes,
	}
}

func openEvent(stationID string, startEpochMs int64) *OutageEvent {
	return &OutageEvent{StationID: stationID, StartEpochMs: startEpochMs}
}

func TestComputeStats(t *testing.T) {
	base := time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(base.Add(400 * time.Minute)))
	t.Cleanup(func() { SetClock(nil) })

	baseMs := base.UnixMilli()

	t.Run("two closed outages", func(t *testing.T) {
		events := []*OutageEvent{
			closedEvent("KXXX", baseMs, 30),
			closedEvent("KXXX", baseMs+100*minuteMs, 90),
		}

		stats := ComputeStats(events)
		require.Len(t, stats, 1)

		st := stats["KXXX"]
		require.NotNil(t, st)
		assert.Equal(t, 2, st.TotalOutages)
		assert.Equal(t, int64(120), st.TotalDowntimeMinutes)
		assert.Equal(t, int64(60), st.AverageDowntimeMinutes)
		assert.Equal(t, int64(90), st.LongestOutageMinutes)
		assert.Equal(t, baseMs, st.FirstOutageEpochMs)
		assert.Equal(t, baseMs+100*minuteMs, st.LastOutageEpochMs)
		assert.False(t, st.CurrentlyDown)

		// 120 minutes down over the 400 minutes since the first outage
		assert.InDelta(t, 30.0, st.DowntimePercentage, 0.001)
	})

	t.Run("open outage only", func(t *testing.T) {
		stats := ComputeStats([]*OutageEvent{openEvent("KXXX", baseMs)})

		st := stats["KXXX"]
		require.NotNil(t, st)
		assert.True(t, st.CurrentlyDown)
		assert.Equal(t, 1, st.TotalOutages)
		assert.Equal(t, int64(0), st.TotalDowntimeMinutes)
		assert.Equal(t, int64(0), st.AverageDowntimeMinutes)
		assert.Equal(t, 0.0, st.DowntimePercentage)
	})

	t.Run("closed plus open", func(t *testing.T) {
		events := []*OutageEvent{
			closedEvent("KXXX", baseMs, 30),
			openEvent("KXXX", baseMs+200*minuteMs),
		}

		st := ComputeStats(events)["KXXX"]
		require.NotNil(t, st)
		assert.True(t, st.CurrentlyDown)
		assert.Equal(t, 2, st.TotalOutages)
		assert.Equal(t, int64(30), st.TotalDowntimeMinutes)
		assert.Equal(t, int64(30), st.AverageDowntimeMinutes)
	})

	t.Run("no events", func(t *testing.T) {
		assert.Empty(t, ComputeStats(nil))
	})
}

func TestDowntimePercentageClamping(t *testing.T) {
	now := int64(1714132800000)

	// Downtime cannot exceed tracked time
	assert.Equal(t, 100.0, downtimePercentage(500, now-100*minuteMs, now))

	// A first outage in the future yields zero, not a negative share
	assert.Equal(t, 0.0, downtimePercentage(30, now+10*minuteMs, now))

	assert.Equal(t, 0.0, downtimePercentage(0, now-100*minuteMs, now))
	assert.InDelta(t, 50.0, downtimePercentage(50, now-100*minuteMs, now), 0.001)
}

func TestLeaderboard(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2024, 4, 27, 0, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { SetClock(nil) })

	base := time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC).UnixMilli()
	events := []*OutageEvent{
		closedEvent("KSEA", base, 15),
		closedEvent("KORD", base, 90),
		closedEvent("KBLI", base, 15),
		closedEvent("KORD", base+100*minuteMs, 30),
	}

	ranked := Leaderboard(events)
	require.Len(t, ranked, 3)

	// Worst first, ties broken by station id
	assert.Equal(t, "KORD", ranked[0].StationID)
	assert.Equal(t, int64(120), ranked[0].TotalDowntimeMinutes)
	assert.Equal(t, "KBLI", ranked[1].StationID)
	assert.Equal(t, "KSEA", ranked[2].StationID)

	t.Run("empty log", func(t *testing.T) {
		assert.Empty(t, Leaderboard(nil))
	})
}
