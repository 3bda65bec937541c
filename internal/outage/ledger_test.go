package outage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minuteMs = int64(60000)

func sample(stationID string, hasFlag bool, epochMs int64, zulu string) StatusUpdate {
	return StatusUpdate{
		StationID:          stationID,
		StationName:        stationID + " Test Station",
		HasFlag:            hasFlag,
		ObservationEpochMs: epochMs,
		ObservationZulu:    zulu,
	}
}

func TestLedgerSingleOutageCycle(t *testing.T) {
	ledger := NewLedger()
	base := time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC).UnixMilli()

	// down at +10min, back up at +40min
	ledger.Apply(sample("KXXX", false, base, "261200Z"))
	ledger.Apply(sample("KXXX", true, base+10*minuteMs, "261210Z"))
	ledger.Apply(sample("KXXX", true, base+25*minuteMs, "261225Z"))
	ledger.Apply(sample("KXXX", false, base+40*minuteMs, "261240Z"))

	require.Len(t, ledger.Events, 1)

	event := ledger.Events[0]
	assert.Equal(t, "KXXX", event.StationID)
	assert.Equal(t, base+10*minuteMs, event.StartEpochMs)
	assert.Equal(t, "261210Z", event.StartZulu)
	require.True(t, event.Closed())
	assert.Equal(t, base+40*minuteMs, *event.EndEpochMs)
	assert.Equal(t, "261240Z", event.EndZulu)
	require.NotNil(t, event.DurationMinutes)
	assert.Equal(t, int64(30), *event.DurationMinutes)

	assert.False(t, ledger.Statuses["KXXX"].HasFlag)
	assert.Equal(t, 0, ledger.DownCount())
}

func TestLedgerFirstSeenFlaggedOpensNoEvent(t *testing.T) {
	ledger := NewLedger()
	base := time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC).UnixMilli()

	// The station enters tracking already flagged. Its ongoing outage
	// has no observed start, so no event is recorded for it.
	ledger.Apply(sample("KXXX", true, base, "261200Z"))
	assert.Empty(t, ledger.Events)
	assert.True(t, ledger.Statuses["KXXX"].HasFlag)
	assert.Equal(t, 1, ledger.DownCount())

	// Recovery flips the status but still records nothing
	ledger.Apply(sample("KXXX", false, base+15*minuteMs, "261215Z"))
	assert.Empty(t, ledger.Events)
	assert.Equal(t, 0, ledger.DownCount())

	// The next full cycle is tracked normally
	ledger.Apply(sample("KXXX", true, base+30*minuteMs, "261230Z"))
	ledger.Apply(sample("KXXX", false, base+45*minuteMs, "261245Z"))
	require.Len(t, ledger.Events, 1)
	assert.True(t, ledger.Events[0].Closed())
}

func TestLedgerTwoIndependentCycles(t *testing.T) {
	ledger := NewLedger()
	base := time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC).UnixMilli()

	ledger.Apply(sample("KXXX", false, base, "261200Z"))
	ledger.Apply(sample("KXXX", true, base+10*minuteMs, "261210Z"))
	ledger.Apply(sample("KXXX", false, base+40*minuteMs, "261240Z"))
	ledger.Apply(sample("KXXX", true, base+100*minuteMs, "261340Z"))
	ledger.Apply(sample("KXXX", false, base+190*minuteMs, "261510Z"))

	require.Len(t, ledger.Events, 2)
	assert.Equal(t, int64(30), *ledger.Events[0].DurationMinutes)
	assert.Equal(t, int64(90), *ledger.Events[1].DurationMinutes)
}

func TestLedgerAtMostOneOpenEvent(t *testing.T) {
	ledger := NewLedger()
	base := time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC).UnixMilli()

	ledger.Apply(sample("KXXX", false, base, "261200Z"))
	for i := int64(1); i <= 5; i++ {
		ledger.Apply(sample("KXXX", true, base+i*10*minuteMs, ""))
	}

	require.Len(t, ledger.Events, 1)
	assert.False(t, ledger.Events[0].Closed())
}

func TestLedgerWithinBatchTransitions(t *testing.T) {
	ledger := NewLedger()
	base := time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC).UnixMilli()

	// Down and back up within one batch still yields a full event
	ledger.ApplyBatch([]StatusUpdate{
		sample("KXXX", false, base, "261200Z"),
		sample("KXXX", true, base+5*minuteMs, "261205Z"),
		sample("KXXX", false, base+9*minuteMs, "261209Z"),
	})

	require.Len(t, ledger.Events, 1)
	require.True(t, ledger.Events[0].Closed())
	assert.Equal(t, int64(4), *ledger.Events[0].DurationMinutes)
	assert.False(t, ledger.Statuses["KXXX"].HasFlag)
}

func TestLedgerDurationRounding(t *testing.T) {
	tests := []struct {
		name    string
		elapsed int64 // milliseconds
		want    int64 // minutes
	}{
		{"zero", 0, 0},
		{"half minute rounds up", 30 * 1000, 1},
		{"just under half rounds down", 29 * 1000, 0},
		{"ninety seconds", 90 * 1000, 2},
		{"out of order timestamps clamp to zero", -5 * minuteMs, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := NewLedger()
			base := int64(1714132800000)
			ledger.Apply(sample("KXXX", false, base, ""))
			ledger.Apply(sample("KXXX", true, base, ""))
			ledger.Apply(sample("KXXX", false, base+tt.elapsed, ""))

			require.Len(t, ledger.Events, 1)
			require.True(t, ledger.Events[0].Closed())
			assert.Equal(t, tt.want, *ledger.Events[0].DurationMinutes)
		})
	}
}

func TestLedgerIndependentStations(t *testing.T) {
	ledger := NewLedger()
	base := time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC).UnixMilli()

	ledger.ApplyBatch([]StatusUpdate{
		sample("KORD", false, base, "261200Z"),
		sample("KSEA", false, base, "261200Z"),
	})
	ledger.ApplyBatch([]StatusUpdate{
		sample("KORD", true, base+10*minuteMs, "261210Z"),
		sample("KSEA", false, base+10*minuteMs, "261210Z"),
	})

	require.Len(t, ledger.Events, 1)
	assert.Equal(t, "KORD", ledger.Events[0].StationID)
	assert.Equal(t, 1, ledger.DownCount())
}

func TestLedgerTrim(t *testing.T) {
	ledger := NewLedger()
	base := time.Date(2024, 4, 26, 0, 0, 0, 0, time.UTC).UnixMilli()

	ledger.Apply(sample("KXXX", false, base, ""))
	for i := int64(0); i < 7; i++ {
		ledger.Apply(sample("KXXX", true, base+(2*i)*minuteMs, ""))
		ledger.Apply(sample("KXXX", false, base+(2*i+1)*minuteMs, ""))
	}
	require.Len(t, ledger.Events, 7)

	ledger.Trim(5)
	require.Len(t, ledger.Events, 5)

	// The oldest two were dropped; order of the survivors is preserved
	assert.Equal(t, base+4*minuteMs, ledger.Events[0].StartEpochMs)
	assert.Equal(t, base+12*minuteMs, ledger.Events[4].StartEpochMs)

	t.Run("within cap is a no-op", func(t *testing.T) {
		ledger.Trim(100)
		assert.Len(t, ledger.Events, 5)
	})

	t.Run("zero cap is a no-op", func(t *testing.T) {
		ledger.Trim(0)
		assert.Len(t, ledger.Events, 5)
	})
}

func TestLedgerStationNameRefresh(t *testing.T) {
	ledger := NewLedger()
	base := time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC).UnixMilli()

	ledger.Apply(StatusUpdate{StationID: "KXXX", StationName: "Old Name", ObservationEpochMs: base})
	ledger.Apply(StatusUpdate{StationID: "KXXX", StationName: "New Name", ObservationEpochMs: base + minuteMs})
	assert.Equal(t, "New Name", ledger.Statuses["KXXX"].StationName)

	// A blank name never erases a known one
	ledger.Apply(StatusUpdate{StationID: "KXXX", ObservationEpochMs: base + 2*minuteMs})
	assert.Equal(t, "New Name", ledger.Statuses["KXXX"].StationName)
}
