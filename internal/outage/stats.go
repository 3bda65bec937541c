package outage

import (
	"math"
	"sort"
)

// ComputeStats derives per-station statistics from the event log. It is
// a pure recomputation over the events each time, not incrementally
// maintained.
func ComputeStats(events []*OutageEvent) map[string]*StationStats {
	stats := make(map[string]*StationStats)
	closedCounts := make(map[string]int)

	for _, event := range events {
		st, ok := stats[event.StationID]
		if !ok {
			st = &StationStats{
				StationID:          event.StationID,
				StationName:        event.StationName,
				FirstOutageEpochMs: event.StartEpochMs,
				LastOutageEpochMs:  event.StartEpochMs,
			}
			stats[event.StationID] = st
		}

		st.TotalOutages++
		if event.StartEpochMs < st.FirstOutageEpochMs {
			st.FirstOutageEpochMs = event.StartEpochMs
		}
		if event.StartEpochMs > st.LastOutageEpochMs {
			st.LastOutageEpochMs = event.StartEpochMs
		}
		if event.StationName != "" {
			st.StationName = event.StationName
		}

		if !event.Closed() {
			st.CurrentlyDown = true
			continue
		}

		closedCounts[event.StationID]++
		st.TotalDowntimeMinutes += *event.DurationMinutes
		if *event.DurationMinutes > st.LongestOutageMinutes {
			st.LongestOutageMinutes = *event.DurationMinutes
		}
	}

	// Mean and percentage are defined over closed events only; both
	// stay zero for stations with nothing but an ongoing outage.
	now := clock.Now().UnixMilli()
	for stationID, st := range stats {
		closed := closedCounts[stationID]
		if closed == 0 {
			continue
		}
		st.AverageDowntimeMinutes = int64(math.Round(float64(st.TotalDowntimeMinutes) / float64(closed)))
		st.DowntimePercentage = downtimePercentage(st.TotalDowntimeMinutes, st.FirstOutageEpochMs, now)
	}

	return stats
}

// Leaderboard ranks stations by total downtime, worst first. Ties break
// by station id for stable output.
func Leaderboard(events []*OutageEvent) []StationStats {
	byStation := ComputeStats(events)

	ranked := make([]StationStats, 0, len(byStation))
	for _, st := range byStation {
		ranked = append(ranked, *st)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalDowntimeMinutes != ranked[j].TotalDowntimeMinutes {
			return ranked[i].TotalDowntimeMinutes > ranked[j].TotalDowntimeMinutes
		}
		return ranked[i].StationID < ranked[j].StationID
	})
	return ranked
}

// downtimePercentage is the share of tracked time the station spent
// down, from its first recorded outage to now, clamped to [0, 100]
func downtimePercentage(totalDowntimeMinutes, firstOutageEpochMs, nowEpochMs int64) float64 {
	elapsedMinutes := float64(nowEpochMs-firstOutageEpochMs) / 60000.0
	if elapsedMinutes <= 0 {
		return 0
	}
	pct := float64(totalDowntimeMinutes) / elapsedMinutes * 100.0
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
