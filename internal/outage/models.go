package outage

import "time"

// OutageEvent is one discrete maintenance outage interval for a
// station. Events are append-only; an open event has no end fields.
type OutageEvent struct {
	StationID       string `json:"station_id"`
	StationName     string `json:"station_name"`
	StartEpochMs    int64  `json:"start_epoch_ms"`
	StartZulu       string `json:"start_zulu,omitempty"`
	EndEpochMs      *int64 `json:"end_epoch_ms"`
	EndZulu         string `json:"end_zulu,omitempty"`
	DurationMinutes *int64 `json:"duration_minutes"`
}

// Closed reports whether the event has ended
func (e *OutageEvent) Closed() bool {
	return e.EndEpochMs != nil
}

// StationStatus is the current snapshot for one station, the baseline
// new batches are diffed against
type StationStatus struct {
	StationName            string    `json:"station_name"`
	HasFlag                bool      `json:"has_flag"`
	LastSeen               time.Time `json:"last_seen"`
	LastObservationEpochMs int64     `json:"last_observation_epoch_ms"`
	LastObservationZulu    string    `json:"last_observation_zulu,omitempty"`
}

// StatusUpdate is one per-station flag sample submitted to the ledger.
// Time fields come from the observation itself, not wall-clock time, so
// the outage log's time axis stays consistent with report time even
// when processing is delayed or batched.
type StatusUpdate struct {
	StationID          string
	StationName        string
	HasFlag            bool
	ObservationEpochMs int64
	ObservationZulu    string
}

// StationStats is derived on demand from the event log, never persisted
type StationStats struct {
	StationID              string  `json:"station_id"`
	StationName            string  `json:"station_name"`
	TotalOutages           int     `json:"total_outages"`
	TotalDowntimeMinutes   int64   `json:"total_downtime_minutes"`
	AverageDowntimeMinutes int64   `json:"average_downtime_minutes"`
	LongestOutageMinutes   int64   `json:"longest_outage_minutes"`
	FirstOutageEpochMs     int64   `json:"first_outage_epoch_ms"`
	LastOutageEpochMs      int64   `json:"last_outage_epoch_ms"`
	CurrentlyDown          bool    `json:"currently_down"`
	DowntimePercentage     float64 `json:"downtime_percentage"`
}
