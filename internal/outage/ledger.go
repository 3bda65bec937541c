package outage

import "math"

// Ledger is the full outage tracking state: the per-station status map
// plus the insertion-ordered event log. It is loaded from storage in
// full, mutated in memory, and written back in full.
type Ledger struct {
	Statuses map[string]*StationStatus `json:"statuses"`
	Events   []*OutageEvent            `json:"events"`
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{
		Statuses: make(map[string]*StationStatus),
	}
}

// Apply runs one status sample through the per-station state machine.
// Transitions fire only on a change relative to the previously stored
// status: a station seen for the first time registers its status but
// opens no event, even when first seen flagged. An outage already in
// progress at cold start therefore stays invisible until it resolves.
func (l *Ledger) Apply(update StatusUpdate) {
	if l.Statuses == nil {
		l.Statuses = make(map[string]*StationStatus)
	}

	status, seen := l.Statuses[update.StationID]
	if !seen {
		l.Statuses[update.StationID] = statusFrom(update)
		return
	}

	previousFlag := status.HasFlag

	status.HasFlag = update.HasFlag
	status.LastSeen = clock.Now()
	status.LastObservationEpochMs = update.ObservationEpochMs
	status.LastObservationZulu = update.ObservationZulu
	if update.StationName != "" {
		status.StationName = update.StationName
	}

	switch {
	case update.HasFlag && !previousFlag:
		l.openEvent(update)
	case !update.HasFlag && previousFlag:
		l.closeEvent(update)
	}
}

// ApplyBatch applies the updates in input order, transition by
// transition. Multiple samples for one station within a batch each pass
// through the state machine; the last one determines the final status.
func (l *Ledger) ApplyBatch(updates []StatusUpdate) {
	for _, update := range updates {
		l.Apply(update)
	}
}

// openEvent appends a new open event for the station unless one is
// already open (at most one open event per station)
func (l *Ledger) openEvent(update StatusUpdate) {
	if l.findOpenEvent(update.StationID) != nil {
		return
	}
	l.Events = append(l.Events, &OutageEvent{
		StationID:    update.StationID,
		StationName:  update.StationName,
		StartEpochMs: update.ObservationEpochMs,
		StartZulu:    update.ObservationZulu,
	})
}

// closeEvent closes the station's open event, if any
func (l *Ledger) closeEvent(update StatusUpdate) {
	event := l.findOpenEvent(update.StationID)
	if event == nil {
		return
	}

	end := update.ObservationEpochMs
	event.EndEpochMs = &end
	event.EndZulu = update.ObservationZulu

	duration := int64(math.Round(float64(end-event.StartEpochMs) / 60000.0))
	if duration < 0 {
		duration = 0
	}
	event.DurationMinutes = &duration
}

// findOpenEvent returns the most recent open event for the station, or nil
func (l *Ledger) findOpenEvent(stationID string) *OutageEvent {
	for i := len(l.Events) - 1; i >= 0; i-- {
		if l.Events[i].StationID == stationID && !l.Events[i].Closed() {
			return l.Events[i]
		}
	}
	return nil
}

// Trim drops the oldest events until the log is within the cap
func (l *Ledger) Trim(maxEvents int) {
	if maxEvents <= 0 || len(l.Events) <= maxEvents {
		return
	}
	l.Events = l.Events[len(l.Events)-maxEvents:]
}

// DownCount returns the number of stations currently flagged
func (l *Ledger) DownCount() int {
	var count int
	for _, status := range l.Statuses {
		if status.HasFlag {
			count++
		}
	}
	return count
}

func statusFrom(update StatusUpdate) *StationStatus {
	return &StationStatus{
		StationName:            update.StationName,
		HasFlag:                update.HasFlag,
		LastSeen:               clock.Now(),
		LastObservationEpochMs: update.ObservationEpochMs,
		LastObservationZulu:    update.ObservationZulu,
	}
}
