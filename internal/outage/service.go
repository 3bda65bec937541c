package outage

import (
	"encoding/json"
	"fmt"

	"github.com/skywatch/metarboard/internal/config"
	"github.com/skywatch/metarboard/internal/observability"
	"github.com/skywatch/metarboard/pkg/logger"
)

// Service owns the ledger's read-modify-write cycle against the blob
// store. Reads fail open to an empty ledger; write failures are
// returned to the caller and the in-memory mutation is discarded.
type Service struct {
	store     Store
	ledgerKey string
	maxEvents int
	logger    *logger.Logger
}

// NewService creates a new outage tracking service
func NewService(store Store, cfg config.OutagesConfig, log *logger.Logger) *Service {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 1000
	}
	return &Service{
		store:     store,
		ledgerKey: cfg.LedgerKey,
		maxEvents: maxEvents,
		logger:    log.Named("outage-service"),
	}
}

// Update runs one batch of status samples through the ledger and
// persists the result. Updates are applied in input order. On write
// failure the error is returned and nothing is persisted; the caller
// may retry with the same batch.
func (s *Service) Update(updates []StatusUpdate) (*Ledger, error) {
	ledger := s.load()

	eventsBefore := len(ledger.Events)
	ledger.ApplyBatch(updates)
	ledger.Trim(s.maxEvents)

	if err := s.save(ledger); err != nil {
		observability.LedgerWritesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to persist outage ledger: %w", err)
	}
	observability.LedgerWritesTotal.WithLabelValues("ok").Inc()
	observability.StationsDown.Set(float64(ledger.DownCount()))

	s.logger.Info("Outage ledger updated",
		logger.Int("updates", len(updates)),
		logger.Int("stations_tracked", len(ledger.Statuses)),
		logger.Int("stations_down", ledger.DownCount()),
		logger.Int("new_events", len(ledger.Events)-eventsBefore),
		logger.Int("total_events", len(ledger.Events)))

	return ledger, nil
}

// Events returns the persisted event log, newest first
func (s *Service) Events() []*OutageEvent {
	ledger := s.load()

	events := make([]*OutageEvent, len(ledger.Events))
	for i, event := range ledger.Events {
		events[len(events)-1-i] = event
	}
	return events
}

// Leaderboard returns stations ranked by total downtime, worst first
func (s *Service) Leaderboard() []StationStats {
	return Leaderboard(s.load().Events)
}

// Reset deletes the persisted ledger entirely
func (s *Service) Reset() error {
	if err := s.store.Delete(s.ledgerKey); err != nil {
		return fmt.Errorf("failed to delete outage ledger: %w", err)
	}
	s.logger.Info("Outage ledger reset")
	return nil
}

// load reads the full ledger from storage. A read failure is treated as
// an empty ledger (no history) rather than propagated.
func (s *Service) load() *Ledger {
	blob, found, err := s.store.Get(s.ledgerKey)
	if err != nil {
		s.logger.Warn("Failed to read outage ledger, starting empty", logger.Error(err))
		return NewLedger()
	}
	if !found {
		return NewLedger()
	}

	ledger := NewLedger()
	if err := json.Unmarshal(blob, ledger); err != nil {
		s.logger.Warn("Failed to decode outage ledger, starting empty", logger.Error(err))
		return NewLedger()
	}
	if ledger.Statuses == nil {
		ledger.Statuses = make(map[string]*StationStatus)
	}
	return ledger
}

// save writes the full ledger back to storage
func (s *Service) save(ledger *Ledger) error {
	blob, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	return s.store.Set(s.ledgerKey, blob)
}
