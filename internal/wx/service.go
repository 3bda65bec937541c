package wx

import (
	"context"
	"sync"
	"time"

	"github.com/skywatch/metarboard/internal/config"
	"github.com/skywatch/metarboard/internal/observability"
	"github.com/skywatch/metarboard/internal/outage"
	"github.com/skywatch/metarboard/internal/websocket"
	"github.com/skywatch/metarboard/pkg/logger"
)

// Service manages periodic observation collection, caching, outage
// tracking, and client notification
type Service struct {
	config        config.WxConfig
	outagesConfig config.OutagesConfig
	collector     *Collector
	cache         *Cache
	outageService *outage.Service
	wsServer      *websocket.Server
	logger        *logger.Logger

	// Service lifecycle
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	mu      sync.RWMutex

	// Initial data readiness
	initialDataReady chan struct{}
	initialDataOnce  sync.Once
}

// NewService creates a new weather service
func NewService(
	wxCfg config.WxConfig,
	outagesCfg config.OutagesConfig,
	collector *Collector,
	outageService *outage.Service,
	wsServer *websocket.Server,
	log *logger.Logger,
) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	return &Service{
		config:           wxCfg,
		outagesConfig:    outagesCfg,
		collector:        collector,
		cache:            NewCache(time.Duration(wxCfg.CacheExpiryMinutes)*time.Minute, log),
		outageService:    outageService,
		wsServer:         wsServer,
		logger:           log.Named("wx-service"),
		ctx:              ctx,
		cancel:           cancel,
		initialDataReady: make(chan struct{}),
	}
}

// Start begins the background collection loop
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil // Already started
	}

	s.logger.Info("Starting weather service",
		logger.Int("refresh_interval_minutes", s.config.RefreshIntervalMinutes),
		logger.Bool("outage_tracking", s.outagesConfig.Enabled))

	// Perform initial fetch
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.performInitialFetch()
	}()

	// Start background refresh goroutine
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.backgroundRefresh()
	}()

	s.started = true
	return nil
}

// Stop gracefully shuts down the service
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil // Already stopped
	}

	s.logger.Info("Stopping weather service")
	s.cancel()
	s.wg.Wait()
	s.started = false
	s.logger.Info("Weather service stopped")
	return nil
}

// IsStarted returns whether the service is currently running
func (s *Service) IsStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// GetSnapshot returns the current cached observation snapshot, waiting
// for the initial collection to finish when the service just started
func (s *Service) GetSnapshot() *Snapshot {
	select {
	case <-s.initialDataReady:
	case <-time.After(30 * time.Second):
		s.logger.Warn("Timeout waiting for initial observation data")
		return nil
	}

	return s.cache.Get()
}

// RefreshNow triggers an immediate refresh cycle
func (s *Service) RefreshNow() {
	s.logger.Info("Manual refresh triggered")
	go s.refreshOnce()
}

// GetCacheStats returns cache statistics
func (s *Service) GetCacheStats() map[string]interface{} {
	return s.cache.GetStats()
}

// performInitialFetch performs the first collection cycle on service start
func (s *Service) performInitialFetch() {
	s.logger.Info("Performing initial observation collection")

	s.refreshOnce()

	s.initialDataOnce.Do(func() {
		close(s.initialDataReady)
		s.logger.Info("Initial observation collection completed")
	})
}

// backgroundRefresh runs the periodic collection cycle
func (s *Service) backgroundRefresh() {
	refreshInterval := time.Duration(s.config.RefreshIntervalMinutes) * time.Minute
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	s.logger.Info("Background refresh started",
		logger.String("interval", refreshInterval.String()))

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info("Background refresh stopped")
			return
		case <-ticker.C:
			s.logger.Debug("Periodic refresh triggered")
			s.refreshOnce()
		}
	}
}

// refreshOnce runs one full cycle: collect, cache, track outages, notify
func (s *Service) refreshOnce() {
	startTime := time.Now()

	observations := s.collector.CollectAll()
	if len(observations) == 0 {
		// Provider fully unreachable; keep serving the previous
		// snapshot instead of replacing it with nothing.
		s.logger.Warn("Collection cycle produced no observations, keeping previous snapshot")
		return
	}

	s.cache.Set(observations)
	observability.CollectionCyclesTotal.Inc()

	if s.outagesConfig.Enabled {
		s.trackOutages(observations)
	}

	if s.wsServer != nil {
		s.wsServer.Broadcast(&websocket.Message{
			Type: websocket.MessageTypeObservations,
			Data: map[string]any{
				"stations":     len(observations),
				"last_updated": time.Now().UTC(),
			},
		})
	}

	s.logger.Info("Refresh cycle completed",
		logger.Int("stations", len(observations)),
		logger.Duration("duration", time.Since(startTime)))
}

// trackOutages feeds the cycle's maintenance flags through the outage ledger
func (s *Service) trackOutages(observations map[string]Observation) {
	updates := make([]outage.StatusUpdate, 0, len(observations))
	for _, obs := range observations {
		updates = append(updates, outage.StatusUpdate{
			StationID:          obs.StationID,
			StationName:        obs.StationName,
			HasFlag:            obs.HasMaintenanceFlag,
			ObservationEpochMs: obs.ObservationEpochMs,
			ObservationZulu:    obs.ObservationZulu,
		})
	}

	ledger, err := s.outageService.Update(updates)
	if err != nil {
		// The batch is dropped, not retried here; the next cycle
		// resubmits current flags.
		s.logger.Error("Failed to update outage ledger", logger.Error(err))
		return
	}

	if s.wsServer != nil {
		s.wsServer.Broadcast(&websocket.Message{
			Type: websocket.MessageTypeOutages,
			Data: map[string]any{
				"stations_down": ledger.DownCount(),
				"total_events":  len(ledger.Events),
			},
		})
	}
}
