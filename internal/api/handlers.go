package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/skywatch/metarboard/internal/outage"
	"github.com/skywatch/metarboard/internal/wx"
	"github.com/skywatch/metarboard/pkg/logger"
)

// Handler contains the API handlers
type Handler struct {
	wxService     *wx.Service
	wxClient      *wx.Client
	outageService *outage.Service
	logger        *logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(wxService *wx.Service, wxClient *wx.Client, outageService *outage.Service, log *logger.Logger) *Handler {
	return &Handler{
		wxService:     wxService,
		wxClient:      wxClient,
		outageService: outageService,
		logger:        log.Named("api-handler"),
	}
}

// ObservationsResponse is the payload for the full-country observation listing
type ObservationsResponse struct {
	Timestamp    time.Time        `json:"timestamp"`
	LastUpdated  time.Time        `json:"last_updated"`
	Count        int              `json:"count"`
	Observations []wx.Observation `json:"observations"`
}

// GetObservations returns the latest cached observation snapshot
func (h *Handler) GetObservations(w http.ResponseWriter, r *http.Request) {
	snapshot := h.wxService.GetSnapshot()
	if snapshot == nil {
		http.Error(w, "Observation data not available yet", http.StatusServiceUnavailable)
		return
	}

	observations := snapshot.Sorted()
	WriteJSON(w, http.StatusOK, ObservationsResponse{
		Timestamp:    time.Now().UTC(),
		LastUpdated:  snapshot.LastUpdated,
		Count:        len(observations),
		Observations: observations,
	})
}

// GetObservationByID returns a live-fetched, decoded METAR for one station
func (h *Handler) GetObservationByID(w http.ResponseWriter, r *http.Request) {
	stationID := strings.ToUpper(chi.URLParam(r, "id"))

	record, err := h.wxClient.FetchMETARByID(stationID)
	if err != nil {
		if errors.Is(err, wx.ErrInvalidStation) {
			http.Error(w, "Station identifier must be 4 characters", http.StatusBadRequest)
			return
		}
		h.logger.Warn("Failed to fetch METAR",
			logger.String("station", stationID),
			logger.Error(err))
		http.Error(w, "Observation not found", http.StatusNotFound)
		return
	}

	obs, err := wx.DecodeMETAR(*record, time.Now())
	if err != nil {
		http.Error(w, "Observation not found", http.StatusNotFound)
		return
	}

	WriteJSON(w, http.StatusOK, obs)
}

// GetForecastByID returns a live-fetched, decoded TAF for one station
func (h *Handler) GetForecastByID(w http.ResponseWriter, r *http.Request) {
	stationID := strings.ToUpper(chi.URLParam(r, "id"))

	record, err := h.wxClient.FetchTAFByID(stationID)
	if err != nil {
		if errors.Is(err, wx.ErrInvalidStation) {
			http.Error(w, "Station identifier must be 4 characters", http.StatusBadRequest)
			return
		}
		h.logger.Warn("Failed to fetch TAF",
			logger.String("station", stationID),
			logger.Error(err))
		http.Error(w, "Forecast not found", http.StatusNotFound)
		return
	}

	forecast, err := wx.DecodeTAF(*record)
	if err != nil {
		http.Error(w, "Forecast not found", http.StatusNotFound)
		return
	}

	WriteJSON(w, http.StatusOK, forecast)
}

// OutagesResponse is the payload for the outage event log
type OutagesResponse struct {
	Timestamp time.Time             `json:"timestamp"`
	Count     int                   `json:"count"`
	Events    []*outage.OutageEvent `json:"events"`
}

// GetOutages returns the outage event log, newest first
func (h *Handler) GetOutages(w http.ResponseWriter, r *http.Request) {
	events := h.outageService.Events()
	WriteJSON(w, http.StatusOK, OutagesResponse{
		Timestamp: time.Now().UTC(),
		Count:     len(events),
		Events:    events,
	})
}

// LeaderboardResponse is the payload for the downtime leaderboard
type LeaderboardResponse struct {
	Timestamp time.Time             `json:"timestamp"`
	Count     int                   `json:"count"`
	Stations  []outage.StationStats `json:"stations"`
}

// GetLeaderboard returns stations ranked by total downtime, worst first
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	stations := h.outageService.Leaderboard()
	WriteJSON(w, http.StatusOK, LeaderboardResponse{
		Timestamp: time.Now().UTC(),
		Count:     len(stations),
		Stations:  stations,
	})
}

// TriggerRefresh triggers an immediate collection cycle
func (h *Handler) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	h.wxService.RefreshNow()
	WriteJSON(w, http.StatusAccepted, map[string]string{"status": "refresh triggered"})
}

// GetStatus returns service status and cache statistics
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"timestamp": time.Now().UTC(),
		"started":   h.wxService.IsStarted(),
		"cache":     h.wxService.GetCacheStats(),
	})
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
