package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/skywatch/metarboard/internal/observability"
	"github.com/skywatch/metarboard/internal/outage"
	"github.com/skywatch/metarboard/internal/websocket"
	"github.com/skywatch/metarboard/internal/wx"
	"github.com/skywatch/metarboard/pkg/logger"
)

// Router wires the API handlers into an HTTP routing tree
type Router struct {
	handler  *Handler
	wsServer *websocket.Server
	logger   *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(wxService *wx.Service, wxClient *wx.Client, outageService *outage.Service, wsServer *websocket.Server, log *logger.Logger) *Router {
	return &Router{
		handler:  NewHandler(wxService, wxClient, outageService, log),
		wsServer: wsServer,
		logger:   log.Named("api-router"),
	}
}

// Routes returns the HTTP handler for all API routes
func (rt *Router) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/observations", rt.handler.GetObservations)
		r.Get("/observations/{id}", rt.handler.GetObservationByID)
		r.Get("/taf/{id}", rt.handler.GetForecastByID)
		r.Get("/outages", rt.handler.GetOutages)
		r.Get("/outages/leaderboard", rt.handler.GetLeaderboard)
		r.Post("/refresh", rt.handler.TriggerRefresh)
		r.Get("/status", rt.handler.GetStatus)
	})

	r.Get("/ws", rt.wsServer.HandleConnection)
	r.Method(http.MethodGet, "/metrics", observability.MetricsHandler())

	return r
}
