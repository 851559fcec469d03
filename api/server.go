// Package api exposes the dashboard view models over HTTP.
//
// Every aggregate endpoint is read-only: handlers hand out freshly
// recomputed structures and nothing the presentation layer can send
// mutates them. The only writable surface is the filter state.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/calier-ar/tablero/engine"
	"github.com/calier-ar/tablero/store"
)

// Server wires the engine and the record store behind a chi router.
// The engine itself is lock-free and single-threaded; the server
// serializes access because chi handlers run concurrently.
type Server struct {
	mu     sync.Mutex
	eng    *engine.Engine
	st     store.Store
	logger *slog.Logger
}

// New creates a server around an engine and its record store.
func New(eng *engine.Engine, st store.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{eng: eng, st: st, logger: logger}
}

// Router builds the HTTP surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", s.handleDashboard)

		r.Route("/stats", func(r chi.Router) {
			r.Get("/overview", s.handleOverview)
			r.Get("/clients", s.handleClientStats)
			r.Get("/agents", s.handleAgentStats)
			r.Get("/geo", s.handleGeo)
		})

		r.Route("/tables", func(r chi.Router) {
			r.Get("/interactions", s.handleInteractionLog)
			r.Get("/clients", s.handleClientDirectory)
		})

		r.Get("/followups", s.handleFollowUps)

		r.Route("/filters", func(r chi.Router) {
			r.Get("/", s.handleGetFilters)
			r.Put("/", s.handleReplaceFilters)
			r.Patch("/", s.handlePatchFilters)
			r.Post("/reset", s.handleResetFilters)
		})

		r.Post("/refresh", s.handleRefresh)
	})

	return r
}

// ============================================================================
// AGGREGATE ENDPOINTS
// ============================================================================

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	dashboard := s.eng.Recompute()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, dashboard)
}

func (s *Server) handleOverview(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	interactions, _ := s.eng.Filtered()
	overview := engine.BuildOverview(interactions, s.eng.Snapshot())
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleClientStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	interactions, clients := s.eng.Filtered()
	stats := engine.BuildClientStats(clients, interactions)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAgentStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	dashboard := s.eng.Recompute()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, dashboard.Agents)
}

// geoResponse bundles the rollup with the display hints the map needs:
// the selected metric, its maximum for the bubble scale, and the top-5.
type geoResponse struct {
	Metric    engine.GeoMetric            `json:"metric"`
	Provinces map[string]engine.GeoBucket `json:"provinces"`
	Max       int                         `json:"max"`
	Top       []engine.ProvinceRank       `json:"top"`
}

func (s *Server) handleGeo(w http.ResponseWriter, r *http.Request) {
	metric := engine.GeoMetric(r.URL.Query().Get("metric"))
	if metric == "" {
		metric = engine.MetricInteractions
	}
	if !metric.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown metric"})
		return
	}

	s.mu.Lock()
	geo := engine.BuildGeoStats(s.eng.Snapshot())
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, geoResponse{
		Metric:    metric,
		Provinces: geo.Provinces,
		Max:       geo.Max(metric),
		Top:       geo.Top(metric, 5),
	})
}

// ============================================================================
// TABLE ENDPOINTS
// ============================================================================

func (s *Server) handleInteractionLog(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	limit := queryLimit(r, engine.DefaultTableLimit)

	s.mu.Lock()
	interactions, _ := s.eng.Filtered()
	rows := engine.BuildInteractionLog(interactions, s.eng.Snapshot(), term, limit)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleClientDirectory(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	limit := queryLimit(r, engine.DefaultTableLimit)

	s.mu.Lock()
	interactions, clients := s.eng.Filtered()
	stats := engine.BuildClientStats(clients, interactions)
	rows := engine.BuildClientDirectory(clients, stats.InteractionCounts, s.eng.Snapshot(), term, limit)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleFollowUps(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	followUps := s.eng.Snapshot().FollowUps
	s.mu.Unlock()
	if followUps == nil {
		followUps = []engine.FollowUp{}
	}
	writeJSON(w, http.StatusOK, followUps)
}

// ============================================================================
// FILTER ENDPOINTS
// ============================================================================

func (s *Server) handleGetFilters(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	filters := s.eng.Filters()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, filters)
}

// handleReplaceFilters swaps the whole filter state in one step, so a
// multi-field edit is never observed half-applied.
func (s *Server) handleReplaceFilters(w http.ResponseWriter, r *http.Request) {
	var filters engine.Filters
	if err := json.NewDecoder(r.Body).Decode(&filters); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.mu.Lock()
	s.eng.SetFilters(filters)
	filters = s.eng.Filters()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, filters)
}

// filterPatch carries at most one field per user action; absent fields
// stay untouched.
type filterPatch struct {
	DateFrom       *string `json:"dateFrom"`
	DateTo         *string `json:"dateTo"`
	Classification *string `json:"classification"`
	Status         *string `json:"status"`
	Referred       *string `json:"referred"`
	AgentCode      *string `json:"agentCode"`
	Province       *string `json:"province"`
}

func (s *Server) handlePatchFilters(w http.ResponseWriter, r *http.Request) {
	var patch filterPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	if patch.DateFrom != nil {
		s.eng.SetDateFrom(*patch.DateFrom)
	}
	if patch.DateTo != nil {
		s.eng.SetDateTo(*patch.DateTo)
	}
	if patch.Classification != nil {
		s.eng.SetClassification(*patch.Classification)
	}
	if patch.Status != nil {
		s.eng.SetStatus(*patch.Status)
	}
	if patch.Referred != nil {
		s.eng.SetReferred(*patch.Referred)
	}
	if patch.AgentCode != nil {
		s.eng.SetAgentCode(*patch.AgentCode)
	}
	if patch.Province != nil {
		s.eng.SetProvince(*patch.Province)
	}
	filters := s.eng.Filters()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, filters)
}

func (s *Server) handleResetFilters(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.eng.Reset()
	filters := s.eng.Filters()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, filters)
}

// ============================================================================
// REFRESH
// ============================================================================

// handleRefresh reloads all four collections from the record store. Failed
// fetches degrade to the previous snapshot inside LoadAll; the endpoint
// itself always succeeds.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	prev := s.eng.Snapshot()
	s.mu.Unlock()

	snap := store.LoadAll(r.Context(), s.st, prev, s.logger)

	s.mu.Lock()
	s.eng.ReplaceSnapshot(snap)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]int{
		"interactions": len(snap.Interactions),
		"clients":      len(snap.Clients),
		"agents":       len(snap.Agents),
		"followUps":    len(snap.FollowUps),
	})
}

// ============================================================================
// HELPERS
// ============================================================================

func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
