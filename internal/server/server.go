package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"pokerly/internal/repository"
	"pokerly/internal/service"

	"github.com/rs/zerolog"
)

// Server is the thin API layer: decode, delegate, encode. All statistics
// semantics live in the service package.
type Server struct {
	monthlyStats *service.MonthlyStatsService
	sessionStats *service.SessionStatsService
	venueStats   *service.VenueStatsService
	dashboard    *service.DashboardService
	sessionRepo  *repository.SessionRepository
	journalRepo  *repository.JournalRepository
	venueRepo    *repository.VenueRepository
	logger       zerolog.Logger
}

func New(
	monthlyStats *service.MonthlyStatsService,
	sessionStats *service.SessionStatsService,
	venueStats *service.VenueStatsService,
	dashboard *service.DashboardService,
	sessionRepo *repository.SessionRepository,
	journalRepo *repository.JournalRepository,
	venueRepo *repository.VenueRepository,
	logger zerolog.Logger,
) *Server {
	return &Server{
		monthlyStats: monthlyStats,
		sessionStats: sessionStats,
		venueStats:   venueStats,
		dashboard:    dashboard,
		sessionRepo:  sessionRepo,
		journalRepo:  journalRepo,
		venueRepo:    venueRepo,
		logger:       logger,
	}
}

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/users/{userID}/stats/monthly", s.handleMonthlyStats)
	mux.HandleFunc("GET /api/users/{userID}/stats/sessions", s.handleSessionStats)
	mux.HandleFunc("GET /api/users/{userID}/stats/venues", s.handleVenueStats)
	mux.HandleFunc("GET /api/users/{userID}/dashboard/monthly", s.handleMonthlyDashboard)

	mux.HandleFunc("POST /api/users/{userID}/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/users/{userID}/sessions", s.handleListSessions)
	mux.HandleFunc("GET /api/users/{userID}/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("PUT /api/users/{userID}/sessions/{id}", s.handleUpdateSession)
	mux.HandleFunc("DELETE /api/users/{userID}/sessions/{id}", s.handleDeleteSession)

	mux.HandleFunc("PUT /api/users/{userID}/journals/{date}", s.handleUpsertJournal)
	mux.HandleFunc("GET /api/users/{userID}/journals", s.handleListJournals)
	mux.HandleFunc("GET /api/users/{userID}/journals/{date}", s.handleGetJournal)
	mux.HandleFunc("DELETE /api/users/{userID}/journals/{date}", s.handleDeleteJournal)

	mux.HandleFunc("POST /api/users/{userID}/venues", s.handleCreateVenue)
	mux.HandleFunc("GET /api/users/{userID}/venues", s.handleListVenues)
	mux.HandleFunc("GET /api/users/{userID}/venues/{id}", s.handleGetVenue)
	mux.HandleFunc("PUT /api/users/{userID}/venues/{id}", s.handleUpdateVenue)
	mux.HandleFunc("DELETE /api/users/{userID}/venues/{id}", s.handleDeleteVenue)
}

func (s *Server) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonthParams(r)
	if err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}

	stats, err := s.monthlyStats.Monthly(r.Context(), r.PathValue("userID"), year, month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleSessionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.sessionStats.Lifetime(r.Context(), r.PathValue("userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleVenueStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.venueStats.Venues(r.Context(), r.PathValue("userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleMonthlyDashboard(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonthParams(r)
	if err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}

	dashboard, err := s.dashboard.Monthly(r.Context(), r.PathValue("userID"), year, month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dashboard)
}

// ---- helpers ----

type statusError struct {
	status int
	err    error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &statusError{status: http.StatusBadRequest, err: err}
}

func yearMonthParams(r *http.Request) (int, int, error) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		return 0, 0, errors.New("year must be an integer")
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		return 0, 0, errors.New("month must be an integer")
	}
	if month < 1 || month > 12 {
		return 0, 0, errors.New("month must be between 1 and 12")
	}
	return year, month, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	var se *statusError
	switch {
	case errors.As(err, &se):
		status = se.status
	case errors.Is(err, sql.ErrNoRows):
		status = http.StatusNotFound
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		s.logger.Debug().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request rejected")
	}

	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
