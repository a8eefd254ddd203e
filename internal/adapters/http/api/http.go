// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/rberkkaratas/recruitment-support/internal/app"
	"github.com/rberkkaratas/recruitment-support/internal/domain/comparables"
	"github.com/rberkkaratas/recruitment-support/internal/domain/percentile"
	"github.com/rberkkaratas/recruitment-support/internal/domain/roles"
	"github.com/rberkkaratas/recruitment-support/internal/domain/shortlist"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	LatestRun(ctx context.Context) (service.RunInfo, error)
	Shortlist(ctx context.Context, roleID string, limit int) ([]shortlist.Entry, error)
	Comparables(ctx context.Context, roleID, anchorID string) ([]comparables.Edge, error)
	Profile(ctx context.Context, ptsID, scopeName string) ([]percentile.LongRecord, error)
	Roles() []roles.Role
}

// Server wires HTTP routes for the read API.
type Server struct {
	healthHandler      *HealthHandler
	runsHandler        *RunsHandler
	shortlistHandler   *ShortlistHandler
	comparablesHandler *ComparablesHandler
	rolesHandler       *RolesHandler
	profileHandler     *ProfileHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, maxLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		runsHandler:        NewRunsHandler(deps),
		shortlistHandler:   NewShortlistHandler(deps, maxLimit),
		comparablesHandler: NewComparablesHandler(deps),
		rolesHandler:       NewRolesHandler(deps),
		profileHandler:     NewProfileHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/runs/latest", MetricsMiddleware(s.runsHandler.HandleGetLatest, "runs_latest"))
	mux.HandleFunc("/roles", MetricsMiddleware(s.rolesHandler.HandleGetRoles, "roles"))
	mux.HandleFunc("/shortlist", MetricsMiddleware(s.shortlistHandler.HandleGetShortlist, "shortlist"))
	mux.HandleFunc("/comparables/", MetricsMiddleware(s.comparablesHandler.HandleGetComparables, "comparables"))
	mux.HandleFunc("/profile/", MetricsMiddleware(s.profileHandler.HandleGetProfile, "profile"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeUpstreamError maps service errors onto status codes.
func writeUpstreamError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", wrap(op, err))
	case errors.Is(err, service.ErrNoStore):
		writeError(w, http.StatusServiceUnavailable, "no_store", wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", wrap(op, err))
	}
}

// knownRole reports whether id is a configured role.
func knownRole(deps Dependencies, id string) bool {
	for _, r := range deps.Roles() {
		if r.ID == id {
			return true
		}
	}
	return false
}
