package api

import (
	"context"
	"net/http"

	service "github.com/rberkkaratas/recruitment-support/internal/app"
	"github.com/rberkkaratas/recruitment-support/internal/domain/roles"
)

// RunsDependencies defines the interface for run lookups.
type RunsDependencies interface {
	LatestRun(ctx context.Context) (service.RunInfo, error)
}

// RunsHandler handles run requests.
type RunsHandler struct {
	deps RunsDependencies
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(deps RunsDependencies) *RunsHandler {
	return &RunsHandler{deps: deps}
}

// HandleGetLatest handles GET /runs/latest.
func (h *RunsHandler) HandleGetLatest(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_latest_run"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	run, err := h.deps.LatestRun(r.Context())
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// RolesHandler lists the configured roles.
type RolesHandler struct {
	deps interface{ Roles() []roles.Role }
}

// NewRolesHandler creates a new roles handler.
func NewRolesHandler(deps interface{ Roles() []roles.Role }) *RolesHandler {
	return &RolesHandler{deps: deps}
}

type roleResponse struct {
	RoleID   string   `json:"role_id"`
	Bucket   string   `json:"position_bucket"`
	Features []string `json:"features"`
	Evidence []string `json:"evidence"`
}

// HandleGetRoles handles GET /roles.
func (h *RolesHandler) HandleGetRoles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rs := h.deps.Roles()
	out := make([]roleResponse, len(rs))
	for i, role := range rs {
		out[i] = roleResponse{RoleID: role.ID, Bucket: role.Bucket, Features: role.Features, Evidence: role.Evidence}
	}
	writeJSON(w, http.StatusOK, out)
}
