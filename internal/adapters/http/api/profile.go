package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rberkkaratas/recruitment-support/internal/domain/percentile"
	"github.com/rberkkaratas/recruitment-support/internal/domain/scope"
)

// ProfileDependencies defines the interface for percentile profile lookups.
type ProfileDependencies interface {
	Profile(ctx context.Context, ptsID, scopeName string) ([]percentile.LongRecord, error)
}

// ProfileHandler serves the long percentile rows of one entity.
type ProfileHandler struct {
	deps ProfileDependencies
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(deps ProfileDependencies) *ProfileHandler {
	return &ProfileHandler{deps: deps}
}

// HandleGetProfile handles GET /profile/{pts_id}?scope=S. Without a scope
// every persisted scope is returned.
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_profile"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/profile/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, errors.New("missing entity id")))
		return
	}
	name := r.URL.Query().Get("scope")
	if name != "" {
		if err := scope.Validate(name); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
			return
		}
	}
	recs, err := h.deps.Profile(r.Context(), id, name)
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
