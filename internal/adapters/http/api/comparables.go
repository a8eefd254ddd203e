package api

import (
	"errors"
	"net/http"
	"strings"
)

// ComparablesHandler handles comparables requests.
type ComparablesHandler struct {
	deps Dependencies
}

// NewComparablesHandler creates a new comparables handler.
func NewComparablesHandler(deps Dependencies) *ComparablesHandler {
	return &ComparablesHandler{deps: deps}
}

// HandleGetComparables handles GET /comparables/{anchor_pts_id}?role=R.
func (h *ComparablesHandler) HandleGetComparables(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_comparables"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	anchor := strings.TrimPrefix(r.URL.Path, "/comparables/")
	if anchor == "" || strings.Contains(anchor, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, errors.New("missing anchor id")))
		return
	}
	role := r.URL.Query().Get("role")
	if role == "" || !knownRole(h.deps, role) {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, errors.New("unknown role")))
		return
	}
	edges, err := h.deps.Comparables(r.Context(), role, anchor)
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, edges)
}
