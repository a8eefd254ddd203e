package api

import (
	"net/http"
	"strconv"
)

const defaultShortlistLimit = 50

// ShortlistHandler handles shortlist requests.
type ShortlistHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewShortlistHandler creates a new shortlist handler.
func NewShortlistHandler(deps Dependencies, maxLimit int) *ShortlistHandler {
	return &ShortlistHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetShortlist handles GET /shortlist?role=R&limit=N. limit defaults to
// 50 and may not exceed the configured maximum.
func (h *ShortlistHandler) HandleGetShortlist(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_shortlist"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	role := q.Get("role")
	if role == "" || !knownRole(h.deps, role) {
		writeError(w, http.StatusBadRequest, "bad_request", newKind(op, ErrBadRequest))
		return
	}
	n := defaultShortlistLimit
	if s := q.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", newKind(op, ErrBadRequest))
			return
		}
		n = v
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", newKind(op, ErrLimitExceeded))
		return
	}
	entries, err := h.deps.Shortlist(r.Context(), role, n)
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
