package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/hecate-project/hecate/internal/auth"
	"github.com/hecate-project/hecate/internal/delta"
	"github.com/hecate-project/hecate/internal/herr"
)

// ListDeltas handles GET /api/deltas (delta.list), paginated and
// optionally filtered to a single author.
func (h *Handler) ListDeltas(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, auth.ScopeKeyDeltaList, nil, false); !ok {
		return
	}

	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	offset := 0
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	var authorFilter *int64
	if a := r.URL.Query().Get("author"); a != "" {
		parsed, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			h.writeError(w, herr.New(herr.Validation, "invalid author id"))
			return
		}
		authorFilter = &parsed
	}

	deltas, err := delta.List(r.Context(), h.deltaDB(), limit, offset, authorFilter)
	if err != nil {
		h.writeError(w, herr.New(herr.Internal, "%v", err))
		return
	}
	h.writeJSON(w, http.StatusOK, deltas)
}

// GetDelta handles GET /api/delta/:id (delta.get).
func (h *Handler) GetDelta(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.writeError(w, herr.New(herr.Validation, "invalid delta id"))
		return
	}

	if _, ok := h.authorize(w, r, auth.ScopeKeyDeltaGet, nil, false); !ok {
		return
	}

	d, err := delta.Get(r.Context(), h.deltaDB(), id)
	if err != nil {
		h.writeError(w, herr.New(herr.NotFound, "delta %d not found", id))
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}
