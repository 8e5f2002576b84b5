package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/paulmach/orb/geojson"

	"github.com/hecate-project/hecate/internal/auth"
	"github.com/hecate-project/hecate/internal/herr"
)

// ListBounds handles GET /api/bounds (bounds.get).
func (h *Handler) ListBounds(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, auth.ScopeKeyBoundsGet, nil, false); !ok {
		return
	}

	bounds, err := h.bounds.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, bounds)
}

// GetBound handles GET /api/bounds/:name (bounds.get).
func (h *Handler) GetBound(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, auth.ScopeKeyBoundsGet, nil, false); !ok {
		return
	}

	name := mux.Vars(r)["name"]
	bound, err := h.bounds.GetByName(r.Context(), name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, bound)
}

type boundRequest struct {
	Name     string          `json:"name"`
	Geometry json.RawMessage `json:"geometry"`
}

// CreateBound handles POST /api/bounds (bounds.set).
func (h *Handler) CreateBound(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, auth.ScopeKeyBoundsSet, nil, true); !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, herr.New(herr.Validation, "failed to read request body"))
		return
	}
	var req boundRequest
	if err := json.Unmarshal(body, &req); err != nil || req.Name == "" || len(req.Geometry) == 0 {
		h.writeError(w, herr.New(herr.Validation, "name and geometry are required"))
		return
	}
	geom, err := geojson.UnmarshalGeometry(req.Geometry)
	if err != nil {
		h.writeError(w, herr.New(herr.Validation, "invalid geometry: %v", err))
		return
	}

	id, err := h.bounds.Create(r.Context(), req.Name, geom.Geometry())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]interface{}{"id": id})
}

// DeleteBound handles DELETE /api/bounds/:id (bounds.set).
func (h *Handler) DeleteBound(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, auth.ScopeKeyBoundsSet, nil, true); !ok {
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.writeError(w, herr.New(herr.Validation, "invalid bound id"))
		return
	}
	if err := h.bounds.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
