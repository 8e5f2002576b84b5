package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/hecate-project/hecate/internal/auth"
	"github.com/hecate-project/hecate/internal/herr"
)

func parseTileCoords(r *http.Request) (z, x, y uint32, err error) {
	vars := mux.Vars(r)
	zv, err := strconv.ParseUint(vars["z"], 10, 32)
	if err != nil {
		return 0, 0, 0, herr.New(herr.Validation, "invalid z")
	}
	xv, err := strconv.ParseUint(vars["x"], 10, 32)
	if err != nil {
		return 0, 0, 0, herr.New(herr.Validation, "invalid x")
	}
	yv, err := strconv.ParseUint(vars["y"], 10, 32)
	if err != nil {
		return 0, 0, 0, herr.New(herr.Validation, "invalid y")
	}
	return uint32(zv), uint32(xv), uint32(yv), nil
}

// GetTile handles GET /api/tiles/:z/:x/:y (mvt.get).
func (h *Handler) GetTile(w http.ResponseWriter, r *http.Request) {
	z, x, y, err := parseTileCoords(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if _, ok := h.authorize(w, r, auth.ScopeKeyMVTGet, nil, false); !ok {
		return
	}

	data, err := h.tiles.Get(r.Context(), z, x, y)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.mapbox-vector-tile")
	w.Write(data)
}

// RegenTile handles GET /api/tiles/:z/:x/:y/regen (mvt.regen).
func (h *Handler) RegenTile(w http.ResponseWriter, r *http.Request) {
	z, x, y, err := parseTileCoords(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if _, ok := h.authorize(w, r, auth.ScopeKeyMVTRegen, nil, true); !ok {
		return
	}

	data, err := h.tiles.Regen(r.Context(), z, x, y)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.mapbox-vector-tile")
	w.Write(data)
}

// TileMeta handles GET /api/tiles/:z/:x/:y/meta (mvt.meta).
func (h *Handler) TileMeta(w http.ResponseWriter, r *http.Request) {
	z, x, y, err := parseTileCoords(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if _, ok := h.authorize(w, r, auth.ScopeKeyMVTMeta, nil, false); !ok {
		return
	}

	meta, err := h.tiles.Meta(r.Context(), z, x, y)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, meta)
}

// DeleteTile handles DELETE /api/tiles/:z/:x/:y (mvt.delete).
func (h *Handler) DeleteTile(w http.ResponseWriter, r *http.Request) {
	z, x, y, err := parseTileCoords(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if _, ok := h.authorize(w, r, auth.ScopeKeyMVTDelete, nil, true); !ok {
		return
	}

	if err := h.tiles.Delete(r.Context(), z, x, y); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAllTiles handles DELETE /api/tiles (mvt.delete, admin-scoped
// cache-wide eviction).
func (h *Handler) DeleteAllTiles(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, auth.ScopeKeyMVTDelete, nil, true); !ok {
		return
	}

	if err := h.tiles.DeleteAll(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
