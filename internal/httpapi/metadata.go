package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hecate-project/hecate/internal/auth"
	"github.com/hecate-project/hecate/internal/herr"
)

// ListMeta handles GET /api/meta (meta.get): every key in the
// server-wide key/value table.
func (h *Handler) ListMeta(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, auth.ScopeKeyMetaGet, nil, false); !ok {
		return
	}

	values, err := h.meta.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, values)
}

// GetMeta handles GET /api/meta/:key (meta.get).
func (h *Handler) GetMeta(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, auth.ScopeKeyMetaGet, nil, false); !ok {
		return
	}

	value, err := h.meta.Get(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, value)
}

// SetMeta handles PUT /api/meta/:key (meta.set): the body is stored
// verbatim as the key's JSON value.
func (h *Handler) SetMeta(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, auth.ScopeKeyMetaSet, nil, true); !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, herr.New(herr.Validation, "failed to read request body"))
		return
	}
	if !json.Valid(body) {
		h.writeError(w, herr.New(herr.Validation, "value must be valid JSON"))
		return
	}

	key := mux.Vars(r)["key"]
	if err := h.meta.Set(r.Context(), key, json.RawMessage(body)); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteMeta handles DELETE /api/meta/:key (meta.set).
func (h *Handler) DeleteMeta(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, auth.ScopeKeyMetaSet, nil, true); !ok {
		return
	}

	if err := h.meta.Delete(r.Context(), mux.Vars(r)["key"]); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
