package httpapi

import (
	"net/http"

	"github.com/hecate-project/hecate/internal/auth"
)

// GetAuth handles GET /api/auth (auth.get): returns the resolved
// Policy Matrix, letting a client discover what it's permitted to do.
func (h *Handler) GetAuth(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, auth.ScopeKeyAuthGet, nil, false); !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.matrix)
}

// GetSchema handles GET /api/schema (schema.get): returns the
// configured JSON Schema document feature properties are validated
// against, or `{}` when none is configured.
func (h *Handler) GetSchema(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, auth.ScopeKeySchemaGet, nil, false); !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(h.schema.Raw())
}
