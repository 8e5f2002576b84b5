package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/hecate-project/hecate/internal/auth"
	"github.com/hecate-project/hecate/internal/herr"
)

// ListWebhooks handles GET /api/webhooks (webhooks.get).
func (h *Handler) ListWebhooks(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, auth.ScopeKeyWebhooksGet, nil, false); !ok {
		return
	}

	hooks, err := h.webhooks.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, hooks)
}

type createWebhookRequest struct {
	URL   string `json:"url"`
	Event string `json:"event"`
}

// CreateWebhook handles POST /api/webhooks (webhooks.set).
func (h *Handler) CreateWebhook(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, auth.ScopeKeyWebhooksSet, nil, true); !ok {
		return
	}

	var req createWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" || req.Event == "" {
		h.writeError(w, herr.New(herr.Validation, "url and event are required"))
		return
	}

	id, err := h.webhooks.Create(r.Context(), req.URL, req.Event)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]interface{}{"id": id})
}

// DeleteWebhook handles DELETE /api/webhooks/:id (webhooks.set).
func (h *Handler) DeleteWebhook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.writeError(w, herr.New(herr.Validation, "invalid webhook id"))
		return
	}

	if _, ok := h.authorize(w, r, auth.ScopeKeyWebhooksSet, nil, true); !ok {
		return
	}

	if err := h.webhooks.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
