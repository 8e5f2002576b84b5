package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/hecate-project/hecate/internal/auth"
	"github.com/hecate-project/hecate/internal/herr"
)

// ListStyles handles GET /api/styles (style.get): every public style,
// plus the caller's own non-public styles when authenticated.
func (h *Handler) ListStyles(w http.ResponseWriter, r *http.Request) {
	p, ok := h.authorize(w, r, auth.ScopeKeyStyleGet, nil, false)
	if !ok {
		return
	}

	var viewer *int64
	if !p.Anonymous {
		viewer = &p.UID
	}

	styles, err := h.styles.List(r.Context(), viewer)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, styles)
}

// GetStyle handles GET /api/style/:id (style.get): a non-public style
// is visible only to its owner (spec.md §3's Style invariant).
func (h *Handler) GetStyle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.writeError(w, herr.New(herr.Validation, "invalid style id"))
		return
	}

	style, err := h.styles.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var ownerUID *int64
	if !style.Public {
		ownerUID = &style.OwnerUID
	}
	p, ok := h.authorize(w, r, auth.ScopeKeyStyleGet, ownerUID, false)
	if !ok {
		return
	}
	if !style.Public {
		if p.Anonymous {
			h.writeError(w, herr.New(herr.Unauthenticated, "authentication required"))
			return
		}
		if p.UID != style.OwnerUID {
			h.writeError(w, herr.New(herr.Forbidden, "style %d is not public", id))
			return
		}
	}

	h.writeJSON(w, http.StatusOK, style)
}

type styleRequest struct {
	Name   string          `json:"name"`
	Style  json.RawMessage `json:"style"`
	Public bool            `json:"public"`
}

// CreateStyle handles POST /api/style (style.set).
func (h *Handler) CreateStyle(w http.ResponseWriter, r *http.Request) {
	p, ok := h.authorize(w, r, auth.ScopeKeyStyleSet, nil, true)
	if !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, herr.New(herr.Validation, "failed to read request body"))
		return
	}
	var req styleRequest
	if err := json.Unmarshal(body, &req); err != nil || req.Name == "" {
		h.writeError(w, herr.New(herr.Validation, "name and style are required"))
		return
	}

	id, err := h.styles.Create(r.Context(), req.Name, req.Style, p.UID, req.Public)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]interface{}{"id": id})
}

// UpdateStyle handles PUT /api/style/:id (style.set, owner-or-admin
// only — `self` scope's owner comparison enforces this).
func (h *Handler) UpdateStyle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.writeError(w, herr.New(herr.Validation, "invalid style id"))
		return
	}

	existing, err := h.styles.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if _, ok := h.authorize(w, r, auth.ScopeKeyStyleSet, &existing.OwnerUID, true); !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, herr.New(herr.Validation, "failed to read request body"))
		return
	}
	var req styleRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, herr.New(herr.Validation, "invalid request body"))
		return
	}

	if err := h.styles.Update(r.Context(), id, req.Name, req.Style, req.Public); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteStyle handles DELETE /api/style/:id (style.set, owner-or-admin).
func (h *Handler) DeleteStyle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.writeError(w, herr.New(herr.Validation, "invalid style id"))
		return
	}

	existing, err := h.styles.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if _, ok := h.authorize(w, r, auth.ScopeKeyStyleSet, &existing.OwnerUID, true); !ok {
		return
	}

	if err := h.styles.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
