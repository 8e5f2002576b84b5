package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/hecate-project/hecate/internal/auth"
	"github.com/hecate-project/hecate/internal/geo"
	"github.com/hecate-project/hecate/internal/herr"
)

// wireChangeset is the POST /api/data/feature batch body shape: a
// changeset is a list of changes sharing one author and message, per
// spec.md §4.1.
type wireChangeset struct {
	Changes []json.RawMessage `json:"changes"`
	Message *string           `json:"message,omitempty"`
}

// decodeChangeset accepts either `{"changes": [...], "message": "..."}`
// or a single GeoJSON-shaped change, normalizing to a changeset.
func decodeChangeset(body []byte) ([]*geo.FeatureChange, *string, error) {
	var batch wireChangeset
	if err := json.Unmarshal(body, &batch); err == nil && len(batch.Changes) > 0 {
		changes := make([]*geo.FeatureChange, 0, len(batch.Changes))
		for _, raw := range batch.Changes {
			c, err := geo.DecodeChange(raw)
			if err != nil {
				return nil, nil, err
			}
			changes = append(changes, c)
		}
		return changes, batch.Message, nil
	}

	c, err := geo.DecodeChange(body)
	if err != nil {
		return nil, nil, err
	}
	return []*geo.FeatureChange{c}, c.Message, nil
}

// CreateFeature handles POST /api/data/feature (feature.create), and
// force-mode (feature.force) via ?force=true, which is authorized but
// otherwise applies identically — spec.md doesn't give force-mode a
// distinct mutation, only a distinct scope gate for admin override.
func (h *Handler) CreateFeature(w http.ResponseWriter, r *http.Request) {
	scopeKey := auth.ScopeKeyFeatureCreate
	if r.URL.Query().Get("force") == "true" {
		scopeKey = auth.ScopeKeyFeatureForce
	}

	p, ok := h.authorize(w, r, scopeKey, nil, true)
	if !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, herr.New(herr.Validation, "failed to read request body"))
		return
	}

	changes, message, err := decodeChangeset(body)
	if err != nil {
		h.writeError(w, herr.New(herr.Validation, "%v", err))
		return
	}

	_, err = h.store.ApplyChangeset(r.Context(), changes, p.UID, message)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeBool(w, true)
}

// GetFeature handles GET /api/data/feature/:id (feature.get).
func (h *Handler) GetFeature(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.writeError(w, herr.New(herr.Validation, "invalid feature id"))
		return
	}

	if _, ok := h.authorize(w, r, auth.ScopeKeyFeatureGet, nil, false); !ok {
		return
	}

	f, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	body, err := geo.EncodeFeature(f)
	if err != nil {
		h.writeError(w, herr.New(herr.Internal, "%v", err))
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(body)
}

// GetFeatureHistory handles GET /api/data/feature/:id/history
// (feature.history).
func (h *Handler) GetFeatureHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.writeError(w, herr.New(herr.Validation, "invalid feature id"))
		return
	}

	if _, ok := h.authorize(w, r, auth.ScopeKeyFeatureHistory, nil, false); !ok {
		return
	}

	history, err := h.store.GetHistory(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, history)
}

// ListFeatures handles GET /api/data/features (features.get, a matrix
// key separate from the single-feature feature.get), scoped by a
// required bbox query parameter `minx,miny,maxx,maxy`.
func (h *Handler) ListFeatures(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, auth.ScopeKeyFeaturesGet, nil, false); !ok {
		return
	}

	bbox, err := parseBBox(r.URL.Query().Get("bbox"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	limit := 1000
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	features, err := h.store.ListInBBox(r.Context(), bbox, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	body, err := geo.EncodeFeatureCollection(features)
	if err != nil {
		h.writeError(w, herr.New(herr.Internal, "%v", err))
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(body)
}
