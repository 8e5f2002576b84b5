// Package httpapi wires the Storage Gateway, Feature Store, Delta
// Log, Authorization Engine, Tile Engine, Stream Engine, and Worker
// Queue into the HTTP surface spec.md §6 describes, generalizing the
// teacher's Handler/SetupRoutes idiom (internal/api/handlers.go).
package httpapi

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"github.com/hecate-project/hecate/internal/auth"
	"github.com/hecate-project/hecate/internal/gateway"
	"github.com/hecate-project/hecate/internal/herr"
	"github.com/hecate-project/hecate/internal/queue"
	"github.com/hecate-project/hecate/internal/store"
	"github.com/hecate-project/hecate/internal/tile"
)

// Handler holds every collaborator a request might need, exactly the
// role the teacher's api.Handler plays for storage.ExerciseRepository.
type Handler struct {
	gw       *gateway.Gateway
	store    store.Store
	bounds   *store.BoundsRepo
	webhooks *store.WebhooksRepo
	styles   *store.StylesRepo
	meta     *store.MetaRepo
	matrix   auth.Matrix
	lookup   auth.Lookup
	tiles    *tile.Engine
	queue    *queue.Queue
	schema   *store.SchemaValidator
}

// New builds a Handler. matrix/schema may be zero-valued or nil:
// an empty matrix resolves every scope to public, a nil schema
// validator skips property validation.
func New(gw *gateway.Gateway, st store.Store, bounds *store.BoundsRepo, webhooks *store.WebhooksRepo, styles *store.StylesRepo, meta *store.MetaRepo, matrix auth.Matrix, lookup auth.Lookup, tiles *tile.Engine, q *queue.Queue, schema *store.SchemaValidator) *Handler {
	return &Handler{gw: gw, store: st, bounds: bounds, webhooks: webhooks, styles: styles, meta: meta, matrix: matrix, lookup: lookup, tiles: tiles, queue: q, schema: schema}
}

// errorResponse is the JSON error envelope, per spec.md §7's
// propagation policy (kind, reason, optional detail).
type errorResponse struct {
	Error  string      `json:"error"`
	Reason string      `json:"reason"`
	Detail interface{} `json:"detail,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	resp := errorResponse{Error: "INTERNAL", Reason: err.Error()}

	if he, ok := err.(*herr.Error); ok {
		status = he.Status()
		resp.Error = string(he.Kind)
		resp.Reason = he.Reason
		resp.Detail = he.Detail
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		log.Printf("httpapi: failed to encode error response: %v", encErr)
	}
}

// writeBool writes the literal "true"/"false" body spec.md §8's
// end-to-end scenarios expect from mutation endpoints, at HTTP 200.
func (h *Handler) writeBool(w http.ResponseWriter, ok bool) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if ok {
		w.Write([]byte("true"))
	} else {
		w.Write([]byte("false"))
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("httpapi: failed to encode response: %v", err)
	}
}

// deltaDB returns the pool internal/delta's package-level helpers
// read from — the replica pool, since delta list/get/tiles are all
// reads.
func (h *Handler) deltaDB() *sql.DB {
	return h.gw.DB(gateway.Replica)
}
