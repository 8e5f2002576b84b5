package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/hecate-project/hecate/internal/auth"
	"github.com/hecate-project/hecate/internal/gateway"
	"github.com/hecate-project/hecate/internal/geo"
	"github.com/hecate-project/hecate/internal/herr"
)

// parseBBox parses "minx,miny,maxx,maxy" into an orb.Bound.
func parseBBox(raw string) (orb.Bound, error) {
	if raw == "" {
		return orb.Bound{}, herr.New(herr.Validation, "missing bbox parameter")
	}

	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return orb.Bound{}, herr.New(herr.Validation, "bbox must be minx,miny,maxx,maxy")
	}

	coords := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, herr.New(herr.Validation, "bbox coordinate %q is not numeric", p)
		}
		coords[i] = v
	}

	return orb.Bound{
		Min: orb.Point{coords[0], coords[1]},
		Max: orb.Point{coords[2], coords[3]},
	}, nil
}

// GetClone handles GET /api/data/clone (clone.get): a full or
// bounds-scoped export of the live feature set, per spec.md §4.1's
// supplemented clone/export behavior (original_source's clone.rs).
func (h *Handler) GetClone(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, auth.ScopeKeyCloneGet, nil, false); !ok {
		return
	}

	bbox, err := h.resolveCloneBound(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	limit := 100000
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

// resolveCloneBound resolves the clone's scoping region from either a
// named bound (?bounds=<name>) or a literal bbox (?bbox=...), falling
// back to the whole world when neither is given.
func (h *Handler) resolveCloneBound(r *http.Request) (orb.Bound, error) {
	if name := r.URL.Query().Get("bounds"); name != "" {
		b, err := h.bounds.GetByName(r.Context(), name)
		if err != nil {
			return orb.Bound{}, err
		}
		return b.Geometry.Bound(), nil
	}

	if bbox := r.URL.Query().Get("bbox"); bbox != "" {
		return parseBBox(bbox)
	}

	return orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}, nil
}

// Query handles GET /api/data/query (clone.query): an ad-hoc read-only
// SQL query against the sandbox pool, per spec.md §4.1/§5's sandbox
// guard (gateway.CheckSandboxQuery rejects anything but SELECT/WITH).
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, auth.ScopeKeyCloneQuery, nil, false); !ok {
		return
	}

	sql := r.URL.Query().Get("q")
	if sql == "" {
		h.writeError(w, herr.New(herr.Validation, "missing q parameter"))
		return
	}
	if err := gateway.CheckSandboxQuery(sql); err != nil {
		h.writeError(w, err)
		return
	}

	db := h.gw.DB(gateway.Sandbox)
	rows, err := db.QueryContext(r.Context(), sql)
	if err != nil {
		h.writeError(w, herr.FromPQ(err))
		return
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		h.writeError(w, herr.New(herr.Internal, "%v", err))
		return
	}

	var results []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			h.writeError(w, herr.New(herr.Internal, "%v", err))
			return
		}

		row := make(map[string]interface{}, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		h.writeError(w, herr.FromPQ(err))
		return
	}

	h.writeJSON(w, http.StatusOK, results)
}
