package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/hecate-project/hecate/internal/delta"
	"github.com/hecate-project/hecate/internal/geo"
	"github.com/hecate-project/hecate/internal/gateway"
	"github.com/hecate-project/hecate/internal/herr"
)

// PostgresStore is the PostGIS-backed Store, generalizing the
// teacher's PostgresRepository (sql.Open/prepared-statement idiom)
// and DeltaLakeRepository's transaction bookkeeping into versioned
// feature CRUD over a `geo` table.
type PostgresStore struct {
	gw       *gateway.Gateway
	schema   *SchemaValidator
	enqueuer Enqueuer
}

// NewPostgresStore wires a Gateway (for its primary/replica pool
// selection) to an optional property schema and an optional job
// enqueuer. Either may be nil: no schema means no validation; no
// enqueuer means deltas are not announced to the Worker Queue (used
// by tests that only exercise store semantics).
func NewPostgresStore(gw *gateway.Gateway, schema *SchemaValidator, enqueuer Enqueuer) *PostgresStore {
	return &PostgresStore{gw: gw, schema: schema, enqueuer: enqueuer}
}

// SetEnqueuer wires the Worker Queue in after construction, for
// callers (main.go) where the Queue itself depends on a Tile Engine
// that in turn depends on this Store, breaking the construction
// cycle.
func (s *PostgresStore) SetEnqueuer(enqueuer Enqueuer) {
	s.enqueuer = enqueuer
}

type wireFeature struct {
	Type       string                 `json:"type"`
	ID         int64                  `json:"id"`
	Geometry   json.RawMessage        `json:"geometry"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Version    int64                  `json:"version,omitempty"`
	Action     geo.Action             `json:"action,omitempty"`
	Message    *string                `json:"message,omitempty"`
}

type wireFeatureCollection struct {
	Type     string        `json:"type"`
	Features []wireFeature `json:"features"`
}

func marshalGeometry(g orb.Geometry) (json.RawMessage, error) {
	if g == nil {
		return json.RawMessage("null"), nil
	}
	return geojson.NewGeometry(g).MarshalJSON()
}

// encodeChangesPending renders the as-submitted changeset, before ids
// are resolved, for the pending delta row (spec.md §4.1 step 2).
func encodeChangesPending(changes []*geo.FeatureChange) (json.RawMessage, error) {
	fc := wireFeatureCollection{Type: "FeatureCollection"}
	for _, c := range changes {
		geomJSON, err := marshalGeometry(c.Geometry)
		if err != nil {
			return nil, err
		}
		wf := wireFeature{Type: "Feature", Properties: c.Properties, Action: c.Action, Message: c.Message, Geometry: geomJSON}
		if c.ID != nil {
			wf.ID = *c.ID
		}
		if c.Version != nil {
			wf.Version = *c.Version
		}
		fc.Features = append(fc.Features, wf)
	}
	return json.Marshal(fc)
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, id int64) (*geo.Feature, error) {
	db := s.gw.DB(gateway.Replica)
	row := db.QueryRowContext(ctx,
		`SELECT id, version, ST_AsGeoJSON(geometry), properties, key, deleted, deltas
		 FROM geo WHERE id = $1`, id)
	return scanFeature(row)
}

// GetByKey implements Store.
func (s *PostgresStore) GetByKey(ctx context.Context, key string) (*geo.Feature, error) {
	db := s.gw.DB(gateway.Replica)
	row := db.QueryRowContext(ctx,
		`SELECT id, version, ST_AsGeoJSON(geometry), properties, key, deleted, deltas
		 FROM geo WHERE key = $1 AND deleted = false`, key)
	return scanFeature(row)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFeature(row rowScanner) (*geo.Feature, error) {
	f := &geo.Feature{}
	var geomJSON sql.NullString
	var propsJSON []byte
	var key sql.NullString
	var deltas pq.Int64Array

	if err := row.Scan(&f.ID, &f.Version, &geomJSON, &propsJSON, &key, &f.Deleted, &deltas); err != nil {
		if err == sql.ErrNoRows {
			return nil, herr.New(herr.NotFound, "feature not found")
		}
		return nil, herr.FromPQ(err)
	}

	f.Deltas = []int64(deltas)
	if key.Valid {
		f.Key = &key.String
	}
	if len(propsJSON) > 0 {
		if err := json.Unmarshal(propsJSON, &f.Properties); err != nil {
			return nil, fmt.Errorf("unmarshal feature properties: %w", err)
		}
	}
	if geomJSON.Valid {
		g, err := geojson.UnmarshalGeometry([]byte(geomJSON.String))
		if err != nil {
			return nil, fmt.Errorf("unmarshal feature geometry: %w", err)
		}
		f.Geometry = g.Geometry()
	}
	return f, nil
}

// ListInBBox implements Store.
func (s *PostgresStore) ListInBBox(ctx context.Context, bbox orb.Bound, limit int) ([]*geo.Feature, error) {
	db := s.gw.DB(gateway.Replica)
	rows, err := db.QueryContext(ctx,
		`SELECT id, version, ST_AsGeoJSON(geometry), properties, key, deleted, deltas
		 FROM geo
		 WHERE deleted = false AND geometry && ST_MakeEnvelope($1, $2, $3, $4, 4326)
		 LIMIT $5`,
		bbox.Min.X(), bbox.Min.Y(), bbox.Max.X(), bbox.Max.Y(), limit)
	if err != nil {
		return nil, herr.FromPQ(err)
	}
	defer rows.Close()

	var out []*geo.Feature
	for rows.Next() {
		f, err := scanFeature(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// GetHistory implements Store, reading every delta whose affected set
// contains id, newest first, and recovering each delta's version of
// this feature from its finalized FeatureCollection (spec.md §4.2).
func (s *PostgresStore) GetHistory(ctx context.Context, id int64) ([]HistoryEntry, error) {
	db := s.gw.DB(gateway.Replica)
	rows, err := db.QueryContext(ctx,
		`SELECT d.id, d.created_at, d.author_uid, u.username, d.features
		 FROM deltas d
		 JOIN users u ON u.id = d.author_uid
		 WHERE d.finalized = true AND $1 = ANY(d.affected)
		 ORDER BY d.id DESC`, id)
	if err != nil {
		return nil, herr.FromPQ(err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var h HistoryEntry
		var featuresJSON []byte
		if err := rows.Scan(&h.DeltaID, &h.CreatedAt, &h.AuthorUID, &h.AuthorUsername, &featuresJSON); err != nil {
			return nil, err
		}

		var fc wireFeatureCollection
		if err := json.Unmarshal(featuresJSON, &fc); err == nil {
			for _, wf := range fc.Features {
				if wf.ID == id {
					h.Version = wf.Version
					h.Message = wf.Message
					break
				}
			}
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// ApplyChangeset implements Store's single mutating entry point,
// spec.md §4.1's six-step algorithm:
//  1. pre-flight shape/duplicate/self-reference/schema checks, before
//     any SQL runs;
//  2. open a transaction on the primary;
//  3. insert the pending delta row;
//  4. apply each change with an optimistic version check;
//  5. finalize the delta with the resolved affected-id set;
//  6. commit, then hand the delta id to the Worker Queue.
func (s *PostgresStore) ApplyChangeset(ctx context.Context, changes []*geo.FeatureChange, authorUID int64, message *string) (int64, error) {
	if len(changes) == 0 {
		return 0, herr.New(herr.Validation, "changeset must contain at least one change")
	}

	if err := preflightChangeset(changes, s.schema); err != nil {
		return 0, err
	}

	pending, err := encodeChangesPending(changes)
	if err != nil {
		return 0, fmt.Errorf("encode pending changeset: %w", err)
	}

	db := s.gw.DB(gateway.Primary)
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, herr.FromPQ(err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	props := map[string]interface{}{}
	if message != nil {
		props["message"] = *message
	}

	deltaID, err := delta.InsertPending(tx, authorUID, pending, props)
	if err != nil {
		return 0, herr.FromPQ(err)
	}

	resolved := make([]wireFeature, 0, len(changes))
	affected := make([]int64, 0, len(changes))

	for _, c := range changes {
		wf, id, err := applyChange(ctx, tx, deltaID, c)
		if err != nil {
			return 0, err
		}
		resolved = append(resolved, wf)
		affected = append(affected, id)
	}

	finalJSON, err := json.Marshal(wireFeatureCollection{Type: "FeatureCollection", Features: resolved})
	if err != nil {
		return 0, fmt.Errorf("encode finalized changeset: %w", err)
	}

	if err := delta.Finalize(tx, deltaID, affected, finalJSON); err != nil {
		return 0, herr.FromPQ(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, herr.FromPQ(err)
	}

	if s.enqueuer != nil {
		s.enqueuer.EnqueueDelta(deltaID)
	}

	return deltaID, nil
}

// preflightChangeset runs every check spec.md §4.1 requires before a
// transaction opens: per-change shape validation, duplicate target
// ids, a restore that targets an id deleted earlier in the same
// changeset, and property schema validation.
func preflightChangeset(changes []*geo.FeatureChange, schema *SchemaValidator) error {
	seen := map[int64]bool{}
	deletedInBatch := map[int64]bool{}

	for _, c := range changes {
		if err := c.Validate(); err != nil {
			return herr.New(herr.Validation, "%v", err)
		}
		if c.ID != nil {
			if seen[*c.ID] {
				return herr.New(herr.Validation, "id %d referenced more than once in changeset", *c.ID)
			}
			seen[*c.ID] = true
		}
		if c.Action == geo.ActionDelete && c.ID != nil {
			deletedInBatch[*c.ID] = true
		}
	}

	for _, c := range changes {
		if c.Action == geo.ActionRestore && c.ID != nil && deletedInBatch[*c.ID] {
			return herr.New(herr.Validation, "cannot restore id %d deleted earlier in the same changeset", *c.ID)
		}
		if (c.Action == geo.ActionCreate || c.Action == geo.ActionModify) && c.Properties != nil {
			if err := schema.Validate(c.Properties); err != nil {
				return err
			}
		}
	}

	return nil
}

// applyChange executes one change's SQL within the open transaction
// and returns its wire representation (with resolved id/version) plus
// its affected feature id.
func applyChange(ctx context.Context, tx *sql.Tx, deltaID int64, c *geo.FeatureChange) (wireFeature, int64, error) {
	switch c.Action {
	case geo.ActionCreate:
		return applyCreate(ctx, tx, deltaID, c)
	case geo.ActionModify:
		return applyModify(ctx, tx, deltaID, c)
	case geo.ActionDelete:
		return applyDelete(ctx, tx, deltaID, c)
	case geo.ActionRestore:
		return applyRestore(ctx, tx, deltaID, c)
	default:
		return wireFeature{}, 0, herr.New(herr.Validation, "unknown action %q", c.Action)
	}
}

func applyCreate(ctx context.Context, tx *sql.Tx, deltaID int64, c *geo.FeatureChange) (wireFeature, int64, error) {
	if c.Geometry == nil {
		return wireFeature{}, 0, herr.New(herr.Validation, "create requires a geometry")
	}
	geomJSON, err := marshalGeometry(c.Geometry)
	if err != nil {
		return wireFeature{}, 0, err
	}
	propsJSON, err := json.Marshal(c.Properties)
	if err != nil {
		return wireFeature{}, 0, err
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO geo (version, geometry, properties, key, deleted, deltas)
		 VALUES (1, ST_SetSRID(ST_GeomFromGeoJSON($1), 4326), $2, NULL, false, ARRAY[$3]::bigint[])
		 RETURNING id`,
		string(geomJSON), propsJSON, deltaID,
	).Scan(&id)
	if err != nil {
		return wireFeature{}, 0, herr.FromPQ(err)
	}

	wf := wireFeature{Type: "Feature", ID: id, Geometry: geomJSON, Properties: c.Properties, Version: 1, Action: geo.ActionCreate, Message: c.Message}
	return wf, id, nil
}

// lockCurrent locks and reads the current version/deleted flag for id,
// the row lock that makes the optimistic version check race-free
// against concurrent ApplyChangeset transactions.
func lockCurrent(ctx context.Context, tx *sql.Tx, id int64) (version int64, deleted bool, err error) {
	err = tx.QueryRowContext(ctx, `SELECT version, deleted FROM geo WHERE id = $1 FOR UPDATE`, id).Scan(&version, &deleted)
	if err == sql.ErrNoRows {
		return 0, false, herr.New(herr.NotFound, "feature %d not found", id)
	}
	if err != nil {
		return 0, false, herr.FromPQ(err)
	}
	return version, deleted, nil
}

func applyModify(ctx context.Context, tx *sql.Tx, deltaID int64, c *geo.FeatureChange) (wireFeature, int64, error) {
	current, deleted, err := lockCurrent(ctx, tx, *c.ID)
	if err != nil {
		return wireFeature{}, 0, err
	}
	if deleted {
		return wireFeature{}, 0, herr.New(herr.Validation, "cannot modify deleted feature %d", *c.ID)
	}
	if current != *c.Version {
		return wireFeature{}, 0, herr.New(herr.VersionMismatch, "feature %d is at version %d, not %d", *c.ID, current, *c.Version)
	}

	geomJSON, err := marshalGeometry(c.Geometry)
	if err != nil {
		return wireFeature{}, 0, err
	}
	propsJSON, err := json.Marshal(c.Properties)
	if err != nil {
		return wireFeature{}, 0, err
	}

	newVersion := current + 1
	_, err = tx.ExecContext(ctx,
		`UPDATE geo
		 SET version = $2, geometry = ST_SetSRID(ST_GeomFromGeoJSON($3), 4326), properties = $4,
		     deltas = deltas || ARRAY[$5]::bigint[]
		 WHERE id = $1`,
		*c.ID, newVersion, string(geomJSON), propsJSON, deltaID,
	)
	if err != nil {
		return wireFeature{}, 0, herr.FromPQ(err)
	}

	wf := wireFeature{Type: "Feature", ID: *c.ID, Geometry: geomJSON, Properties: c.Properties, Version: newVersion, Action: geo.ActionModify, Message: c.Message}
	return wf, *c.ID, nil
}

func applyDelete(ctx context.Context, tx *sql.Tx, deltaID int64, c *geo.FeatureChange) (wireFeature, int64, error) {
	current, deleted, err := lockCurrent(ctx, tx, *c.ID)
	if err != nil {
		return wireFeature{}, 0, err
	}
	if deleted {
		return wireFeature{}, 0, herr.New(herr.Validation, "feature %d is already deleted", *c.ID)
	}
	if current != *c.Version {
		return wireFeature{}, 0, herr.New(herr.VersionMismatch, "feature %d is at version %d, not %d", *c.ID, current, *c.Version)
	}

	newVersion := current + 1
	_, err = tx.ExecContext(ctx,
		`UPDATE geo
		 SET version = $2, deleted = true,
		     tombstone_geometry = geometry, tombstone_properties = properties,
		     geometry = NULL,
		     deltas = deltas || ARRAY[$3]::bigint[]
		 WHERE id = $1`,
		*c.ID, newVersion, deltaID,
	)
	if err != nil {
		return wireFeature{}, 0, herr.FromPQ(err)
	}

	wf := wireFeature{Type: "Feature", ID: *c.ID, Geometry: json.RawMessage("null"), Version: newVersion, Action: geo.ActionDelete, Message: c.Message}
	return wf, *c.ID, nil
}

func applyRestore(ctx context.Context, tx *sql.Tx, deltaID int64, c *geo.FeatureChange) (wireFeature, int64, error) {
	current, deleted, err := lockCurrent(ctx, tx, *c.ID)
	if err != nil {
		return wireFeature{}, 0, err
	}
	if !deleted {
		return wireFeature{}, 0, herr.New(herr.Validation, "feature %d is not deleted", *c.ID)
	}
	if current != *c.Version {
		return wireFeature{}, 0, herr.New(herr.VersionMismatch, "feature %d is at version %d, not %d", *c.ID, current, *c.Version)
	}

	var geomJSON json.RawMessage
	var properties map[string]interface{}
	if c.Geometry != nil {
		var err error
		geomJSON, err = marshalGeometry(c.Geometry)
		if err != nil {
			return wireFeature{}, 0, err
		}
		properties = c.Properties
	} else {
		var tombGeomJSON sql.NullString
		var tombProps []byte
		err := tx.QueryRowContext(ctx,
			`SELECT ST_AsGeoJSON(tombstone_geometry), tombstone_properties FROM geo WHERE id = $1`,
			*c.ID,
		).Scan(&tombGeomJSON, &tombProps)
		if err != nil {
			return wireFeature{}, 0, herr.FromPQ(err)
		}
		if !tombGeomJSON.Valid {
			return wireFeature{}, 0, herr.New(herr.Validation, "feature %d has no preserved geometry to restore", *c.ID)
		}
		geomJSON = json.RawMessage(tombGeomJSON.String)
		if len(tombProps) > 0 {
			if err := json.Unmarshal(tombProps, &properties); err != nil {
				return wireFeature{}, 0, herr.New(herr.Internal, "%v", err)
			}
		}
	}

	propsJSON, err := json.Marshal(properties)
	if err != nil {
		return wireFeature{}, 0, err
	}

	newVersion := current + 1
	_, err = tx.ExecContext(ctx,
		`UPDATE geo
		 SET version = $2, geometry = ST_SetSRID(ST_GeomFromGeoJSON($3), 4326), properties = $4,
		     deleted = false, tombstone_geometry = NULL, tombstone_properties = NULL,
		     deltas = deltas || ARRAY[$5]::bigint[]
		 WHERE id = $1`,
		*c.ID, newVersion, string(geomJSON), propsJSON, deltaID,
	)
	if err != nil {
		return wireFeature{}, 0, herr.FromPQ(err)
	}

	wf := wireFeature{Type: "Feature", ID: *c.ID, Geometry: geomJSON, Properties: properties, Version: newVersion, Action: geo.ActionRestore, Message: c.Message}
	return wf, *c.ID, nil
}
