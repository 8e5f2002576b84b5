// Package delta implements the Delta Log: grouping feature changes
// into atomic, user-attributed changesets, and answering historical
// and tile-invalidation queries over them (spec.md §4.2).
package delta

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Delta is a changeset: an atomic, user-attributed group of feature
// changes (spec.md §3). It generalizes the teacher's Version/
// ChangeEvent/Operation vocabulary (lakehouse.go) into "the
// transaction that produced a Version."
type Delta struct {
	ID             int64
	CreatedAt      time.Time
	AuthorUID      int64
	AuthorUsername string
	Properties     map[string]interface{}
	Finalized      bool
	Features       json.RawMessage // the embedded FeatureCollection of changes
	Affected       []int64
}

// InsertPending opens the delta row inside the caller's transaction
// with finalized=false, per spec.md §4.1 step 2. The row disappears
// if the surrounding transaction rolls back.
func InsertPending(tx *sql.Tx, authorUID int64, features json.RawMessage, properties map[string]interface{}) (int64, error) {
	propsJSON, err := json.Marshal(properties)
	if err != nil {
		return 0, fmt.Errorf("marshal delta properties: %w", err)
	}

	var id int64
	err = tx.QueryRow(
		`INSERT INTO deltas (created_at, author_uid, properties, finalized, features, affected)
		 VALUES (now(), $1, $2, false, $3, '{}')
		 RETURNING id`,
		authorUID, propsJSON, features,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert pending delta: %w", err)
	}
	return id, nil
}

// Finalize marks a delta finalized and records its affected feature
// ids and final FeatureCollection, per spec.md §4.1 step 5. Deltas
// are append-only once finalized (spec.md §4.2): this is the single
// write a delta ever receives after InsertPending.
func Finalize(tx *sql.Tx, id int64, affected []int64, features json.RawMessage) error {
	_, err := tx.Exec(
		`UPDATE deltas SET finalized = true, affected = $2, features = $3 WHERE id = $1`,
		id, pq.Int64Array(affected), features,
	)
	if err != nil {
		return fmt.Errorf("finalize delta %d: %w", id, err)
	}
	return nil
}

// List returns deltas newest-first, paginated, per spec.md §4.2.
func List(ctx context.Context, db *sql.DB, limit, offset int, authorFilter *int64) ([]*Delta, error) {
	query := `SELECT d.id, d.created_at, d.author_uid, u.username, d.properties, d.finalized, d.features, d.affected
	          FROM deltas d JOIN users u ON u.id = d.author_uid
	          WHERE d.finalized = true`
	args := []interface{}{}
	if authorFilter != nil {
		query += fmt.Sprintf(" AND d.author_uid = $%d", len(args)+1)
		args = append(args, *authorFilter)
	}
	query += fmt.Sprintf(" ORDER BY d.id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list deltas: %w", err)
	}
	defer rows.Close()

	return scanDeltas(rows)
}

// Get returns a single delta by id plus its resolved author, per
// spec.md §4.2.
func Get(ctx context.Context, db *sql.DB, id int64) (*Delta, error) {
	row := db.QueryRowContext(ctx,
		`SELECT d.id, d.created_at, d.author_uid, u.username, d.properties, d.finalized, d.features, d.affected
		 FROM deltas d JOIN users u ON u.id = d.author_uid
		 WHERE d.id = $1`, id)

	d := &Delta{}
	var propsJSON []byte
	var affected pq.Int64Array
	if err := row.Scan(&d.ID, &d.CreatedAt, &d.AuthorUID, &d.AuthorUsername, &propsJSON, &d.Finalized, &d.Features, &affected); err != nil {
		return nil, err
	}
	d.Affected = []int64(affected)
	if len(propsJSON) > 0 {
		if err := json.Unmarshal(propsJSON, &d.Properties); err != nil {
			return nil, fmt.Errorf("unmarshal delta properties: %w", err)
		}
	}
	return d, nil
}

func scanDeltas(rows *sql.Rows) ([]*Delta, error) {
	var out []*Delta
	for rows.Next() {
		d := &Delta{}
		var propsJSON []byte
		var affected pq.Int64Array
		if err := rows.Scan(&d.ID, &d.CreatedAt, &d.AuthorUID, &d.AuthorUsername, &propsJSON, &d.Finalized, &d.Features, &affected); err != nil {
			return nil, err
		}
		d.Affected = []int64(affected)
		if len(propsJSON) > 0 {
			if err := json.Unmarshal(propsJSON, &d.Properties); err != nil {
				return nil, fmt.Errorf("unmarshal delta properties: %w", err)
			}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
