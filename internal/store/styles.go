package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/hecate-project/hecate/internal/gateway"
	"github.com/hecate-project/hecate/internal/herr"
)

// Style is a user-authored map style (spec.md §3): only its owner or
// an admin may mutate it, and a non-public style is readable only by
// its owner — both invariants are enforced by the caller (the `self`
// scope check already does the owner comparison; `List` additionally
// filters non-public rows belonging to someone else).
type Style struct {
	ID       int64
	Name     string
	Body     json.RawMessage
	OwnerUID int64
	Public   bool
}

// StylesRepo is the `styles` table's CRUD surface.
type StylesRepo struct {
	gw *gateway.Gateway
}

func NewStylesRepo(gw *gateway.Gateway) *StylesRepo {
	return &StylesRepo{gw: gw}
}

func (s *StylesRepo) Get(ctx context.Context, id int64) (*Style, error) {
	db := s.gw.DB(gateway.Replica)
	row := db.QueryRowContext(ctx, `SELECT id, name, style, uid, public FROM styles WHERE id = $1`, id)
	return scanStyle(row)
}

// List returns every public style plus, when viewerUID is non-nil,
// that viewer's own non-public styles too.
func (s *StylesRepo) List(ctx context.Context, viewerUID *int64) ([]*Style, error) {
	db := s.gw.DB(gateway.Replica)
	var rows *sql.Rows
	var err error
	if viewerUID != nil {
		rows, err = db.QueryContext(ctx, `SELECT id, name, style, uid, public FROM styles WHERE public = true OR uid = $1 ORDER BY id`, *viewerUID)
	} else {
		rows, err = db.QueryContext(ctx, `SELECT id, name, style, uid, public FROM styles WHERE public = true ORDER BY id`)
	}
	if err != nil {
		return nil, herr.FromPQ(err)
	}
	defer rows.Close()

	var out []*Style
	for rows.Next() {
		st, err := scanStyle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *StylesRepo) Create(ctx context.Context, name string, body json.RawMessage, ownerUID int64, public bool) (int64, error) {
	db := s.gw.DB(gateway.Primary)
	var id int64
	err := db.QueryRowContext(ctx,
		`INSERT INTO styles (name, style, uid, public) VALUES ($1, $2, $3, $4) RETURNING id`,
		name, []byte(body), ownerUID, public,
	).Scan(&id)
	if err != nil {
		return 0, herr.FromPQ(err)
	}
	return id, nil
}

func (s *StylesRepo) Update(ctx context.Context, id int64, name string, body json.RawMessage, public bool) error {
	db := s.gw.DB(gateway.Primary)
	res, err := db.ExecContext(ctx,
		`UPDATE styles SET name = $2, style = $3, public = $4 WHERE id = $1`,
		id, name, []byte(body), public,
	)
	if err != nil {
		return herr.FromPQ(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return herr.New(herr.NotFound, "style %d not found", id)
	}
	return nil
}

func (s *StylesRepo) Delete(ctx context.Context, id int64) error {
	db := s.gw.DB(gateway.Primary)
	_, err := db.ExecContext(ctx, `DELETE FROM styles WHERE id = $1`, id)
	if err != nil {
		return herr.FromPQ(err)
	}
	return nil
}

func scanStyle(row rowScanner) (*Style, error) {
	st := &Style{}
	var body []byte
	if err := row.Scan(&st.ID, &st.Name, &body, &st.OwnerUID, &st.Public); err != nil {
		if err == sql.ErrNoRows {
			return nil, herr.New(herr.NotFound, "style not found")
		}
		return nil, herr.FromPQ(err)
	}
	st.Body = json.RawMessage(body)
	return st, nil
}
