package httpapi

import (
	"context"
	"database/sql"

	"github.com/hecate-project/hecate/internal/auth"
	"github.com/hecate-project/hecate/internal/gateway"
)

// userLookup is the Authorization Engine's auth.Lookup implementation
// backed by the `users`/`users_tokens` tables. Session cookies reuse
// `users_tokens` (spec.md §6's persisted-state table list names no
// separate sessions table): a session is simply an opaque token
// delivered by cookie instead of bearer/path.
type userLookup struct {
	gw *gateway.Gateway
}

// NewUserLookup builds the auth.Lookup implementation main.go wires
// into the Authorization Engine.
func NewUserLookup(gw *gateway.Gateway) *userLookup {
	return &userLookup{gw: gw}
}

func (u *userLookup) UserByUsername(ctx context.Context, username string) (*auth.UserRecord, error) {
	db := u.gw.DB(gateway.Replica)
	rec := &auth.UserRecord{}
	err := db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, access FROM users WHERE username = $1`, username,
	).Scan(&rec.UID, &rec.Username, &rec.PasswordHash, &rec.Access)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (u *userLookup) UserByToken(ctx context.Context, token string) (*auth.UserRecord, auth.TokenScope, error) {
	db := u.gw.DB(gateway.Replica)
	rec := &auth.UserRecord{}
	var scope string
	err := db.QueryRowContext(ctx,
		`SELECT u.id, u.username, u.password_hash, u.access, t.scope
		 FROM users_tokens t JOIN users u ON u.id = t.owner_uid
		 WHERE t.token = $1 AND u.access <> 'disabled'
		   AND (t.expires_at IS NULL OR t.expires_at > now())`,
		token,
	).Scan(&rec.UID, &rec.Username, &rec.PasswordHash, &rec.Access, &scope)
	if err != nil {
		return nil, "", err
	}
	return rec, auth.TokenScope(scope), nil
}

func (u *userLookup) UserBySession(ctx context.Context, sessionID string) (*auth.UserRecord, error) {
	db := u.gw.DB(gateway.Replica)
	rec := &auth.UserRecord{}
	err := db.QueryRowContext(ctx,
		`SELECT u.id, u.username, u.password_hash, u.access
		 FROM users_tokens t JOIN users u ON u.id = t.owner_uid
		 WHERE t.token = $1 AND u.access <> 'disabled'
		   AND (t.expires_at IS NULL OR t.expires_at > now())`,
		sessionID,
	).Scan(&rec.UID, &rec.Username, &rec.PasswordHash, &rec.Access)
	if err == sql.ErrNoRows {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}
