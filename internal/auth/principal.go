package auth

import (
	"context"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/hecate-project/hecate/internal/herr"
)

// AccessLevel mirrors spec.md §3's User.access enum.
type AccessLevel string

const (
	AccessDisabled AccessLevel = "disabled"
	AccessDefault  AccessLevel = "default"
	AccessAdmin    AccessLevel = "admin"
)

// TokenScope mirrors spec.md §4.3's token scope: a "read" token may
// never satisfy a write, independent of the matrix.
type TokenScope string

const (
	TokenFull TokenScope = "full"
	TokenRead TokenScope = "read"
)

// UserRecord is the subset of the Data Model's User entity the
// Authorization Engine needs to resolve a principal.
type UserRecord struct {
	UID          int64
	Username     string
	PasswordHash string
	Access       AccessLevel
}

// Lookup is the Authorization Engine's view of the Storage Gateway:
// just enough to resolve credentials into a UserRecord, kept as an
// interface so package auth never imports package store.
type Lookup interface {
	UserByUsername(ctx context.Context, username string) (*UserRecord, error)
	UserByToken(ctx context.Context, token string) (*UserRecord, TokenScope, error)
	UserBySession(ctx context.Context, sessionID string) (*UserRecord, error)
}

// Principal is the resolved identity of a request, per spec.md §4.3
// step 1.
type Principal struct {
	Anonymous  bool
	UID        int64
	Username   string
	Access     AccessLevel
	TokenScope TokenScope // zero value means "not a token request"
}

var anonymous = Principal{Anonymous: true}

// ResolvePrincipal implements spec.md §4.3 step 1's resolution order:
// a token path prefix, then HTTP Basic (bcrypt-verified), then a
// session cookie; the first successful method wins, absence of all
// three yields the anonymous principal. tokenFromPath is the opaque
// token string extracted from a `/token/<opaque>/...` route by the
// router (empty for non-token routes).
func ResolvePrincipal(ctx context.Context, r *http.Request, tokenFromPath string, lookup Lookup) (Principal, error) {
	if tokenFromPath != "" {
		user, scope, err := lookup.UserByToken(ctx, tokenFromPath)
		if err != nil {
			return Principal{}, herr.New(herr.Unauthenticated, "invalid or expired token")
		}
		return Principal{UID: user.UID, Username: user.Username, Access: user.Access, TokenScope: scope}, nil
	}

	if username, password, ok := r.BasicAuth(); ok {
		user, err := lookup.UserByUsername(ctx, username)
		if err != nil {
			return Principal{}, herr.New(herr.Unauthenticated, "invalid credentials")
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
			return Principal{}, herr.New(herr.Unauthenticated, "invalid credentials")
		}
		return Principal{UID: user.UID, Username: user.Username, Access: user.Access}, nil
	}

	if cookie, err := r.Cookie("hecate_session"); err == nil {
		user, err := lookup.UserBySession(ctx, cookie.Value)
		if err == nil {
			return Principal{UID: user.UID, Username: user.Username, Access: user.Access}, nil
		}
		// stale/unknown session cookie: fall through to anonymous.
	}

	return anonymous, nil
}
