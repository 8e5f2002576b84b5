package httpapi

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/hecate-project/hecate/internal/auth"
	"github.com/hecate-project/hecate/internal/gateway"
	"github.com/hecate-project/hecate/internal/herr"
)

// newOpaqueToken mints a random 32-byte token, hex-encoded, for either
// a bearer token or a session cookie value — both live in the same
// users_tokens table (see lookup.go's doc comment).
func newOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

type createSessionRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateSession handles POST /api/user/session (user.create_session):
// verifies a username/password and sets an opaque session cookie
// backed by a users_tokens row.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, auth.ScopeKeyUserCreateSession, nil, false); !ok {
		return
	}

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, herr.New(herr.Validation, "invalid request body"))
		return
	}

	user, err := h.lookup.UserByUsername(r.Context(), req.Username)
	if err != nil {
		h.writeError(w, herr.New(herr.Unauthenticated, "invalid credentials"))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		h.writeError(w, herr.New(herr.Unauthenticated, "invalid credentials"))
		return
	}
	if user.Access == auth.AccessDisabled {
		h.writeError(w, herr.New(herr.Forbidden, "account disabled"))
		return
	}

	token, err := newOpaqueToken()
	if err != nil {
		h.writeError(w, herr.New(herr.Internal, "%v", err))
		return
	}

	expires := time.Now().Add(24 * time.Hour)
	db := h.gw.DB(gateway.Primary)
	_, err = db.ExecContext(r.Context(),
		`INSERT INTO users_tokens (token, owner_uid, scope, expires_at) VALUES ($1, $2, $3, $4)`,
		token, user.UID, string(auth.TokenFull), expires,
	)
	if err != nil {
		h.writeError(w, herr.FromPQ(err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "hecate_session",
		Value:    token,
		Expires:  expires,
		HttpOnly: true,
		Path:     "/",
	})
	h.writeBool(w, true)
}

// GetSession handles GET /api/user/session: reports the calling
// principal, for a client to check whether its session is still live.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	p, ok := h.authorize(w, r, auth.ScopeKeyUserCreateSession, nil, false)
	if !ok {
		return
	}
	if p.Anonymous {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{"anonymous": true})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"anonymous": false,
		"username":  p.Username,
		"access":    p.Access,
	})
}

// DeleteSession handles DELETE /api/user/session: revokes the token
// backing the caller's session cookie, if any, and clears the cookie.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("hecate_session"); err == nil {
		db := h.gw.DB(gateway.Primary)
		_, _ = db.ExecContext(r.Context(), `DELETE FROM users_tokens WHERE token = $1`, cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: "hecate_session", Value: "", MaxAge: -1, Path: "/"})
	w.WriteHeader(http.StatusNoContent)
}

type createTokenRequest struct {
	Scope string `json:"scope"`
}

// CreateToken handles POST /api/user/token: mints a long-lived bearer
// token (full or read-only scope) for the authenticated caller, for
// use as a `/token/<opaque>/...` path prefix per spec.md §4.3.
func (h *Handler) CreateToken(w http.ResponseWriter, r *http.Request) {
	p, ok := h.authorize(w, r, auth.ScopeKeyUserCreateSession, nil, false)
	if !ok {
		return
	}
	if p.Anonymous {
		h.writeError(w, herr.New(herr.Unauthenticated, "authentication required"))
		return
	}

	var req createTokenRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	scope := auth.TokenFull
	if req.Scope == string(auth.TokenRead) {
		scope = auth.TokenRead
	}

	token, err := newOpaqueToken()
	if err != nil {
		h.writeError(w, herr.New(herr.Internal, "%v", err))
		return
	}

	db := h.gw.DB(gateway.Primary)
	_, err = db.ExecContext(r.Context(),
		`INSERT INTO users_tokens (token, owner_uid, scope, expires_at) VALUES ($1, $2, $3, NULL)`,
		token, p.UID, string(scope),
	)
	if err != nil {
		h.writeError(w, herr.FromPQ(err))
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"token": token, "scope": scope})
}

// CreateUser handles POST /api/user/create (user.create): registers a
// new account from query params, per spec.md §8 scenario 1, and
// responds with the same "true" body as the other mutation endpoints.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, auth.ScopeKeyUserCreate, nil, true); !ok {
		return
	}

	username := r.URL.Query().Get("username")
	password := r.URL.Query().Get("password")
	email := r.URL.Query().Get("email")
	if username == "" || password == "" || email == "" {
		h.writeError(w, herr.New(herr.Validation, "username, password, and email are required"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.writeError(w, herr.New(herr.Internal, "%v", err))
		return
	}

	db := h.gw.DB(gateway.Primary)
	_, err = db.ExecContext(r.Context(),
		`INSERT INTO users (username, password_hash, access, email, meta) VALUES ($1, $2, $3, $4, '{}')`,
		username, string(hash), string(auth.AccessDefault), email,
	)
	if err != nil {
		h.writeError(w, herr.FromPQ(err))
		return
	}

	h.writeBool(w, true)
}

// userView is the JSON shape of a User entity, per spec.md §8's
// user_modify scenario.
type userView struct {
	ID       int64                  `json:"id"`
	Access   string                 `json:"access"`
	Username string                 `json:"username"`
	Email    string                 `json:"email"`
	Meta     map[string]interface{} `json:"meta"`
}

func parseUserID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, herr.New(herr.Validation, "invalid user id")
	}
	return id, nil
}

// GetUser handles GET /api/user/:id (user.get): an admin, or the user
// themselves, can read the full account record.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if _, ok := h.authorize(w, r, auth.ScopeKeyUserGet, &id, false); !ok {
		return
	}

	var view userView
	var metaJSON []byte
	db := h.gw.DB(gateway.Replica)
	err = db.QueryRowContext(r.Context(),
		`SELECT id, COALESCE(access, 'default'), username, email, meta FROM users WHERE id = $1`,
		id,
	).Scan(&view.ID, &view.Access, &view.Username, &view.Email, &metaJSON)
	if err != nil {
		h.writeError(w, herr.FromPQ(err))
		return
	}
	view.Meta = map[string]interface{}{}
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &view.Meta); err != nil {
			h.writeError(w, herr.New(herr.Internal, "%v", err))
			return
		}
	}

	h.writeJSON(w, http.StatusOK, view)
}

type updateUserRequest struct {
	Access   string                 `json:"access"`
	Username string                 `json:"username"`
	Email    string                 `json:"email"`
	Meta     map[string]interface{} `json:"meta"`
}

// UpdateUser handles POST /api/user/:id (user.set): an admin, or the
// user themselves, can replace the account's username/email/meta; the
// access level is replaced only when the caller is an admin (a
// non-admin caller's access field is ignored) — matching
// original_source's user_modify scenario.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	p, ok := h.authorize(w, r, auth.ScopeKeyUserSet, &id, true)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, herr.New(herr.Validation, "invalid request body"))
		return
	}
	metaJSON, err := json.Marshal(req.Meta)
	if err != nil {
		h.writeError(w, herr.New(herr.Validation, "%v", err))
		return
	}

	db := h.gw.DB(gateway.Primary)
	_, err = db.ExecContext(r.Context(),
		`UPDATE users SET access = CASE WHEN $6 THEN $2 ELSE access END, username = $3, email = $4, meta = $5 WHERE id = $1`,
		id, req.Access, req.Username, req.Email, metaJSON, p.Access == auth.AccessAdmin,
	)
	if err != nil {
		h.writeError(w, herr.FromPQ(err))
		return
	}

	h.writeBool(w, true)
}
