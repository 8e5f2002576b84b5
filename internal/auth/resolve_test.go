package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hecate-project/hecate/internal/herr"
)

func TestResolve(t *testing.T) {
	owner := int64(42)
	other := int64(7)

	t.Run("disabled scope hides the endpoint from everyone", func(t *testing.T) {
		err := Resolve(anonymous, ScopeDisabled, nil, false)
		assert.True(t, herr.As(err, herr.NotFound))

		admin := Principal{UID: 1, Access: AccessAdmin}
		err = Resolve(admin, ScopeDisabled, nil, false)
		assert.True(t, herr.As(err, herr.NotFound))
	})

	t.Run("public scope allows anonymous", func(t *testing.T) {
		assert.NoError(t, Resolve(anonymous, ScopePublic, nil, false))
	})

	t.Run("user scope requires authentication", func(t *testing.T) {
		err := Resolve(anonymous, ScopeUser, nil, false)
		assert.True(t, herr.As(err, herr.Unauthenticated))

		u := Principal{UID: 1, Access: AccessDefault}
		assert.NoError(t, Resolve(u, ScopeUser, nil, false))
	})

	t.Run("disabled account is forbidden even on a public endpoint", func(t *testing.T) {
		u := Principal{UID: 1, Access: AccessDisabled}
		err := Resolve(u, ScopePublic, nil, false)
		assert.True(t, herr.As(err, herr.Forbidden))
	})

	t.Run("admin scope requires admin access", func(t *testing.T) {
		u := Principal{UID: 1, Access: AccessDefault}
		err := Resolve(u, ScopeAdmin, nil, false)
		assert.True(t, herr.As(err, herr.Forbidden))

		a := Principal{UID: 1, Access: AccessAdmin}
		assert.NoError(t, Resolve(a, ScopeAdmin, nil, false))
	})

	t.Run("self scope requires matching owner uid", func(t *testing.T) {
		u := Principal{UID: owner, Access: AccessDefault}
		assert.NoError(t, Resolve(u, ScopeSelf, &owner, false))

		notOwner := Principal{UID: other, Access: AccessDefault}
		err := Resolve(notOwner, ScopeSelf, &owner, false)
		assert.True(t, herr.As(err, herr.Forbidden))

		err = Resolve(anonymous, ScopeSelf, &owner, false)
		assert.True(t, herr.As(err, herr.Unauthenticated))
	})

	t.Run("a read-only token is denied on writes independent of scope", func(t *testing.T) {
		p := Principal{UID: owner, Access: AccessDefault, TokenScope: TokenRead}
		err := Resolve(p, ScopePublic, nil, true)
		assert.True(t, herr.As(err, herr.Forbidden))

		assert.NoError(t, Resolve(p, ScopePublic, nil, false))
	})
}

func TestMatrixLookupAndValidation(t *testing.T) {
	t.Run("falls back to default then public", func(t *testing.T) {
		m, err := LoadMatrix([]byte(`{"default": "disabled", "auth.get": "public"}`))
		assert.NoError(t, err)
		assert.Equal(t, ScopePublic, m.Lookup("auth.get"))
		assert.Equal(t, ScopeDisabled, m.Lookup("feature.get"))
	})

	t.Run("empty matrix yields public everywhere", func(t *testing.T) {
		m, err := LoadMatrix(nil)
		assert.NoError(t, err)
		assert.Equal(t, ScopePublic, m.Lookup("anything"))
	})

	t.Run("rejects values outside the closed set", func(t *testing.T) {
		_, err := LoadMatrix([]byte(`{"feature.create": "superuser"}`))
		assert.Error(t, err)
	})
}
