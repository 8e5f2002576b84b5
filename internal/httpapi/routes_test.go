package httpapi

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hecate-project/hecate/internal/auth"
	"github.com/hecate-project/hecate/internal/store"
)

func newTestHandler(matrix auth.Matrix) *Handler {
	st := store.NewMemoryStore(nil, nil)
	return New(nil, st, nil, nil, nil, nil, matrix, nil, nil, nil, nil)
}

func TestGetAuthReturnsConfiguredMatrix(t *testing.T) {
	h := newTestHandler(auth.Matrix{"default": auth.ScopePublic})
	router := h.SetupRoutes()

	req := httptest.NewRequest("GET", "/api/auth", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), "public")
}

func TestDisabledScopeHidesEndpoint(t *testing.T) {
	h := newTestHandler(auth.Matrix{"auth.get": auth.ScopeDisabled})
	router := h.SetupRoutes()

	req := httptest.NewRequest("GET", "/api/auth", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, 404, rec.Code)
}

func TestFeatureCreateRequiresAuthByDefault(t *testing.T) {
	h := newTestHandler(auth.Matrix{"default": auth.ScopeUser})
	router := h.SetupRoutes()

	req := httptest.NewRequest("POST", "/api/data/feature", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, 401, rec.Code)
}

func TestStyleCreateRequiresAuthByDefault(t *testing.T) {
	h := newTestHandler(auth.Matrix{"default": auth.ScopeUser})
	router := h.SetupRoutes()

	req := httptest.NewRequest("POST", "/api/style", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, 401, rec.Code)
}

func TestBoundsDisabledScopeHidesEndpoint(t *testing.T) {
	h := newTestHandler(auth.Matrix{"bounds.get": auth.ScopeDisabled})
	router := h.SetupRoutes()

	req := httptest.NewRequest("GET", "/api/bounds", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, 404, rec.Code)
}

func TestMetaSetRequiresAuthByDefault(t *testing.T) {
	h := newTestHandler(auth.Matrix{"default": auth.ScopeUser})
	router := h.SetupRoutes()

	req := httptest.NewRequest("PUT", "/api/meta/some-key", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, 401, rec.Code)
}

func TestFeatureCreateReturnsTrueBody(t *testing.T) {
	h := newTestHandler(auth.Matrix{"default": auth.ScopePublic})
	router := h.SetupRoutes()

	body := `{"action":"create","geometry":{"type":"Point","coordinates":[0,0]},"properties":{}}`
	req := httptest.NewRequest("POST", "/api/data/feature", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	require.Equal(t, "true", rec.Body.String())
}

func TestUserCreateRequiresCredentials(t *testing.T) {
	h := newTestHandler(auth.Matrix{"default": auth.ScopePublic})
	router := h.SetupRoutes()

	req := httptest.NewRequest("POST", "/api/user/create", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, 400, rec.Code)
}

func TestWFSDescribeFeatureTypeIsPublic(t *testing.T) {
	h := newTestHandler(auth.Matrix{})
	router := h.SetupRoutes()

	req := httptest.NewRequest("GET", "/wfs?SERVICE=WFS&REQUEST=DescribeFeatureType", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), "HecatePointData")
}
