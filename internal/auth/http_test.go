// ABOUTME: Tests for the authentication middleware and admin gate
// ABOUTME: Uses httptest with a stub user lookup

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techguides/techhub/internal/store"
)

type stubLookup struct {
	users map[string]*store.User
}

func (s *stubLookup) GetUser(_ context.Context, username string) (*store.User, error) {
	if u, ok := s.users[username]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func newTestMiddleware(t *testing.T, users map[string]*store.User) (*JWTVerifier, http.Handler, *Principal) {
	t.Helper()
	verifier := NewJWTVerifier([]byte("test-secret-test-secret-test-sec"))

	var seen Principal
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := Middleware(&stubLookup{users: users}, verifier)(inner)
	return verifier, handler, &seen
}

func TestMiddleware_ValidUserToken(t *testing.T) {
	verifier, handler, seen := newTestMiddleware(t, map[string]*store.User{
		"alice": {Username: "alice", ExternalFeatures: true},
	})

	token, err := verifier.Generate("alice", false, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/whatever", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, *seen)
	assert.Equal(t, "alice", (*seen).Name())
	assert.True(t, (*seen).CanUseExternalTools())
	assert.False(t, (*seen).IsAdmin())
}

func TestMiddleware_EntitlementReflectsStore(t *testing.T) {
	// Token issued while entitled, but the store row says otherwise now.
	verifier, handler, seen := newTestMiddleware(t, map[string]*store.User{
		"alice": {Username: "alice", ExternalFeatures: false},
	})

	token, err := verifier.Generate("alice", false, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/whatever", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, *seen)
	assert.False(t, (*seen).CanUseExternalTools())
}

func TestMiddleware_AdminToken(t *testing.T) {
	verifier, handler, seen := newTestMiddleware(t, map[string]*store.User{})

	token, err := verifier.Generate("operator", true, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/whatever", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, *seen)
	assert.True(t, (*seen).IsAdmin())
}

func TestMiddleware_Rejections(t *testing.T) {
	verifier, handler, _ := newTestMiddleware(t, map[string]*store.User{})

	expired, err := verifier.Generate("alice", false, -time.Minute)
	require.NoError(t, err)

	orphan, err := verifier.Generate("ghost", false, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not.a.token"},
		{"expired token", "Bearer " + expired},
		{"unknown user", "Bearer " + orphan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/whatever", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), `"success":false`)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAdmin()(inner)

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/thing", nil)
		req = req.WithContext(WithPrincipal(req.Context(), AdminPrincipal{}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("user forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/thing", nil)
		req = req.WithContext(WithPrincipal(req.Context(), UserPrincipal{Username: "alice"}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/thing", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
