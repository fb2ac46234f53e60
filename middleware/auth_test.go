package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaguehq/league-system/models"
)

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func requestWithRole(role models.UserRole) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/matches", nil)
	ctx := context.WithValue(r.Context(), userIDContextKey, 1)
	ctx = context.WithValue(ctx, userRoleContextKey, role)
	return r.WithContext(ctx)
}

// Запись открыта только администраторам: менеджеры и зрители получают 403.
func TestRequireRoleAdminOnly(t *testing.T) {
	tests := []struct {
		name       string
		role       models.UserRole
		wantStatus int
		wantCalled bool
	}{
		{name: "admin passes", role: models.RoleAdmin, wantStatus: http.StatusOK, wantCalled: true},
		{name: "manager forbidden", role: models.RoleManager, wantStatus: http.StatusForbidden},
		{name: "viewer forbidden", role: models.RoleViewer, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, called := okHandler()
			gate := RequireRole(models.RoleAdmin)(next)

			rec := httptest.NewRecorder()
			gate.ServeHTTP(rec, requestWithRole(tt.role))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, *called)
		})
	}
}

func TestRequireRoleWithoutAuthenticatedUser(t *testing.T) {
	next, called := okHandler()
	gate := RequireRole(models.RoleAdmin)(next)

	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/matches", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *called)
}

func TestAuthenticatePutsClaimsIntoContext(t *testing.T) {
	auth := NewAuthenticator("test-secret")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 42,
		"role":    "admin",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	var gotID int
	var gotRole models.UserRole
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetUserIDFromContext(r.Context())
		gotRole, _ = GetUserRoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	auth.Authenticate(next).ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 42, gotID)
	assert.Equal(t, models.RoleAdmin, gotRole)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	auth := NewAuthenticator("test-secret")
	next, called := okHandler()

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "garbage token", header: "Bearer not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			auth.Authenticate(next).ServeHTTP(rec, r)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, *called)
		})
	}
}
