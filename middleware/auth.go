// Package middleware содержит HTTP-middleware аутентификации и авторизации.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/leaguehq/league-system/models"
)

type contextKey string

const (
	userIDContextKey   contextKey = "user_id"
	userRoleContextKey contextKey = "user_role"
)

var (
	ErrNoUserInContext = errors.New("no authenticated user in request context")
)

// Authenticator проверяет Bearer-токен и кладёт user_id и роль в контекст.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(jwtSecret string) *Authenticator {
	return &Authenticator{secret: []byte(jwtSecret)}
}

func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "missing or malformed authorization header", http.StatusUnauthorized)
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		userIDFloat, ok := claims["user_id"].(float64)
		if !ok {
			http.Error(w, "invalid token claims", http.StatusUnauthorized)
			return
		}
		role, _ := claims["role"].(string)

		ctx := context.WithValue(r.Context(), userIDContextKey, int(userIDFloat))
		ctx = context.WithValue(ctx, userRoleContextKey, models.UserRole(role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole пропускает запрос, только если роль из токена входит в список.
func RequireRole(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := GetUserRoleFromContext(r.Context())
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "forbidden", http.StatusForbidden)
		})
	}
}

func GetUserIDFromContext(ctx context.Context) (int, error) {
	id, ok := ctx.Value(userIDContextKey).(int)
	if !ok {
		return 0, ErrNoUserInContext
	}
	return id, nil
}

func GetUserRoleFromContext(ctx context.Context) (models.UserRole, error) {
	role, ok := ctx.Value(userRoleContextKey).(models.UserRole)
	if !ok {
		return "", ErrNoUserInContext
	}
	return role, nil
}
