package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
)

type creatorKey struct{}

// CreatorAuth verifies the bearer token minted by the external auth provider
// and stashes the creator id (the subject claim) in the request context. Only
// verification happens here; issuing tokens is the provider's business.
func CreatorAuth(secret string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if raw == "" || raw == r.Header.Get("Authorization") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			sub, err := token.Claims.GetSubject()
			if err != nil || sub == "" {
				http.Error(w, "invalid token subject", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), creatorKey{}, sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CreatorID extracts the authenticated creator id from the request context.
func CreatorID(ctx context.Context) string {
	id, _ := ctx.Value(creatorKey{}).(string)
	return id
}
