package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// JWTAuth validates the Bearer token and stores the moderator id (the token
// subject) in the request context. When no secret is configured the middleware
// lets requests through under a shared anonymous id, so a local setup works
// without an auth server.
func JWTAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				ctx := context.WithValue(r.Context(), ModeratorIDCtxKey, "anonymous")
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "Missing or malformed Authorization header", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			subject, err := token.Claims.GetSubject()
			if err != nil || subject == "" {
				http.Error(w, "Token has no subject", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ModeratorIDCtxKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ModeratorID extracts the authenticated moderator id from the context.
func ModeratorID(ctx context.Context) string {
	if id, ok := ctx.Value(ModeratorIDCtxKey).(string); ok {
		return id
	}
	return "anonymous"
}
