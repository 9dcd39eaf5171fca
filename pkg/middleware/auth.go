package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKeyType string

const userIDKey contextKeyType = "user_id"

// TokenValidator verifies a bearer token and returns the authenticated user id.
// The service injects its own verification logic so this middleware stays
// independent of the signing scheme.
type TokenValidator func(token string) (string, error)

// Auth validates the bearer token on the Authorization header and injects the
// verified user id into the request context. A missing header, a malformed
// header, and a failed verification all produce the same 401 response; the
// distinction is never surfaced to the client.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeAuthError(w)
				return
			}

			userID, err := validate(parts[1])
			if err != nil {
				writeAuthError(w)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext extracts the authenticated user ID from the request context.
// Returns the empty string when the request did not pass through Auth.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// WithUserID returns a context carrying the given user id, as Auth would set
// it. Intended for tests of handlers mounted behind the middleware.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "error",
		"error": map[string]string{
			"code":    "UNAUTHORIZED",
			"message": "missing or invalid token",
		},
	})
}
