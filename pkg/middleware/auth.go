package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKeyType string

const (
	staffIDKey    contextKeyType = "staff_id"
	staffEmailKey contextKeyType = "staff_email"
)

// Claims represents the JWT claims extracted by the auth middleware.
type Claims struct {
	StaffID string `json:"staff_id"`
	Email   string `json:"email"`
}

// TokenValidator is a function that validates a JWT token and returns claims.
// The service injects its own validation logic.
type TokenValidator func(token string) (*Claims, error)

// Auth middleware validates bearer tokens and injects staff claims into context.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeAuthError(w, "invalid authorization header format")
				return
			}

			claims, err := validate(parts[1])
			if err != nil {
				writeAuthError(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), staffIDKey, claims.StaffID)
			ctx = context.WithValue(ctx, staffEmailKey, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StaffIDFromContext extracts the staff ID from the request context.
func StaffIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(staffIDKey).(string); ok {
		return id
	}
	return ""
}

// StaffEmailFromContext extracts the staff email from the request context.
func StaffEmailFromContext(ctx context.Context) string {
	if email, ok := ctx.Value(staffEmailKey).(string); ok {
		return email
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    "UNAUTHORIZED",
		"message": message,
	})
}
