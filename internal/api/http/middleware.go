package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"rentool-backend/internal/logger"
	"rentool-backend/internal/security"

	"github.com/google/uuid"
)

type contextKey string

const (
	contextKeyRequestID contextKey = "request_id"
	contextKeyUser      contextKey = "user_claims"
)

// RequestLogging attaches a correlation id to every request and logs the
// method, path and duration.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)

		ctx := context.WithValue(r.Context(), contextKeyRequestID, requestID)
		log := logger.WithRequest(requestID)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		log.Debug("Request handled", "method", r.Method, "path", r.URL.Path, "duration_ms", time.Since(start).Milliseconds())
	})
}

// RequireAuth verifies the bearer token and attaches the caller identity.
// The core never issues tokens; it only trusts verified claims.
func RequireAuth(tm security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				writeJSON(w, http.StatusUnauthorized, apiResponse{Success: false, Message: "Missing bearer token"})
				return
			}

			claims, err := tm.ValidateToken(token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, apiResponse{Success: false, Message: "Invalid or expired token"})
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyUser, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the verified caller claims, if any.
func UserFromContext(ctx context.Context) (*security.UserClaims, bool) {
	claims, ok := ctx.Value(contextKeyUser).(*security.UserClaims)
	return claims, ok
}
