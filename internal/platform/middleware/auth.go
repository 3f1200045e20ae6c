package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"navshell/pkg/domain"
	"navshell/pkg/requestcontext"
)

// JWTValidator defines the interface for validating access tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator.
type JWTClaims struct {
	UserID    string
	SessionID string
	Role      string
}

// SessionChecker reports whether a session is still active. Logging out
// revokes the session while its token may still be unexpired.
type SessionChecker interface {
	IsActive(ctx context.Context, sessionID domain.SessionID) bool
}

// RequireAuth validates the bearer token, checks the session is active and
// stores user, session and role in the request context.
func RequireAuth(validator JWTValidator, sessions SessionChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			userID, errUser := domain.ParseUserID(claims.UserID)
			sessionID, errSession := domain.ParseSessionID(claims.SessionID)
			if errUser != nil || errSession != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed claims",
					"request_id", requestID,
				)
				writeUnauthorized(w, "Invalid token claims")
				return
			}
			if sessions != nil && !sessions.IsActive(ctx, sessionID) {
				logger.InfoContext(ctx, "unauthorized access - session inactive",
					"session_id", sessionID.String(),
					"request_id", requestID,
				)
				writeUnauthorized(w, "Session is no longer active")
				return
			}
			role, err := domain.ParseRole(claims.Role)
			if err != nil {
				role = domain.RoleNone
			}

			ctx = requestcontext.WithUserID(ctx, userID)
			ctx = requestcontext.WithSessionID(ctx, sessionID)
			ctx = requestcontext.WithRole(ctx, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
