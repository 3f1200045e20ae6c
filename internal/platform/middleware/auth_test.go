package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"navshell/pkg/domain"
	"navshell/pkg/requestcontext"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (v stubValidator) ValidateToken(string) (*JWTClaims, error) {
	return v.claims, v.err
}

type stubSessions map[domain.SessionID]bool

func (s stubSessions) IsActive(_ context.Context, id domain.SessionID) bool {
	return s[id]
}

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	userID := domain.NewUserID()
	sessionID := domain.NewSessionID()
	valid := &JWTClaims{UserID: userID.String(), SessionID: sessionID.String(), Role: "ADMIN"}

	var seen context.Context
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Context()
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name      string
		header    string
		validator stubValidator
		sessions  SessionChecker
		want      int
	}{
		{"missing header", "", stubValidator{claims: valid}, nil, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", stubValidator{claims: valid}, nil, http.StatusUnauthorized},
		{"invalid token", "Bearer t", stubValidator{err: errors.New("bad")}, nil, http.StatusUnauthorized},
		{"malformed claims", "Bearer t", stubValidator{claims: &JWTClaims{UserID: "x", SessionID: "y"}}, nil, http.StatusUnauthorized},
		{"revoked session", "Bearer t", stubValidator{claims: valid}, stubSessions{}, http.StatusUnauthorized},
		{"active session", "Bearer t", stubValidator{claims: valid}, stubSessions{sessionID: true}, http.StatusNoContent},
		{"no session checker", "Bearer t", stubValidator{claims: valid}, nil, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/nav/main", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			RequireAuth(tt.validator, tt.sessions, logger)(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.want, rr.Code)
			if tt.want != http.StatusNoContent {
				assert.Nil(t, seen)
				assert.Contains(t, rr.Body.String(), `"error":"unauthorized"`)
				return
			}
			require.NotNil(t, seen)
			assert.Equal(t, userID, requestcontext.UserID(seen))
			assert.Equal(t, sessionID, requestcontext.SessionID(seen))
			assert.Equal(t, domain.RoleAdmin, requestcontext.Role(seen))
		})
	}
}
