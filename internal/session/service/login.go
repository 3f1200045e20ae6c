package service

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"

	"navshell/internal/audit"
	"navshell/internal/session/models"
	"navshell/pkg/domain"
	dErrors "navshell/pkg/domain-errors"
	"navshell/pkg/platform/sentinel"
	"navshell/pkg/requestcontext"
)

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Session     *models.Session
	User        *models.User
	AccessToken string
}

// Login verifies credentials, opens a session under the user's own role and
// announces that role.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (_ *LoginResult, err error) {
	req.Normalize()
	ctx, span := s.startSpan(ctx, "session.Login")
	defer func() { endSpan(span, err) }()

	if req.Email == "" || strings.TrimSpace(req.Password) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.loginFailed(ctx, "unknown_user")
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)) != nil {
		s.loginFailed(ctx, "bad_password")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	now := requestcontext.Now(ctx)
	session := &models.Session{
		ID:         domain.NewSessionID(),
		UserID:     user.ID,
		BaseRole:   user.Role,
		ActiveRole: user.Role,
		CreatedAt:  now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, session.ID, user.Role, s.TokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}

	span.SetAttributes(
		attribute.String("session.id", session.ID.String()),
		attribute.String("session.role", user.Role.String()),
	)
	s.announce(ctx, session.ID, session.ActiveRole, now)
	if s.metrics != nil {
		s.metrics.IncrementLogin("success")
	}
	s.emit(ctx, audit.Event{
		Category:  audit.CategorySecurity,
		Action:    audit.ActionLogin,
		Timestamp: now,
		UserID:    user.ID.String(),
		SessionID: session.ID.String(),
		Role:      user.Role.String(),
		RequestID: requestcontext.RequestID(ctx),
	})
	s.logger.InfoContext(ctx, "session opened",
		"session_id", session.ID.String(),
		"user_id", user.ID.String(),
		"role", user.Role.String(),
	)

	return &LoginResult{Session: session, User: user, AccessToken: token}, nil
}

func (s *Service) loginFailed(ctx context.Context, reason string) {
	if s.metrics != nil {
		s.metrics.IncrementLogin("failure")
	}
	s.logger.WarnContext(ctx, "login failed",
		"reason", reason,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{
		Category:  audit.CategorySecurity,
		Action:    audit.ActionLoginFailed,
		Timestamp: requestcontext.Now(ctx),
		RequestID: requestcontext.RequestID(ctx),
		Reason:    reason,
	})
}
