package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"navshell/internal/audit"
	"navshell/internal/session/models"
	"navshell/pkg/domain"
	dErrors "navshell/pkg/domain-errors"
	"navshell/pkg/platform/sentinel"
	"navshell/pkg/requestcontext"
)

// Current returns the session if it exists and has not been revoked.
func (s *Service) Current(ctx context.Context, sessionID domain.SessionID) (*models.Session, error) {
	if sessionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "session ID required")
	}
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "session not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	if !session.IsActive() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "session revoked")
	}
	return session, nil
}

// IsActive backs the auth middleware's session check.
func (s *Service) IsActive(ctx context.Context, sessionID domain.SessionID) bool {
	_, err := s.Current(ctx, sessionID)
	return err == nil
}

// errSessionRevoked aborts a role update that raced a logout.
var errSessionRevoked = errors.New("session revoked")

// Logout revokes the session and announces the absent role. Logging out a
// revoked session is a no-op.
func (s *Service) Logout(ctx context.Context, sessionID domain.SessionID) (err error) {
	ctx, span := s.startSpan(ctx, "session.Logout", attribute.String("session.id", sessionID.String()))
	defer func() { endSpan(span, err) }()

	now := requestcontext.Now(ctx)
	var previous domain.Role
	revoked := false
	session, err := s.sessions.UpdateFunc(ctx, sessionID, func(cur *models.Session) error {
		if !cur.IsActive() {
			return nil
		}
		previous = cur.ActiveRole
		cur.RevokedAt = &now
		revoked = true
		return nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "session not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke session")
	}
	if !revoked {
		return nil
	}

	s.announce(ctx, session.ID, domain.RoleNone, now)
	s.emit(ctx, audit.Event{
		Category:     audit.CategorySecurity,
		Action:       audit.ActionLogout,
		Timestamp:    now,
		UserID:       session.UserID.String(),
		SessionID:    session.ID.String(),
		PreviousRole: previous.String(),
		RequestID:    requestcontext.RequestID(ctx),
	})
	s.logger.InfoContext(ctx, "session closed", "session_id", session.ID.String())
	return nil
}

// SwitchRole lets an administrator navigate as another role. Switching to
// the role already active announces nothing.
func (s *Service) SwitchRole(ctx context.Context, sessionID domain.SessionID, role domain.Role) (_ *models.Session, err error) {
	ctx, span := s.startSpan(ctx, "session.SwitchRole",
		attribute.String("session.id", sessionID.String()),
		attribute.String("session.role", role.String()),
	)
	defer func() { endSpan(span, err) }()

	if role.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "role is required")
	}
	session, err := s.Current(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.BaseRole != domain.RoleAdmin {
		s.logger.WarnContext(ctx, "role switch denied",
			"session_id", session.ID.String(),
			"base_role", session.BaseRole.String(),
			"requested_role", role.String(),
		)
		return nil, dErrors.New(dErrors.CodeForbidden, "only administrators may switch roles")
	}
	return s.setActiveRole(ctx, session.ID, role, audit.ActionRoleSwitched)
}

// RestoreRole returns the session to its base role.
func (s *Service) RestoreRole(ctx context.Context, sessionID domain.SessionID) (_ *models.Session, err error) {
	ctx, span := s.startSpan(ctx, "session.RestoreRole", attribute.String("session.id", sessionID.String()))
	defer func() { endSpan(span, err) }()

	session, err := s.Current(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.setActiveRole(ctx, session.ID, session.BaseRole, audit.ActionRoleRestored)
}

// setActiveRole switches the active role inside the store's update, so a
// logout that commits first wins and the switch reports the revocation.
func (s *Service) setActiveRole(ctx context.Context, sessionID domain.SessionID, role domain.Role, action audit.Action) (*models.Session, error) {
	var previous domain.Role
	changed := false
	session, err := s.sessions.UpdateFunc(ctx, sessionID, func(cur *models.Session) error {
		if !cur.IsActive() {
			return errSessionRevoked
		}
		if cur.ActiveRole == role {
			return nil
		}
		previous = cur.ActiveRole
		cur.ActiveRole = role
		changed = true
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, errSessionRevoked):
			return nil, dErrors.New(dErrors.CodeUnauthorized, "session revoked")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "session not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update session role")
	}
	if !changed {
		return session, nil
	}

	now := requestcontext.Now(ctx)
	s.announce(ctx, session.ID, role, now)
	s.emit(ctx, audit.Event{
		Category:     audit.CategorySecurity,
		Action:       action,
		Timestamp:    now,
		UserID:       session.UserID.String(),
		SessionID:    session.ID.String(),
		Role:         role.String(),
		PreviousRole: previous.String(),
		RequestID:    requestcontext.RequestID(ctx),
	})
	return session, nil
}
