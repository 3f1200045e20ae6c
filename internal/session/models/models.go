package models

import (
	"strings"
	"time"

	"navshell/pkg/domain"
)

// User is an account in the directory. Role is the account's own role;
// only ADMIN accounts may act under another role.
type User struct {
	ID           domain.UserID
	Email        string
	DisplayName  string
	PasswordHash []byte
	Role         domain.Role
	CreatedAt    time.Time
}

// NormalizeEmail is the lookup form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Session is one authenticated client. ActiveRole differs from BaseRole
// while an admin impersonates another role.
type Session struct {
	ID         domain.SessionID
	UserID     domain.UserID
	BaseRole   domain.Role
	ActiveRole domain.Role
	CreatedAt  time.Time
	RevokedAt  *time.Time
}

// IsActive reports whether the session has not been revoked.
func (s *Session) IsActive() bool {
	return s.RevokedAt == nil
}

// CurrentRole is the role the session navigates as. Revoked sessions have
// no role.
func (s *Session) CurrentRole() domain.Role {
	if !s.IsActive() {
		return domain.RoleNone
	}
	return s.ActiveRole
}

// Impersonating reports whether an admin is acting under another role.
func (s *Session) Impersonating() bool {
	return s.ActiveRole != s.BaseRole
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims and lowercases the email.
func (r *LoginRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
}

// SwitchRoleRequest is the body of POST /auth/role.
type SwitchRoleRequest struct {
	Role string `json:"role"`
}

// LoginResponse is returned by POST /auth/login.
type LoginResponse struct {
	AccessToken     string `json:"access_token"`
	TokenType       string `json:"token_type"`
	ExpiresIn       int    `json:"expires_in"`
	SessionID       string `json:"session_id"`
	Role            string `json:"role"`
	MainDestination string `json:"main_destination,omitempty"`
}

// SessionResponse describes the caller's session.
type SessionResponse struct {
	SessionID       string    `json:"session_id"`
	UserID          string    `json:"user_id"`
	BaseRole        string    `json:"base_role"`
	ActiveRole      string    `json:"active_role"`
	Impersonating   bool      `json:"impersonating"`
	CreatedAt       time.Time `json:"created_at"`
	MainDestination string    `json:"main_destination,omitempty"`
}
