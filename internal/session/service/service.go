// Package service is the session state source: it authenticates users,
// tracks the role each session navigates as, and announces every role
// change on the role bus.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"navshell/internal/audit"
	"navshell/internal/platform/metrics"
	"navshell/internal/session/bus"
	"navshell/internal/session/models"
	"navshell/pkg/domain"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id domain.UserID) (*models.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id domain.SessionID) (*models.Session, error)
	// UpdateFunc applies fn atomically; an error from fn aborts the write.
	UpdateFunc(ctx context.Context, id domain.SessionID, fn func(*models.Session) error) (*models.Session, error)
}

// RoleBus receives one RoleChange per effective role transition.
type RoleBus interface {
	Publish(ctx context.Context, change bus.RoleChange) error
}

type TokenIssuer interface {
	GenerateAccessToken(userID domain.UserID, sessionID domain.SessionID, role domain.Role, expiresIn time.Duration) (string, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

const defaultTokenTTL = 15 * time.Minute

type Service struct {
	users    UserStore
	sessions SessionStore
	roles    RoleBus
	tokens   TokenIssuer
	auditor  AuditPublisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer
	TokenTTL time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.TokenTTL = ttl
		}
	}
}

func New(users UserStore, sessions SessionStore, roles RoleBus, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		users:    users,
		sessions: sessions,
		roles:    roles,
		tokens:   tokens,
		logger:   slog.Default(),
		tracer:   otel.Tracer("navshell/session"),
		TokenTTL: defaultTokenTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

// announce publishes the session's role. Failures are logged: the session
// state is already committed and the next change carries the full role.
func (s *Service) announce(ctx context.Context, sessionID domain.SessionID, role domain.Role, at time.Time) {
	if err := s.roles.Publish(ctx, bus.RoleChange{SessionID: sessionID, Role: role, At: at}); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish role change",
			"session_id", sessionID.String(),
			"role", role.String(),
			"error", err,
		)
		return
	}
	if s.metrics != nil {
		s.metrics.IncrementRoleChange(role.String())
	}
}
