package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"navshell/internal/navigation"
	"navshell/internal/session/models"
	"navshell/internal/session/service"
	"navshell/pkg/domain"
	dErrors "navshell/pkg/domain-errors"
	"navshell/pkg/platform/httputil"
	"navshell/pkg/requestcontext"
)

// Service defines the session operations the handler needs.
type Service interface {
	Login(ctx context.Context, req models.LoginRequest) (*service.LoginResult, error)
	Logout(ctx context.Context, sessionID domain.SessionID) error
	SwitchRole(ctx context.Context, sessionID domain.SessionID, role domain.Role) (*models.Session, error)
	RestoreRole(ctx context.Context, sessionID domain.SessionID) (*models.Session, error)
	Current(ctx context.Context, sessionID domain.SessionID) (*models.Session, error)
}

// MainResolver names the main destination a role lands on.
type MainResolver interface {
	MainFor(role domain.Role) navigation.MainDestination
}

// Handler serves the /auth endpoints.
type Handler struct {
	sessions    Service
	mains       MainResolver
	logger      *slog.Logger
	requireAuth func(http.Handler) http.Handler
	loginGuard  func(http.Handler) http.Handler
	tokenTTL    time.Duration
}

func New(
	sessions Service,
	mains MainResolver,
	logger *slog.Logger,
	requireAuth func(http.Handler) http.Handler,
	tokenTTL time.Duration,
	loginGuard func(http.Handler) http.Handler) *Handler {
	return &Handler{
		sessions:    sessions,
		mains:       mains,
		logger:      logger,
		requireAuth: requireAuth,
		loginGuard:  loginGuard,
		tokenTTL:    tokenTTL,
	}
}

// Register registers the session routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.With(h.loginGuard).Post("/auth/login", h.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/auth/logout", h.handleLogout)
		r.Get("/auth/session", h.handleSession)
		r.Post("/auth/role", h.handleSwitchRole)
		r.Delete("/auth/role", h.handleRestoreRole)
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid login request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	res, err := h.sessions.Login(ctx, req)
	if err != nil {
		h.writeServiceError(ctx, w, "login", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.LoginResponse{
		AccessToken:     res.AccessToken,
		TokenType:       "Bearer",
		ExpiresIn:       int(h.tokenTTL.Seconds()),
		SessionID:       res.Session.ID.String(),
		Role:            res.Session.ActiveRole.String(),
		MainDestination: h.mains.MainFor(res.Session.ActiveRole).Route,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.sessions.Logout(ctx, requestcontext.SessionID(ctx)); err != nil {
		h.writeServiceError(ctx, w, "logout", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, err := h.sessions.Current(ctx, requestcontext.SessionID(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "session lookup", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.toResponse(session))
}

func (h *Handler) handleSwitchRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.SwitchRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	session, err := h.sessions.SwitchRole(ctx, requestcontext.SessionID(ctx), role)
	if err != nil {
		h.writeServiceError(ctx, w, "role switch", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.toResponse(session))
}

func (h *Handler) handleRestoreRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, err := h.sessions.RestoreRole(ctx, requestcontext.SessionID(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "role restore", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.toResponse(session))
}

func (h *Handler) toResponse(session *models.Session) models.SessionResponse {
	return models.SessionResponse{
		SessionID:       session.ID.String(),
		UserID:          session.UserID.String(),
		BaseRole:        session.BaseRole.String(),
		ActiveRole:      session.ActiveRole.String(),
		Impersonating:   session.Impersonating(),
		CreatedAt:       session.CreatedAt,
		MainDestination: h.mains.MainFor(session.ActiveRole).Route,
	}
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, op+" failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
