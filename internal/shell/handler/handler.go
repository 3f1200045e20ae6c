package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"navshell/internal/navigation"
	"navshell/internal/session/models"
	"navshell/internal/shell"
	"navshell/pkg/domain"
	dErrors "navshell/pkg/domain-errors"
	"navshell/pkg/platform/httputil"
	"navshell/pkg/requestcontext"
)

// Sessions yields the authoritative state of the caller's session.
type Sessions interface {
	Current(ctx context.Context, sessionID domain.SessionID) (*models.Session, error)
}

// Navigator hands out per-session registries.
type Navigator interface {
	Registry(sessionID domain.SessionID, role domain.Role) (*navigation.Registry, error)
	Breakpoint() int
}

// Handler serves the /nav endpoints.
type Handler struct {
	sessions    Sessions
	navigator   Navigator
	logger      *slog.Logger
	requireAuth func(http.Handler) http.Handler
}

func New(sessions Sessions, navigator Navigator, logger *slog.Logger, requireAuth func(http.Handler) http.Handler) *Handler {
	return &Handler{
		sessions:    sessions,
		navigator:   navigator,
		logger:      logger,
		requireAuth: requireAuth,
	}
}

// Register registers the navigation routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Get("/nav/destinations", h.handleDestinations)
		r.Get("/nav/main", h.handleMain)
		r.Get("/nav/layout", h.handleLayout)
		r.Get("/nav/stream", h.handleStream)
	})
}

// registry loads the session and switches its registry to the session's
// active role, so reads never lag behind the role bus. A logout that lands
// between the two steps ends the request as unauthorized.
func (h *Handler) registry(w http.ResponseWriter, r *http.Request) (*navigation.Registry, bool) {
	ctx := r.Context()
	session, err := h.sessions.Current(ctx, requestcontext.SessionID(ctx))
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "failed to load session",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return nil, false
	}
	reg, err := h.navigator.Registry(session.ID, session.CurrentRole())
	if err != nil {
		if errors.Is(err, shell.ErrSessionEnded) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "session ended"))
			return nil, false
		}
		h.logger.ErrorContext(ctx, "failed to attach navigation",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to attach navigation"))
		return nil, false
	}
	return reg, true
}

func (h *Handler) handleDestinations(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.registry(w, r)
	if !ok {
		return
	}
	snap := reg.Snapshot()
	httputil.WriteJSON(w, http.StatusOK, DestinationsResponse{
		Role:         snap.Role.String(),
		Revision:     snap.Revision,
		Destinations: toDestinations(snap.Destinations),
	})
}

func (h *Handler) handleMain(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.registry(w, r)
	if !ok {
		return
	}
	main := reg.ResolveMainDestination(reg.Role())
	httputil.WriteJSON(w, http.StatusOK, MainResponse{
		Route:      main.Route,
		FeatureID:  main.FeatureID,
		Resolution: string(main.Resolution),
	})
}

func (h *Handler) handleLayout(w http.ResponseWriter, r *http.Request) {
	width, err := viewportWidth(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	reg, ok := h.registry(w, r)
	if !ok {
		return
	}
	snap := reg.Snapshot()
	httputil.WriteJSON(w, http.StatusOK,
		toLayout(snap, width, h.navigator.Breakpoint(), reg.ResolveMainDestination(snap.Role)))
}

// handleStream pushes a layout event for every snapshot the session's
// registry publishes, starting with the current one. The stream ends when
// the client goes away or the session logs out.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "streaming unsupported"))
		return
	}
	width, err := viewportWidth(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	reg, ok := h.registry(w, r)
	if !ok {
		return
	}

	sub := reg.Subscribe()
	defer sub.Unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, open := <-sub.C():
			if !open {
				fmt.Fprint(w, "event: end\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			payload, err := json.Marshal(toLayout(snap, width, h.navigator.Breakpoint(), reg.ResolveMainDestination(snap.Role)))
			if err != nil {
				h.logger.ErrorContext(ctx, "failed to encode layout", "error", err)
				return
			}
			fmt.Fprintf(w, "id: %d\nevent: layout\ndata: %s\n\n", snap.Revision, payload)
			flusher.Flush()
		}
	}
}
