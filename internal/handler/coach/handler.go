// Package coach exposes the coach callables over HTTP.
package coach

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/guidr-app/guidr/backend/internal/auth"
	"github.com/guidr-app/guidr/backend/internal/metrics"
	"github.com/guidr-app/guidr/backend/internal/model/usercontext"
	"github.com/guidr-app/guidr/backend/pkg/callable"
)

// Service is the coach behaviour the handler needs.
type Service interface {
	CoachChat(ctx context.Context, userID string, req callable.CoachChatRequest) (string, error)
	SaveUserContext(ctx context.Context, userID string, uc usercontext.UserContext) error
}

// Handler serves the coach callables.
type Handler struct {
	svc Service
	log zerolog.Logger
}

// New creates a callable handler.
func New(svc Service, log zerolog.Logger) *Handler {
	return &Handler{
		svc: svc,
		log: log.With().Str("component", "callable").Logger(),
	}
}

// RegisterRoutes mounts the callables under /callable.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/callable/"+callable.CoachChat, h.handleCoachChat)
	r.Post("/callable/"+callable.SaveUserContext, h.handleSaveUserContext)
}

func (h *Handler) handleCoachChat(w http.ResponseWriter, r *http.Request) {
	var req callable.CoachChatRequest
	if err := callable.Decode(r, &req); err != nil {
		h.fail(w, callable.CoachChat, err)
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	reply, err := h.svc.CoachChat(r.Context(), userID, req)
	if err != nil {
		h.log.Info().Err(err).Str("user_id", userID).Stringer("request", req).Msg("coachChat rejected")
		h.fail(w, callable.CoachChat, err)
		return
	}

	metrics.CallableRequests.WithLabelValues(callable.CoachChat, "OK").Inc()
	callable.RespondResult(w, callable.CoachChatResult{Response: reply})
}

func (h *Handler) handleSaveUserContext(w http.ResponseWriter, r *http.Request) {
	var req callable.SaveUserContextRequest
	if err := callable.Decode(r, &req); err != nil {
		h.fail(w, callable.SaveUserContext, err)
		return
	}

	uc := usercontext.UserContext{QuarterlyGoal: req.QuarterlyGoal, WeeklySentiment: req.WeeklySentiment}
	if err := h.svc.SaveUserContext(r.Context(), auth.UserIDFromContext(r.Context()), uc); err != nil {
		h.fail(w, callable.SaveUserContext, err)
		return
	}

	metrics.CallableRequests.WithLabelValues(callable.SaveUserContext, "OK").Inc()
	callable.RespondResult(w, callable.SaveUserContextResult{Success: true})
}

func (h *Handler) fail(w http.ResponseWriter, name string, err error) {
	metrics.CallableRequests.WithLabelValues(name, string(callable.KindOf(err))).Inc()
	callable.RespondError(w, err)
}
