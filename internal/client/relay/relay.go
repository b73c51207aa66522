// Package relay sends a transcript to the coach, remote backend first and the
// direct model tier second.
package relay

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/guidr-app/guidr/backend/internal/metrics"
	"github.com/guidr-app/guidr/backend/internal/model/chat"
)

// ErrConnectivity is reported when no tier produced a reply.
var ErrConnectivity = errors.New("Connectivity lost. Please check your internet connection.")

// RemoteCaller invokes the coachChat callable.
type RemoteCaller interface {
	CoachChat(ctx context.Context, recipeID string, history []chat.Message, isNewSession bool) (string, error)
}

// LocalCoach answers without the backend.
type LocalCoach interface {
	Reply(ctx context.Context, recipeID string, history []chat.Message) (string, error)
}

// Relay chooses the tier for each send.
type Relay struct {
	remote RemoteCaller
	local  LocalCoach
	log    zerolog.Logger
}

// New creates a Relay. Either tier may be nil.
func New(remote RemoteCaller, local LocalCoach, log zerolog.Logger) *Relay {
	return &Relay{
		remote: remote,
		local:  local,
		log:    log.With().Str("component", "relay").Logger(),
	}
}

// Send returns the coach reply to history, whose last entry is the new user turn.
func (r *Relay) Send(ctx context.Context, recipeID string, history []chat.Message, isNewSession bool) (string, error) {
	var remoteErr error
	if r.remote != nil {
		reply, err := r.remote.CoachChat(ctx, recipeID, history, isNewSession)
		if err == nil {
			metrics.RelayAttempts.WithLabelValues("remote", "ok").Inc()
			return reply, nil
		}
		metrics.RelayAttempts.WithLabelValues("remote", "error").Inc()
		r.log.Warn().Err(err).Str("recipe_id", recipeID).Msg("remote coach failed")
		remoteErr = err
	}

	if r.local == nil {
		return "", &connectivityError{cause: remoteErr}
	}

	reply, err := r.local.Reply(ctx, recipeID, history)
	if err != nil {
		metrics.RelayAttempts.WithLabelValues("local", "error").Inc()
		r.log.Error().Err(err).Str("recipe_id", recipeID).Msg("local coach failed")
		return "", &connectivityError{cause: errors.Join(remoteErr, err)}
	}
	metrics.RelayAttempts.WithLabelValues("local", "ok").Inc()
	return reply, nil
}

// connectivityError reads as ErrConnectivity but keeps the tier failures.
type connectivityError struct {
	cause error
}

func (e *connectivityError) Error() string { return ErrConnectivity.Error() }

func (e *connectivityError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrConnectivity}
	}
	return []error{ErrConnectivity, e.cause}
}
