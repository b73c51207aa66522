// Package usercontext keeps the user's coaching context on the device and
// mirrors it to the backend when one is configured.
package usercontext

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/guidr-app/guidr/backend/internal/client/localstate"
	model "github.com/guidr-app/guidr/backend/internal/model/usercontext"
)

// KV is the local storage the store writes through.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Remote saves the context on the backend.
type Remote interface {
	SaveUserContext(ctx context.Context, uc model.UserContext) (bool, error)
}

// Store is the client-side context store.
type Store struct {
	local  KV
	remote Remote
	log    zerolog.Logger
}

// New creates a Store. remote may be nil when no backend is configured.
func New(local KV, remote Remote, log zerolog.Logger) *Store {
	return &Store{
		local:  local,
		remote: remote,
		log:    log.With().Str("component", "context_store").Logger(),
	}
}

// Save writes uc to the backend when possible and always to local storage.
// Remote failures are logged and swallowed; only a local write failure is
// returned.
func (s *Store) Save(ctx context.Context, uc model.UserContext) (bool, error) {
	if s.remote != nil {
		ok, err := s.remote.SaveUserContext(ctx, uc)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Msg("remote context save failed, keeping local copy")
		case !ok:
			s.log.Warn().Msg("remote context save reported failure, keeping local copy")
		}
	}

	blob, err := json.Marshal(uc)
	if err != nil {
		return false, fmt.Errorf("encode user context: %w", err)
	}
	if err := s.local.Set(ctx, localstate.KeyUserContext, string(blob)); err != nil {
		return false, fmt.Errorf("save user context locally: %w", err)
	}
	return true, nil
}

// Load returns the locally stored context, or the zero value when none is stored.
func (s *Store) Load(ctx context.Context) (model.UserContext, error) {
	raw, ok, err := s.Raw(ctx)
	if err != nil || !ok {
		return model.UserContext{}, err
	}
	var uc model.UserContext
	if err := json.Unmarshal([]byte(raw), &uc); err != nil {
		return model.UserContext{}, fmt.Errorf("decode user context: %w", err)
	}
	return uc, nil
}

// Raw returns the stored JSON blob.
func (s *Store) Raw(ctx context.Context) (string, bool, error) {
	raw, ok, err := s.local.Get(ctx, localstate.KeyUserContext)
	if err != nil {
		return "", false, fmt.Errorf("load user context: %w", err)
	}
	return raw, ok, nil
}
