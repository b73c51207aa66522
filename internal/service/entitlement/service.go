// Package entitlement answers whether a user may enter premium recipes.
package entitlement

import (
	"context"
	"errors"
	"slices"

	"github.com/rs/zerolog"

	"github.com/guidr-app/guidr/backend/internal/metrics"
	"github.com/guidr-app/guidr/backend/internal/model/recipe"
)

// Premium is the entitlement that unlocks premium recipes.
const Premium = "premium"

// ErrPaywall is returned when a premium recipe is entered without Premium.
var ErrPaywall = errors.New("premium subscription required")

// Status is a point-in-time subscription snapshot.
type Status struct {
	IsPro        bool     `json:"isPro"`
	Entitlements []string `json:"entitlements"`
}

// Provider lists the active entitlement identifiers of a user.
type Provider interface {
	ActiveEntitlements(ctx context.Context, userID string) ([]string, error)
}

// Checker evaluates subscription status against a billing provider.
type Checker struct {
	provider Provider
	log      zerolog.Logger
}

// NewChecker creates a Checker. A nil provider treats everyone as free.
func NewChecker(provider Provider, log zerolog.Logger) *Checker {
	return &Checker{
		provider: provider,
		log:      log.With().Str("component", "entitlement").Logger(),
	}
}

// GetStatus never fails: provider errors are logged and reported as not entitled.
func (c *Checker) GetStatus(ctx context.Context, userID string) Status {
	if c.provider == nil {
		metrics.EntitlementLookups.WithLabelValues("free").Inc()
		return Status{Entitlements: []string{}}
	}

	active, err := c.provider.ActiveEntitlements(ctx, userID)
	if err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Msg("subscription status lookup failed")
		metrics.EntitlementLookups.WithLabelValues("error").Inc()
		return Status{Entitlements: []string{}}
	}

	if active == nil {
		active = []string{}
	}
	status := Status{IsPro: slices.Contains(active, Premium), Entitlements: active}
	if status.IsPro {
		metrics.EntitlementLookups.WithLabelValues("pro").Inc()
	} else {
		metrics.EntitlementLookups.WithLabelValues("free").Inc()
	}
	return status
}

// Authorize gates entry into r. Free recipes never consult the provider.
func (c *Checker) Authorize(ctx context.Context, userID string, r recipe.Recipe) error {
	if !r.IsPremium {
		return nil
	}
	if !c.GetStatus(ctx, userID).IsPro {
		return ErrPaywall
	}
	return nil
}
