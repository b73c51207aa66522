package entitlement

import "github.com/guidr-app/guidr/backend/internal/config"

// NewProvider builds the billing provider selected by cfg. It returns nil for
// BillingNone, which the Checker treats as everyone on the free tier.
func NewProvider(cfg config.BillingConfig) Provider {
	switch cfg.Provider {
	case config.BillingRevenueCat:
		return NewRevenueCatProvider(cfg.RevenueCatBaseURL, cfg.RevenueCatAPIKey, cfg.RequestTimeout)
	case config.BillingStatic:
		return PremiumUsers(cfg.StaticPremiumUsers...)
	default:
		return nil
	}
}
