package entitlement

import "context"

// StaticProvider grants a fixed entitlement set per user.
type StaticProvider struct {
	grants map[string][]string
}

// NewStaticProvider creates a provider from user id to entitlements.
func NewStaticProvider(grants map[string][]string) *StaticProvider {
	copied := make(map[string][]string, len(grants))
	for user, ents := range grants {
		copied[user] = append([]string(nil), ents...)
	}
	return &StaticProvider{grants: copied}
}

// PremiumUsers grants Premium to each listed user.
func PremiumUsers(userIDs ...string) *StaticProvider {
	grants := make(map[string][]string, len(userIDs))
	for _, id := range userIDs {
		grants[id] = []string{Premium}
	}
	return NewStaticProvider(grants)
}

// ActiveEntitlements returns the configured grants.
func (p *StaticProvider) ActiveEntitlements(_ context.Context, userID string) ([]string, error) {
	return append([]string(nil), p.grants[userID]...), nil
}
