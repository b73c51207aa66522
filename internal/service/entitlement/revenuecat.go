package entitlement

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
)

// RevenueCatProvider reads entitlements from the RevenueCat subscribers API.
type RevenueCatProvider struct {
	client *resty.Client
	now    func() time.Time
}

// NewRevenueCatProvider creates a provider using a RevenueCat secret key.
func NewRevenueCatProvider(baseURL, apiKey string, timeout time.Duration) *RevenueCatProvider {
	c := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &RevenueCatProvider{client: c, now: time.Now}
}

type subscriberResponse struct {
	Subscriber struct {
		Entitlements map[string]struct {
			ExpiresDate *time.Time `json:"expires_date"`
		} `json:"entitlements"`
	} `json:"subscriber"`
}

// ActiveEntitlements returns entitlements that never expire or expire in the future.
func (p *RevenueCatProvider) ActiveEntitlements(ctx context.Context, userID string) ([]string, error) {
	var out subscriberResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/v1/subscribers/" + url.PathEscape(userID))
	if err != nil {
		return nil, fmt.Errorf("revenuecat request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("revenuecat returned %d", resp.StatusCode())
	}

	now := p.now()
	active := make([]string, 0, len(out.Subscriber.Entitlements))
	for id, ent := range out.Subscriber.Entitlements {
		if ent.ExpiresDate == nil || ent.ExpiresDate.After(now) {
			active = append(active, id)
		}
	}
	sort.Strings(active)
	return active, nil
}
