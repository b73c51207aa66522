// Package remote calls the backend callables over HTTP.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/guidr-app/guidr/backend/internal/model/chat"
	"github.com/guidr-app/guidr/backend/internal/model/usercontext"
	"github.com/guidr-app/guidr/backend/pkg/callable"
)

// Client is a callable client bound to one backend and identity.
type Client struct {
	http *resty.Client
}

// New creates a client. idToken is sent as a bearer token when non-empty.
func New(baseURL, idToken string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	if idToken != "" {
		c.SetAuthToken(idToken)
	}
	return &Client{http: c}
}

// call posts data to the named callable and decodes the result into out.
// Typed failures come back as *callable.Error.
func call[Req, Res any](ctx context.Context, c *Client, name string, data Req) (Res, error) {
	var (
		out  callable.Response[Res]
		zero Res
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(callable.Request[Req]{Data: data}).
		SetResult(&out).
		SetError(&out).
		Post(callable.Path(name))
	if err != nil {
		return zero, fmt.Errorf("%s request failed: %w", name, err)
	}
	if out.Error != nil {
		return zero, out.Error
	}
	if resp.StatusCode() != http.StatusOK {
		return zero, fmt.Errorf("%s returned %d", name, resp.StatusCode())
	}
	return out.Result, nil
}

// CoachChat invokes the coachChat callable.
func (c *Client) CoachChat(ctx context.Context, recipeID string, history []chat.Message, isNewSession bool) (string, error) {
	res, err := call[callable.CoachChatRequest, callable.CoachChatResult](ctx, c, callable.CoachChat, callable.CoachChatRequest{
		RecipeID:       recipeID,
		MessageHistory: chat.ToWire(history),
		IsNewSession:   isNewSession,
	})
	if err != nil {
		return "", err
	}
	return res.Response, nil
}

// SaveUserContext invokes the saveUserContext callable and reports its success flag.
func (c *Client) SaveUserContext(ctx context.Context, uc usercontext.UserContext) (bool, error) {
	res, err := call[callable.SaveUserContextRequest, callable.SaveUserContextResult](ctx, c, callable.SaveUserContext, callable.SaveUserContextRequest{
		QuarterlyGoal:   uc.QuarterlyGoal,
		WeeklySentiment: uc.WeeklySentiment,
	})
	if err != nil {
		return false, err
	}
	return res.Success, nil
}
