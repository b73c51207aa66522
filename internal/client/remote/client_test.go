package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guidr-app/guidr/backend/internal/model/chat"
	"github.com/guidr-app/guidr/backend/internal/model/usercontext"
	"github.com/guidr-app/guidr/backend/pkg/callable"
)

func TestCoachChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/callable/coachChat", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var req callable.Request[callable.CoachChatRequest]
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "weekly_review_v1", req.Data.RecipeID)
		assert.True(t, req.Data.IsNewSession)
		assert.Equal(t, []chat.Wire{{Role: chat.User, Content: "Hi"}}, req.Data.MessageHistory)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":{"response":"Hello!"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", 5*time.Second)
	reply, err := c.CoachChat(context.Background(), "weekly_review_v1",
		[]chat.Message{{Role: chat.User, Content: "Hi"}}, true)
	require.NoError(t, err)
	assert.Equal(t, "Hello!", reply)
}

func TestCoachChatTypedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"status":"NOT_FOUND","message":"Recipe prompt not found."}}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", 5*time.Second).CoachChat(context.Background(), "x", nil, false)
	require.Error(t, err)
	var ce *callable.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, callable.NotFound, ce.Kind)
	assert.Equal(t, "Recipe prompt not found.", ce.Message)
}

func TestCoachChatUntypedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("bad gateway"))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", 5*time.Second).CoachChat(context.Background(), "x", nil, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	var ce *callable.Error
	assert.False(t, errors.As(err, &ce))
}

func TestCoachChatUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, "", time.Second).CoachChat(context.Background(), "x", nil, false)
	assert.Error(t, err)
}

func TestSaveUserContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req callable.Request[callable.SaveUserContextRequest]
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Ship", req.Data.QuarterlyGoal)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":{"success":true}}`))
	}))
	defer srv.Close()

	ok, err := New(srv.URL, "tok", 5*time.Second).SaveUserContext(context.Background(),
		usercontext.UserContext{QuarterlyGoal: "Ship", WeeklySentiment: "ok"})
	require.NoError(t, err)
	assert.True(t, ok)
}
