package recipe

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guidr-app/guidr/backend/internal/model/recipe"
)

func setupRouter() *chi.Mux {
	r := chi.NewRouter()
	New(recipe.NewMemoryStore(recipe.Seed())).RegisterRoutes(r)
	return r
}

func TestListRecipes(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/recipes", nil)
	resp := httptest.NewRecorder()
	setupRouter().ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotContains(t, resp.Body.String(), "systemPrompt")
	assert.NotContains(t, resp.Body.String(), "systems-oriented productivity coach")

	var got []map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	require.Len(t, got, 3)
}

func TestGetRecipe(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/recipes/decision_matrix_v1", nil)
	resp := httptest.NewRecorder()
	setupRouter().ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	req = httptest.NewRequest(http.MethodGet, "/recipes/nope", nil)
	resp = httptest.NewRecorder()
	setupRouter().ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
