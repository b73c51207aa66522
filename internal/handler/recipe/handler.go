// Package recipe serves the read-only recipe catalog.
package recipe

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/guidr-app/guidr/backend/internal/model/recipe"
	"github.com/guidr-app/guidr/backend/pkg/utils"
)

// Handler lists recipes.
type Handler struct {
	recipes recipe.Store
}

// New creates a recipe handler.
func New(recipes recipe.Store) *Handler {
	return &Handler{recipes: recipes}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/recipes", h.handleListRecipes)
	r.Get("/recipes/{recipeID}", h.handleGetRecipe)
}

// handleListRecipes lists the catalog. System prompts are never serialised.
func (h *Handler) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.recipes.List())
}

func (h *Handler) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.recipes.FindByID(chi.URLParam(r, "recipeID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "recipe not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, rec)
}
