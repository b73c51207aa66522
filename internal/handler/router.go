package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/guidr-app/guidr/backend/internal/auth"
	"github.com/guidr-app/guidr/backend/internal/handler/coach"
	"github.com/guidr-app/guidr/backend/internal/handler/recipe"
	middlewarePkg "github.com/guidr-app/guidr/backend/internal/middleware"
	recipeModel "github.com/guidr-app/guidr/backend/internal/model/recipe"
	"github.com/guidr-app/guidr/backend/pkg/utils"
)

// Deps are the services the router wires to routes.
type Deps struct {
	Recipes     recipeModel.Store
	Coach       coach.Service
	Verifier    auth.Verifier
	CORSOrigins []string
	Log         zerolog.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(deps.Log))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(deps.CORSOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	recipeHandler := recipe.New(deps.Recipes)
	coachHandler := coach.New(deps.Coach, deps.Log)

	r.Route("/api", func(api chi.Router) {
		recipeHandler.RegisterRoutes(api)

		api.Group(func(authed chi.Router) {
			authed.Use(auth.Middleware(deps.Verifier))
			coachHandler.RegisterRoutes(authed)
		})
	})

	return r
}

// requestLogger logs one line per request through zerolog.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	log = log.With().Str("component", "http").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}
