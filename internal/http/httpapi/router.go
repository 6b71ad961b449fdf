package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"studio/internal/http/handlers"
	"studio/internal/infra"
	"studio/internal/infra/geoip"
	"studio/internal/middleware"
)

// NewRouter assembles the HTTP surface: public health and model discovery,
// everything else behind JWT auth.
func NewRouter(cfg *infra.Config, app *handlers.App, countries geoip.CountryResolver, logger infra.Logger) http.Handler {
	r := chi.NewRouter()

	var lookup middleware.CountryLookup
	if countries != nil {
		lookup = countries.CountryCode
	}

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(logger),
		middleware.CORS(cfg.CORSOrigins),
		middleware.I18N(cfg.DefaultLocale, lookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/models", app.ModelsList)

	r.Group(func(r chi.Router) {
		r.Use(
			middleware.AuthJWT(cfg.JWTSecret),
			middleware.RateLimit(cfg.RateLimitPerMin, time.Minute),
		)

		r.Route("/v1/graphics", func(r chi.Router) {
			r.Post("/", app.GraphicsGenerate)
			r.Get("/", app.GraphicsList)
			r.Get("/{id}", app.GraphicsGet)
			r.Post("/{id}/refine", app.GraphicsRefine)
		})

		r.Route("/v1/catalog", func(r chi.Router) {
			r.Get("/", app.CatalogList)
			r.Post("/", app.CatalogPublish)
			r.Post("/{id}/vote", app.CatalogVote)
			r.Delete("/{id}/vote", app.CatalogUnvote)
		})

		r.Route("/v1/settings", func(r chi.Router) {
			r.Get("/", app.SettingsGet)
			r.Put("/", app.SettingsUpdate)
		})

		r.Route("/v1/profile", func(r chi.Router) {
			r.Get("/", app.ProfileGet)
			r.Post("/photo", app.ProfilePhotoUpload)
		})

		r.Route("/v1/teams", func(r chi.Router) {
			r.Post("/", app.TeamsCreate)
			r.Get("/", app.TeamsList)
			r.Post("/{id}/members", app.TeamsAddMember)
			r.Delete("/{id}/members/{user_id}", app.TeamsRemoveMember)
		})
	})

	return r
}
