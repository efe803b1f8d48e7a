package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"supporterboard/internal/http/handlers"
	"supporterboard/internal/infra"
	"supporterboard/internal/middleware"
)

// NewRouter mounts the JSON API under /v1 and the three pages at the root.
// lookup may be nil when no GeoIP database is configured.
func NewRouter(app *handlers.App, cfg *infra.Config, lookup middleware.CountryLookup) (http.Handler, error) {
	csrfKey, err := cfg.CSRFSecret()
	if err != nil {
		return nil, err
	}
	limit := middleware.RateLimit(cfg.RateLimitPerMin, time.Minute)

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.I18N(cfg.DefaultLocale, lookup),
	)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)

		r.Get("/overlay", app.OverlayJSON)
		r.Get("/overlay/stream", app.OverlayStream)
		r.Get("/settings", app.SettingsGet)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthJWT(cfg.JWTSecret, app.Unauthorized))
			r.Get("/supporters", app.SupportersList)
			r.With(limit).Post("/supporters", app.SupportersCreate)
			r.With(limit).Put("/supporters/{id}", app.SupportersUpdate)
			r.With(limit).Delete("/supporters/{id}", app.SupportersDelete)
			r.With(limit).Patch("/settings", app.SettingsPatch)
		})
	})

	r.Get("/", app.Landing)
	r.Get("/overlay", app.OverlayPage)

	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF(csrfKey, cfg.SecureCookies, app.Logger))

		if cfg.AuthEnabled() {
			r.Get("/admin/login", app.LoginPage)
			r.With(limit).Post("/admin/login", app.LoginSubmit)
			r.Post("/admin/logout", app.Logout)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthJWT(cfg.JWTSecret, app.LoginRedirect))
			r.Get("/admin", app.AdminPage)
			r.Post("/admin/locale", app.AdminLocale)
			r.Post("/admin/cancel", app.AdminCancel)
			r.Post("/admin/settings", app.AdminSettings)
			r.With(limit).Post("/admin/supporters", app.AdminSave)
			r.Post("/admin/supporters/{id}/edit", app.AdminEdit)
			r.With(limit).Post("/admin/supporters/{id}/delete", app.AdminDelete)
		})
	})

	return r, nil
}
