package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"adstudio/internal/http/handlers"
	"adstudio/internal/middleware"
)

// NewRouter wires every route of the API. lookup may be nil when no GeoIP
// database is configured.
func NewRouter(app *handlers.App, lookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		middleware.RequestID,
		chimw.Recoverer,
		middleware.CORS(app.Config.CORSAllowedOrigins),
		middleware.I18N(app.Config.DefaultLocale, lookup),
		middleware.Logger(app.Logger),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute))

		r.Route("/v1/wizards", func(r chi.Router) {
			r.Post("/", app.CreateWizard)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", app.GetWizard)
				r.Delete("/", app.DeleteWizard)
				r.Patch("/inputs", app.PatchInputs)
				r.Post("/images", app.UploadImages)
				r.Put("/images/order", app.ReorderImages)
				r.Delete("/images/{index}", app.DeleteImage)
				r.Post("/steps/next", app.StepNext)
				r.Post("/steps/back", app.StepBack)
				r.Post("/actions/{action}", app.StartAction)
				r.Post("/angles/select", app.SelectAngle)
				r.Patch("/copy", app.EditCopy)
				r.Post("/change-angle", app.ChangeAngle)
				r.Post("/back-to-copy", app.BackToCopy)
				r.Post("/reset", app.Reset)
				r.Get("/export", app.Export)
			})
		})

		r.Get("/v1/metrics/generations", app.GenerationMetrics)
	})

	return r
}
