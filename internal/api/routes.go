package api

import (
	"net/http"

	"github.com/Llorsque/monitor-dashboard-CO/internal/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

var defaultOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// SetupRoutes configures all routes. Everything under /api is scoped to the
// browser session carried by the session cookie.
func SetupRoutes(cfg *config.Config, h *Handlers, hc *HealthChecker, metrics http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Server-Identity", "monitor-dashboard-v1")
			next.ServeHTTP(w, req)
		})
	})

	origins := cfg.CORS.AllowedOrigins
	if len(origins) == 0 {
		origins = defaultOrigins
	}
	// Credentials are needed for the session cookie.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", hc.HandleHealth)
	r.Get("/health/live", hc.HandleLiveness)
	r.Get("/health/ready", hc.HandleReadiness)
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(SessionCookie(cfg.Session.CookieName, cfg.Session.TTL()))

		// Datasets
		r.Get("/datasets", h.ListDatasets)
		r.Post("/datasets/{slot}", h.UploadDataset)
		r.Delete("/datasets/{slot}", h.ClearDataset)
		r.Get("/datasets/{slot}/validation", h.GetValidation)
		r.Get("/uploads", h.ListUploads)

		// KPIs
		r.Get("/kpis", h.GetKPIs)
		r.Get("/kpis/config", h.GetKPIConfig)
		r.Get("/report.txt", h.GetReport)

		// Clubs
		r.Get("/clubs", h.SearchClubs)
		r.Get("/clubs/{name}", h.GetClub)
		r.Get("/compare", h.CompareClubs)

		r.Get("/insights", h.GetInsights)

		// Exports
		r.Get("/export/sanitized.csv", h.DownloadSanitized)
		r.Post("/export/publish", h.Publish)
	})

	return r
}
