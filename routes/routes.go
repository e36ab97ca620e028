// Package routes assembles the chi router.
package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nutricalc/nutricalc-backend/config"
	"github.com/nutricalc/nutricalc-backend/controllers"
	"github.com/nutricalc/nutricalc-backend/middleware"
)

// SetupRouter wires every endpoint onto a chi mux.
func SetupRouter(cfg config.Config, api *controllers.API) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// CORS Configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public
	r.Post("/auth/login", api.Login)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Authenticated API
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(api.Gate))

		r.Get("/profile", api.GetProfile)
		r.Put("/profile", api.PutProfile)

		r.Get("/log", api.GetLog)
		r.Post("/log/search", api.SearchAndLog)
		r.Delete("/log/{entry_id}", api.DeleteLogEntry)
		r.Get("/log/totals", api.GetTotals)

		r.Get("/foods/suggest", api.SuggestFoods)

		r.Get("/state", api.ExportState)
		r.Post("/state/import", api.ImportState)
	})

	// Server-Sent Events for catalog verification updates
	r.Get("/sse/catalog", CatalogSSE(api.Worker))

	return r
}
