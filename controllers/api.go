// Package controllers holds the HTTP handlers. Handlers hold no state of
// their own: the store, catalog, lookup client and worker are injected so
// the same handlers run against Postgres in production and the in-memory
// store in tests.
package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nutricalc/nutricalc-backend/auth"
	"github.com/nutricalc/nutricalc-backend/jobs"
	"github.com/nutricalc/nutricalc-backend/models"
	"github.com/nutricalc/nutricalc-backend/store"
)

// NutritionLookup resolves food descriptions. *nutrition.Client satisfies it.
type NutritionLookup interface {
	LookupFact(ctx context.Context, query, unit string) (models.FoodFact, error)
	Suggest(ctx context.Context, partial string) ([]string, error)
}

// API wires the handlers to their collaborators.
type API struct {
	Store   store.Store
	Catalog store.Catalog
	Lookup  NutritionLookup
	Worker  *jobs.VerifyWorker
	Gate    *auth.Gate
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
