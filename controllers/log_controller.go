package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nutricalc/nutricalc-backend/ledger"
	"github.com/nutricalc/nutricalc-backend/logger"
	"github.com/nutricalc/nutricalc-backend/middleware"
	"github.com/nutricalc/nutricalc-backend/models"
	"github.com/nutricalc/nutricalc-backend/nutrition"
)

type searchRequest struct {
	Query    string          `json:"query"`
	Quantity float64         `json:"quantity"`
	Unit     string          `json:"unit"`
	MealSlot models.MealSlot `json:"mealSlot"`
}

// GetLog returns the food log, most recent first.
func (a *API) GetLog(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserEmail(r)

	state, err := a.Store.Load(r.Context(), user)
	if err != nil {
		logger.Error("Failed to load food log", "user", user, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load food log")
		return
	}

	entries := state.FoodLog
	if entries == nil {
		entries = []models.FoodLogEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

// SearchAndLog resolves a food description to nutrition data and appends the
// resulting entry to the log. A lookup failure returns 502 and leaves the log
// untouched.
func (a *API) SearchAndLog(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserEmail(r)

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.MealSlot == "" {
		req.MealSlot = models.MealBreakfast
	}
	if !req.MealSlot.Valid() {
		respondError(w, http.StatusBadRequest, "unknown meal slot")
		return
	}
	if req.Unit == "" {
		req.Unit = "g"
	}
	if req.Quantity <= 0 {
		if nutrition.BasisForUnit(req.Unit) == nutrition.BasisPerUnit {
			req.Quantity = 1
		} else {
			req.Quantity = 100
		}
	}

	fact, err := a.lookupFact(r, req.Query, req.Unit)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Nutrition lookup failed")
		return
	}

	portion := nutrition.ScalePortion(fact, req.Quantity, req.Unit)
	entry := models.FoodLogEntry{
		EntryID:         uuid.NewString(),
		Name:            portion.Name,
		Calories:        portion.Calories,
		Carbs:           portion.Carbs,
		Protein:         portion.Protein,
		Fat:             portion.Fat,
		PortionQuantity: req.Quantity,
		PortionUnit:     req.Unit,
		MealSlot:        req.MealSlot,
		Provenance:      portion.Provenance,
		LoggedAt:        time.Now().UTC(),
	}

	if err := a.Store.AppendEntry(r.Context(), user, entry); err != nil {
		logger.Error("Failed to append food log entry", "user", user, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to save entry")
		return
	}

	logger.Info("Food logged", "user", user, "name", entry.Name, "kcal", entry.Calories)
	respondJSON(w, http.StatusCreated, entry)
}

// lookupFact serves from the catalog cache when the basis matches, otherwise
// performs a live lookup and caches the result. Unverified facts are queued
// for background verification.
func (a *API) lookupFact(r *http.Request, query, unit string) (models.FoodFact, error) {
	ctx := r.Context()

	if cached, err := a.Catalog.GetFact(ctx, query); err == nil && cached != nil &&
		cached.Basis == nutrition.BasisForUnit(unit) {
		return *cached, nil
	}

	fact, err := a.Lookup.LookupFact(ctx, query, unit)
	if err != nil {
		return models.FoodFact{}, err
	}

	if err := a.Catalog.PutFact(ctx, fact); err != nil {
		logger.Warn("Failed to cache nutrition fact", "query", query, "error", err)
	} else if !fact.Verified && a.Worker != nil {
		a.Worker.Enqueue(fact.Query)
	}
	return fact, nil
}

// DeleteLogEntry removes an entry. Unknown ids are a no-op; either way 204.
func (a *API) DeleteLogEntry(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserEmail(r)
	entryID := chi.URLParam(r, "entry_id")

	if err := a.Store.RemoveEntry(r.Context(), user, entryID); err != nil {
		logger.Error("Failed to remove food log entry", "user", user, "entry_id", entryID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to remove entry")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetTotals returns the ledger-wide nutrient sums and the macro chart weights.
func (a *API) GetTotals(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserEmail(r)

	state, err := a.Store.Load(r.Context(), user)
	if err != nil {
		logger.Error("Failed to load food log", "user", user, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load food log")
		return
	}

	totals := ledger.Totals(state.FoodLog)
	respondJSON(w, http.StatusOK, map[string]any{
		"totals":       totals,
		"distribution": ledger.MacroDistribution(totals),
	})
}

// SuggestFoods returns name completions for a partial query. Suggestions are
// best-effort: any failure yields an empty list, never an error status.
func (a *API) SuggestFoods(w http.ResponseWriter, r *http.Request) {
	partial := r.URL.Query().Get("q")

	names, err := a.Lookup.Suggest(r.Context(), partial)
	if err != nil {
		logger.Debug("Food suggestion failed", "q", partial, "error", err)
		names = nil
	}
	if names == nil {
		names = []string{}
	}
	respondJSON(w, http.StatusOK, names)
}
