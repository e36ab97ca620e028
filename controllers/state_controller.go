package controllers

import (
	"io"
	"net/http"

	"github.com/nutricalc/nutricalc-backend/logger"
	"github.com/nutricalc/nutricalc-backend/middleware"
	"github.com/nutricalc/nutricalc-backend/snapshot"
	"github.com/nutricalc/nutricalc-backend/store"
)

const maxImportSize = 1 << 20 // 1 MiB

// ExportState returns the user's full state as a versioned snapshot.
func (a *API) ExportState(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserEmail(r)

	state, err := a.Store.Load(r.Context(), user)
	if err != nil {
		logger.Error("Failed to load state", "user", user, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load state")
		return
	}

	data, err := snapshot.Encode(snapshot.State{
		Profile: state.Profile,
		FoodLog: state.FoodLog,
	})
	if err != nil {
		logger.Error("Failed to encode state", "user", user, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to encode state")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// ImportState replaces the user's state with an uploaded snapshot. Both the
// current layout and the legacy browser export are accepted; repairs applied
// during decoding are reported back to the caller.
func (a *API) ImportState(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserEmail(r)

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportSize))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	decoded, warnings, err := snapshot.Decode(data)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid snapshot")
		return
	}
	for _, warning := range warnings {
		logger.Warn("Snapshot repair during import", "user", user, "detail", warning)
	}

	if err := a.Store.Replace(r.Context(), user, store.State{
		Profile: decoded.Profile,
		FoodLog: decoded.FoodLog,
	}); err != nil {
		logger.Error("Failed to replace state", "user", user, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to import state")
		return
	}

	if warnings == nil {
		warnings = []string{}
	}
	logger.Info("State imported", "user", user, "entries", len(decoded.FoodLog), "repairs", len(warnings))
	respondJSON(w, http.StatusOK, map[string]any{
		"imported": len(decoded.FoodLog),
		"warnings": warnings,
	})
}
