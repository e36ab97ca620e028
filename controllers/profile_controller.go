package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/nutricalc/nutricalc-backend/logger"
	"github.com/nutricalc/nutricalc-backend/metabolic"
	"github.com/nutricalc/nutricalc-backend/middleware"
	"github.com/nutricalc/nutricalc-backend/models"
)

type profileRequest struct {
	Weight         float64    `json:"weight"`
	Height         float64    `json:"height"`
	Age            int        `json:"age"`
	Sex            models.Sex `json:"sex"`
	ActivityFactor float64    `json:"activityFactor"`
}

// GetProfile returns the stored metabolic profile, 404 when none exists.
func (a *API) GetProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserEmail(r)

	state, err := a.Store.Load(r.Context(), user)
	if err != nil {
		logger.Error("Failed to load profile", "user", user, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}
	if state.Profile == nil {
		respondError(w, http.StatusNotFound, "No profile yet")
		return
	}

	respondJSON(w, http.StatusOK, state.Profile)
}

// PutProfile validates the body metrics, computes the derived values and
// replaces the stored profile wholesale.
func (a *API) PutProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserEmail(r)

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := metabolic.ComputeProfile(metabolic.Input{
		Weight:         req.Weight,
		Height:         req.Height,
		Age:            req.Age,
		Sex:            req.Sex,
		ActivityFactor: req.ActivityFactor,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.Store.SaveProfile(r.Context(), user, profile); err != nil {
		logger.Error("Failed to save profile", "user", user, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to save profile")
		return
	}

	logger.Info("Profile updated", "user", user, "bmr", profile.BMR, "tdee", profile.TDEE)
	respondJSON(w, http.StatusOK, profile)
}
