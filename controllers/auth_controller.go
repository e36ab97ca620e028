package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/nutricalc/nutricalc-backend/logger"
)

type loginRequest struct {
	Email      string `json:"email"`
	AccessCode string `json:"accessCode"`
}

// Login verifies an email/access-code pair and returns a session token.
// Every failure mode maps to the same 401: the response never reveals
// whether the email is provisioned.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	email, err := a.Gate.Verify(req.Email, req.AccessCode)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid email or access code")
		return
	}

	token, err := a.Gate.Token(email)
	if err != nil {
		logger.Error("Failed to sign session token", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	logger.Info("User logged in", "email", email)
	respondJSON(w, http.StatusOK, map[string]string{"token": token, "email": email})
}
