package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playmeeple/meeplehub/services"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Difficulty GET /tournaments/{tournamentID}/difficulty
func (h *AnalyticsHandler) Difficulty(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	score, err := h.analyticsService.ComputeDifficulty(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	env := jsonResponse{"tournament_id": tournamentID, "difficulty": score}
	if err := writeJSON(w, http.StatusOK, env, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SocialDensity GET /tournaments/{tournamentID}/social-density
func (h *AnalyticsHandler) SocialDensity(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	density, err := h.analyticsService.ComputeSocialDensity(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	env := jsonResponse{"tournament_id": tournamentID, "social_density": density}
	if err := writeJSON(w, http.StatusOK, env, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
