package handlers

import (
	"net/http"

	"github.com/playmeeple/meeplehub/middleware"
	"github.com/playmeeple/meeplehub/services"
)

type SuggestionHandler struct {
	suggestionService *services.SuggestionService
}

func NewSuggestionHandler(suggestionService *services.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{suggestionService: suggestionService}
}

// SuggestUsers GET /suggestions/users
func (h *SuggestionHandler) SuggestUsers(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	usernames, err := h.suggestionService.SuggestUsers(r.Context(), current.Username)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"users": usernames}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SuggestGames GET /suggestions/games
func (h *SuggestionHandler) SuggestGames(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	gameIDs, err := h.suggestionService.SuggestGames(r.Context(), current.Username)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"games": gameIDs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SuggestTournaments GET /suggestions/tournaments
func (h *SuggestionHandler) SuggestTournaments(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	tournamentIDs, err := h.suggestionService.SuggestTournaments(r.Context(), current.Username)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournamentIDs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SimilarUsers GET /suggestions/similar
func (h *SuggestionHandler) SimilarUsers(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	similar, err := h.suggestionService.SimilarUsers(r.Context(), current.Username)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"similar": similar}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
