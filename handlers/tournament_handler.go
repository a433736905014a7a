package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/playmeeple/meeplehub/middleware"
	"github.com/playmeeple/meeplehub/models"
	"github.com/playmeeple/meeplehub/repositories"
	"github.com/playmeeple/meeplehub/services"
)

type TournamentHandler struct {
	tournamentService  *services.TournamentService
	participantService *services.ParticipantService
	reconcileService   *services.ReconcileService
}

func NewTournamentHandler(
	tournamentService *services.TournamentService,
	participantService *services.ParticipantService,
	reconcileService *services.ReconcileService,
) *TournamentHandler {
	return &TournamentHandler{
		tournamentService:  tournamentService,
		participantService: participantService,
		reconcileService:   reconcileService,
	}
}

// updateTournamentRequest — частичное обновление: пишутся только переданные
// поля. Победитель и allowed-список сюда не входят.
type updateTournamentRequest struct {
	Name            *string                    `json:"name"`
	Type            *string                    `json:"type"`
	TypeDescription *string                    `json:"type_description"`
	Location        *string                    `json:"location"`
	StartingTime    *time.Time                 `json:"starting_time"`
	MinParticipants *int                       `json:"min_participants"`
	MaxParticipants *int                       `json:"max_participants"`
	Options         *[]models.TournamentOption `json:"options"`
}

type selectWinnerRequest struct {
	Winner string `json:"winner"`
}

// CreateTournament POST /tournaments
func (h *TournamentHandler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), current.Username, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetTournament GET /tournaments/{tournamentID}
func (h *TournamentHandler) GetTournament(w http.ResponseWriter, r *http.Request) {
	tournament, err := h.tournamentService.GetTournamentByID(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListTournaments GET /tournaments
func (h *TournamentHandler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ListTournamentsFilter{
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}
	if gameID := r.URL.Query().Get("game_id"); gameID != "" {
		filter.GameID = &gameID
	}
	if admin := r.URL.Query().Get("administrator"); admin != "" {
		filter.Administrator = &admin
	}
	if visibility := r.URL.Query().Get("visibility"); visibility != "" {
		v := models.TournamentVisibility(visibility)
		filter.Visibility = &v
	}

	tournaments, err := h.tournamentService.ListTournaments(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateTournament PATCH /tournaments/{tournamentID}
func (h *TournamentHandler) UpdateTournament(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var req updateTournamentRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	patch := repositories.TournamentPatch{
		Name:            req.Name,
		Type:            req.Type,
		TypeDescription: req.TypeDescription,
		Location:        req.Location,
		StartingTime:    req.StartingTime,
		MinParticipants: req.MinParticipants,
		MaxParticipants: req.MaxParticipants,
		Options:         req.Options,
	}

	tournament, err := h.tournamentService.UpdateTournament(r.Context(), chi.URLParam(r, "tournamentID"), current.Username, patch)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteTournament DELETE /tournaments/{tournamentID}
func (h *TournamentHandler) DeleteTournament(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	if err := h.tournamentService.DeleteTournament(r.Context(), chi.URLParam(r, "tournamentID"), current.Username); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Register POST /tournaments/{tournamentID}/register
func (h *TournamentHandler) Register(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	if err := h.participantService.Register(r.Context(), chi.URLParam(r, "tournamentID"), current.Username); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Unregister DELETE /tournaments/{tournamentID}/register
func (h *TournamentHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	if err := h.participantService.Unregister(r.Context(), chi.URLParam(r, "tournamentID"), current.Username); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectWinner POST /tournaments/{tournamentID}/winner
func (h *TournamentHandler) SelectWinner(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var req selectWinnerRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.SelectWinner(r.Context(), chi.URLParam(r, "tournamentID"), req.Winner, current.Username); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reconcile POST /tournaments/{tournamentID}/reconcile
//
// Ручной запуск сверки счётчика с графом, не дожидаясь планировщика.
func (h *TournamentHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	if err := h.reconcileService.Reconcile(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament_id": tournamentID, "reconciled": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
