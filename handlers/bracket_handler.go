package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/bracket-engine/services"
)

type BracketHandler struct {
	bracketService services.BracketService
	queryService   services.BracketQueryService
}

func NewBracketHandler(bs services.BracketService, qs services.BracketQueryService) *BracketHandler {
	return &BracketHandler{
		bracketService: bs,
		queryService:   qs,
	}
}

// GenerateBracket godoc
// @Summary Generate the bracket for a tournament
// @Tags brackets
// @Description Generates stages and matches for the given format and entrants. Refuses if a bracket already exists; use the admin regenerate endpoint to replace one.
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param body body services.GenerateBracketParams true "Format, entrants and generation settings"
// @Success 201 {object} services.BracketView
// @Failure 400 {object} map[string]string "Malformed request"
// @Failure 409 {object} map[string]string "Bracket already generated"
// @Failure 422 {object} map[string]string "Invalid entrants or settings"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/bracket [post]
func (h *BracketHandler) GenerateBracket(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var params services.GenerateBracketParams
	if err := readJSON(w, r, &params); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	// Destructive regeneration goes through the admin-gated endpoint.
	params.Force = false

	view, err := h.bracketService.Generate(r.Context(), tournamentID, params)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RegenerateBracket godoc
// @Summary Destroy and regenerate the bracket
// @Tags brackets
// @Description Deletes the existing bracket, including played matches, and generates a fresh one. Requires the admin key.
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param body body services.GenerateBracketParams true "Format, entrants and generation settings"
// @Success 201 {object} services.BracketView
// @Failure 403 {object} map[string]string "Missing or invalid admin key"
// @Router /tournaments/{tournamentID}/bracket/regenerate [post]
func (h *BracketHandler) RegenerateBracket(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var params services.GenerateBracketParams
	if err := readJSON(w, r, &params); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	params.Force = true

	view, err := h.bracketService.Generate(r.Context(), tournamentID, params)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetBracket godoc
// @Summary Get the full bracket of a tournament
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} services.BracketView
// @Router /tournaments/{tournamentID}/bracket [get]
func (h *BracketHandler) GetBracket(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, err := h.queryService.GetBracket(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetStandings godoc
// @Summary Get per-stage standings and final placements
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} services.StandingsView
// @Router /tournaments/{tournamentID}/standings [get]
func (h *BracketHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, err := h.queryService.GetStandings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetMatch godoc
// @Summary Get a single match by bracket UID
// @Tags matches
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param matchUID path string true "Match UID within the tournament bracket"
// @Success 200 {object} models.Match
// @Failure 404 {object} map[string]string "Match not found"
// @Router /tournaments/{tournamentID}/matches/{matchUID} [get]
func (h *BracketHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	uid := chi.URLParam(r, "matchUID")
	match, err := h.queryService.GetMatch(r.Context(), tournamentID, uid)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StartMatch godoc
// @Summary Move a ready match to live
// @Tags matches
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param matchUID path string true "Match UID"
// @Success 200 {object} models.Match
// @Failure 409 {object} map[string]string "Match is not ready"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/matches/{matchUID}/start [post]
func (h *BracketHandler) StartMatch(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	uid := chi.URLParam(r, "matchUID")
	match, err := h.bracketService.StartMatch(r.Context(), tournamentID, uid)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type submitResultInput struct {
	Score1 int `json:"score1"`
	Score2 int `json:"score2"`
}

// SubmitResult godoc
// @Summary Record a match result and advance the bracket
// @Tags matches
// @Description Applies the score, completes the match and propagates winner and loser through the bracket. Resubmitting the identical score of a completed match is a no-op.
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param matchUID path string true "Match UID"
// @Param body body submitResultInput true "Final score"
// @Success 200 {object} services.BracketView
// @Failure 409 {object} map[string]string "Illegal match state"
// @Failure 422 {object} map[string]string "Score does not decide the match"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/matches/{matchUID}/result [post]
func (h *BracketHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	uid := chi.URLParam(r, "matchUID")
	var input submitResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.bracketService.SubmitResult(r.Context(), tournamentID, uid, input.Score1, input.Score2)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CancelMatch godoc
// @Summary Cancel a pending or ready match
// @Tags matches
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param matchUID path string true "Match UID"
// @Success 200 {object} models.Match
// @Failure 409 {object} map[string]string "Match already started or finished"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/matches/{matchUID}/cancel [post]
func (h *BracketHandler) CancelMatch(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	uid := chi.URLParam(r, "matchUID")
	match, err := h.bracketService.CancelMatch(r.Context(), tournamentID, uid)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// NextSwissRound godoc
// @Summary Pair the next Swiss round
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 201 {object} map[string]interface{} "Newly paired matches"
// @Failure 409 {object} map[string]string "Current round not complete or format has no rounds"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/swiss/rounds [post]
func (h *BracketHandler) NextSwissRound(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	created, err := h.bracketService.NextSwissRound(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	status := http.StatusCreated
	if len(created) == 0 {
		// All configured rounds played; the stage is finalized instead.
		status = http.StatusOK
	}
	if err := writeJSON(w, status, jsonResponse{"matches": created}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PromotePlayoffs godoc
// @Summary Promote group qualifiers into the playoff bracket
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 201 {object} services.BracketView
// @Failure 409 {object} map[string]string "Groups not finished or playoffs already created"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/playoffs [post]
func (h *BracketHandler) PromotePlayoffs(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, err := h.bracketService.PromotePlayoffs(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
