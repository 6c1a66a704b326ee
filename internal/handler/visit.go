package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/geoclaim/geoclaim/internal/domain"
	"github.com/geoclaim/geoclaim/internal/logger"
	"github.com/geoclaim/geoclaim/internal/visit"
)

// LogVisitRequest represents one visit attempt
type LogVisitRequest struct {
	PlayerID  string  `json:"player_id" validate:"required"`
	SpotID    string  `json:"spot_id" validate:"required"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Auto      bool    `json:"auto"`
	Note      string  `json:"note" validate:"max=500"`
	HasPhoto  bool    `json:"has_photo"`
}

// HandleLogVisit validates and applies one visit attempt
// @Summary Log a visit at a spot
// @Description Applies the proximity and cooldown gate, then credits XP and claim points
// @Tags visit
// @Accept json
// @Produce json
// @Param request body LogVisitRequest true "Visit payload"
// @Success 200 {object} domain.VisitResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/v1/visit [post]
func HandleLogVisit(visitService visit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req LogVisitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode visit request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			respondJSON(w, http.StatusBadRequest, FormatValidationError(err))
			return
		}

		result, err := visitService.Log(r.Context(), visit.Request{
			PlayerID: req.PlayerID,
			SpotID:   req.SpotID,
			Position: domain.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude},
			Auto:     req.Auto,
			Note:     req.Note,
			HasPhoto: req.HasPhoto,
		})
		if err != nil {
			log.Debug("Visit rejected",
				"player_id", req.PlayerID,
				"spot_id", req.SpotID,
				"auto", req.Auto,
				"error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

// HandleVisitStatus reports whether the player can currently log a spot
// @Summary Get cooldown status for a spot
// @Tags visit
// @Produce json
// @Param player_id query string true "Player ID"
// @Param spot_id query string true "Spot ID"
// @Success 200 {object} domain.LogStatus
// @Router /api/v1/visit/status [get]
func HandleVisitStatus(visitService visit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("player_id")
		spotID := r.URL.Query().Get("spot_id")
		if playerID == "" {
			respondError(w, http.StatusBadRequest, ErrMsgPlayerIDRequired)
			return
		}
		if spotID == "" {
			respondError(w, http.StatusBadRequest, ErrMsgSpotIDRequired)
			return
		}

		status, err := visitService.Status(r.Context(), playerID, spotID)
		if err != nil {
			code, msg := mapServiceErrorToUserMessage(err)
			respondError(w, code, msg)
			return
		}

		respondJSON(w, http.StatusOK, status)
	}
}

// HandlePlayerVisits returns a player's recent visits, newest first
// @Summary Get player visit history
// @Tags visit
// @Produce json
// @Param player_id query string true "Player ID"
// @Param limit query int false "Maximum entries"
// @Success 200 {object} DataResponse
// @Router /api/v1/visit/history [get]
func HandlePlayerVisits(visitService visit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("player_id")
		if playerID == "" {
			respondError(w, http.StatusBadRequest, ErrMsgPlayerIDRequired)
			return
		}

		limit, ok := parseLimit(w, r)
		if !ok {
			return
		}

		visits, err := visitService.PlayerHistory(r.Context(), playerID, limit)
		if err != nil {
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Data: visits})
	}
}

// HandleSpotVisits returns a spot's recent visits, newest first
// @Summary Get spot visit history
// @Tags visit
// @Produce json
// @Param spot_id query string true "Spot ID"
// @Param limit query int false "Maximum entries"
// @Success 200 {object} DataResponse
// @Router /api/v1/visit/spot-history [get]
func HandleSpotVisits(visitService visit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spotID := r.URL.Query().Get("spot_id")
		if spotID == "" {
			respondError(w, http.StatusBadRequest, ErrMsgSpotIDRequired)
			return
		}

		limit, ok := parseLimit(w, r)
		if !ok {
			return
		}

		visits, err := visitService.SpotHistory(r.Context(), spotID, limit)
		if err != nil {
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Data: visits})
	}
}

// parseLimit reads the optional limit query parameter. A zero limit
// lets the service apply its default. Returns false after writing an
// error response.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidLimit)
		return 0, false
	}
	return limit, true
}
