package handler

import (
	"net/http"

	"github.com/geoclaim/geoclaim/internal/claim"
)

// HandleSpotRankings returns the ownership leaderboard for a spot
// @Summary Get spot claim rankings
// @Tags claim
// @Produce json
// @Param spot_id query string true "Spot ID"
// @Param limit query int false "Maximum entries"
// @Success 200 {object} DataResponse
// @Router /api/v1/claim/rankings [get]
func HandleSpotRankings(claimService claim.Service) http.HandlerFunc {
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

		rankings, err := claimService.SpotRankings(r.Context(), spotID, limit)
		if err != nil {
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Data: rankings})
	}
}

// HandlePlayerClaims returns every claim the player holds
// @Summary Get a player's claims
// @Tags claim
// @Produce json
// @Param player_id query string true "Player ID"
// @Success 200 {object} DataResponse
// @Router /api/v1/claim/player [get]
func HandlePlayerClaims(claimService claim.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("player_id")
		if playerID == "" {
			respondError(w, http.StatusBadRequest, ErrMsgPlayerIDRequired)
			return
		}

		claims, err := claimService.PlayerClaims(r.Context(), playerID)
		if err != nil {
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Data: claims})
	}
}
