package handler

import (
	"encoding/json"
	"net/http"

	"github.com/geoclaim/geoclaim/internal/domain"
	"github.com/geoclaim/geoclaim/internal/logger"
	"github.com/geoclaim/geoclaim/internal/loot"
)

// SpawnLootRequest represents the request to spawn a loot spot
type SpawnLootRequest struct {
	OwnerID   string  `json:"owner_id" validate:"required"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	RadiusM   float64 `json:"radius_m" validate:"gt=0"`
}

// HandleSpawnLoot creates one loot spot near the player
// @Summary Spawn a loot spot
// @Tags loot
// @Accept json
// @Produce json
// @Param request body SpawnLootRequest true "Spawn payload"
// @Success 201 {object} domain.Spot
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/loot/spawn [post]
func HandleSpawnLoot(lootService loot.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req SpawnLootRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode spawn loot request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			respondJSON(w, http.StatusBadRequest, FormatValidationError(err))
			return
		}

		s, err := lootService.Spawn(r.Context(), req.OwnerID,
			domain.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude}, req.RadiusM)
		if err != nil {
			log.Debug("Loot spawn rejected", "owner_id", req.OwnerID, "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusCreated, s)
	}
}

// CollectLootRequest represents one collection attempt
type CollectLootRequest struct {
	PlayerID   string  `json:"player_id" validate:"required"`
	LootSpotID string  `json:"loot_spot_id" validate:"required"`
	Latitude   float64 `json:"latitude" validate:"latitude"`
	Longitude  float64 `json:"longitude" validate:"longitude"`
}

// HandleCollectLoot attempts a first-come-first-served collection
// @Summary Collect a loot spot
// @Description Exactly one of several concurrent collectors succeeds
// @Tags loot
// @Accept json
// @Produce json
// @Param request body CollectLootRequest true "Collect payload"
// @Success 200 {object} domain.LootReward
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Router /api/v1/loot/collect [post]
func HandleCollectLoot(lootService loot.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req CollectLootRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode collect loot request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			respondJSON(w, http.StatusBadRequest, FormatValidationError(err))
			return
		}

		reward, err := lootService.Collect(r.Context(), req.PlayerID, req.LootSpotID,
			domain.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude})
		if err != nil {
			log.Debug("Loot collection failed",
				"player_id", req.PlayerID,
				"loot_spot_id", req.LootSpotID,
				"error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, reward)
	}
}

// HandleActiveLoot returns the player's unexpired loot spots
// @Summary List active loot spots
// @Tags loot
// @Produce json
// @Param owner_id query string true "Owner player ID"
// @Success 200 {object} DataResponse
// @Router /api/v1/loot/active [get]
func HandleActiveLoot(lootService loot.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := r.URL.Query().Get("owner_id")
		if ownerID == "" {
			respondError(w, http.StatusBadRequest, ErrMsgPlayerIDRequired)
			return
		}

		spots, err := lootService.ActiveForOwner(r.Context(), ownerID)
		if err != nil {
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Data: spots})
	}
}
