package handler

import (
	"encoding/json"
	"net/http"

	"github.com/geoclaim/geoclaim/internal/buff"
	"github.com/geoclaim/geoclaim/internal/logger"
	"github.com/geoclaim/geoclaim/internal/player"
)

// RegisterPlayerRequest represents the request to register a player
type RegisterPlayerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
}

// HandleRegisterPlayer handles player registration
// @Summary Register a new player
// @Tags player
// @Accept json
// @Produce json
// @Param request body RegisterPlayerRequest true "Registration payload"
// @Success 201 {object} domain.Player
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/player/register [post]
func HandleRegisterPlayer(playerService player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req RegisterPlayerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode register request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			respondJSON(w, http.StatusBadRequest, FormatValidationError(err))
			return
		}

		p, err := playerService.Register(r.Context(), req.Username)
		if err != nil {
			log.Warn("Player registration failed", "username", req.Username, "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusCreated, p)
	}
}

// HandleGetPlayer returns a player profile with progression context
// @Summary Get player profile
// @Tags player
// @Produce json
// @Param player_id query string true "Player ID"
// @Success 200 {object} player.Profile
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/player [get]
func HandleGetPlayer(playerService player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("player_id")
		if playerID == "" {
			respondError(w, http.StatusBadRequest, ErrMsgPlayerIDRequired)
			return
		}

		profile, err := playerService.GetProfile(r.Context(), playerID)
		if err != nil {
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, profile)
	}
}

// HandleGetInventory returns the player's item stacks
// @Summary Get player inventory
// @Tags player
// @Produce json
// @Param player_id query string true "Player ID"
// @Success 200 {object} DataResponse
// @Router /api/v1/player/inventory [get]
func HandleGetInventory(playerService player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("player_id")
		if playerID == "" {
			respondError(w, http.StatusBadRequest, ErrMsgPlayerIDRequired)
			return
		}

		items, err := playerService.Inventory(r.Context(), playerID)
		if err != nil {
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Data: items})
	}
}

// UseItemRequest represents the request to consume an item
type UseItemRequest struct {
	PlayerID string `json:"player_id" validate:"required"`
	ItemID   int    `json:"item_id" validate:"required,gt=0"`
}

// HandleUseItem consumes an item and grants its buff
// @Summary Use a consumable item
// @Tags player
// @Accept json
// @Produce json
// @Param request body UseItemRequest true "Use item payload"
// @Success 200 {object} domain.Buff
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/player/item/use [post]
func HandleUseItem(playerService player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req UseItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode use item request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			respondJSON(w, http.StatusBadRequest, FormatValidationError(err))
			return
		}

		b, err := playerService.UseItem(r.Context(), req.PlayerID, req.ItemID)
		if err != nil {
			log.Warn("Use item failed", "player_id", req.PlayerID, "item_id", req.ItemID, "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, b)
	}
}

// HandleActiveBuffs returns the player's unexpired buffs
// @Summary List active buffs
// @Tags player
// @Produce json
// @Param player_id query string true "Player ID"
// @Success 200 {object} DataResponse
// @Router /api/v1/player/buffs [get]
func HandleActiveBuffs(buffService buff.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("player_id")
		if playerID == "" {
			respondError(w, http.StatusBadRequest, ErrMsgPlayerIDRequired)
			return
		}

		buffs, err := buffService.ActiveBuffs(r.Context(), playerID)
		if err != nil {
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Data: buffs})
	}
}
