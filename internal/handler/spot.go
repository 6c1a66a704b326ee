package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/geoclaim/geoclaim/internal/domain"
	"github.com/geoclaim/geoclaim/internal/logger"
	"github.com/geoclaim/geoclaim/internal/spot"
)

// CreateSpotRequest represents the request to create a permanent spot
type CreateSpotRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description string  `json:"description" validate:"max=1000"`
	Latitude    float64 `json:"latitude" validate:"latitude"`
	Longitude   float64 `json:"longitude" validate:"longitude"`
	Type        string  `json:"type" validate:"spottype"`
	CreatorID   string  `json:"creator_id"`
}

// HandleCreateSpot registers a permanent spot
// @Summary Create a spot
// @Tags spot
// @Accept json
// @Produce json
// @Param request body CreateSpotRequest true "Spot payload"
// @Success 201 {object} domain.Spot
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/spot [post]
func HandleCreateSpot(spotService spot.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req CreateSpotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode create spot request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			respondJSON(w, http.StatusBadRequest, FormatValidationError(err))
			return
		}

		s, err := spotService.CreateSpot(r.Context(), req.Name, req.Description,
			domain.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude},
			domain.SpotType(req.Type), req.CreatorID)
		if err != nil {
			log.Warn("Spot creation failed", "name", req.Name, "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusCreated, s)
	}
}

// HandleGetSpot returns one spot by id
// @Summary Get a spot
// @Tags spot
// @Produce json
// @Param spot_id query string true "Spot ID"
// @Success 200 {object} domain.Spot
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/spot [get]
func HandleGetSpot(spotService spot.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spotID := r.URL.Query().Get("spot_id")
		if spotID == "" {
			respondError(w, http.StatusBadRequest, ErrMsgSpotIDRequired)
			return
		}

		s, err := spotService.GetSpot(r.Context(), spotID)
		if err != nil {
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, s)
	}
}

// HandleNearbySpots returns spots within a radius, nearest first
// @Summary Find nearby spots
// @Tags spot
// @Produce json
// @Param latitude query number true "Center latitude"
// @Param longitude query number true "Center longitude"
// @Param radius query number false "Search radius in meters"
// @Success 200 {object} DataResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/spot/nearby [get]
func HandleNearbySpots(spotService spot.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, ok := parseFloatParam(w, r, "latitude")
		if !ok {
			return
		}
		lon, ok := parseFloatParam(w, r, "longitude")
		if !ok {
			return
		}

		radius := 0.0
		if raw := r.URL.Query().Get("radius"); raw != "" {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				respondError(w, http.StatusBadRequest, "Invalid radius parameter")
				return
			}
			radius = parsed
		}

		spots, err := spotService.Nearby(r.Context(),
			domain.Coordinate{Latitude: lat, Longitude: lon}, radius)
		if err != nil {
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Data: spots})
	}
}

// HandleDeleteSpot removes a spot
// @Summary Delete a spot
// @Tags spot
// @Produce json
// @Param spot_id query string true "Spot ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/spot [delete]
func HandleDeleteSpot(spotService spot.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		spotID := r.URL.Query().Get("spot_id")
		if spotID == "" {
			respondError(w, http.StatusBadRequest, ErrMsgSpotIDRequired)
			return
		}

		if err := spotService.DeleteSpot(r.Context(), spotID); err != nil {
			log.Warn("Spot deletion failed", "spot_id", spotID, "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgSpotDeletedSuccess})
	}
}

// parseFloatParam reads a required float query parameter. Returns
// false after writing an error response.
func parseFloatParam(w http.ResponseWriter, r *http.Request, name string) (float64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		respondError(w, http.StatusBadRequest, "Missing "+name+" query parameter")
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid "+name+" parameter")
		return 0, false
	}
	return value, true
}
