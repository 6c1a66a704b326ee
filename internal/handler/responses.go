package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geoclaim/geoclaim/internal/domain"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse represents a response with data payload
type DataResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Encode through a pooled buffer so a failed encode cannot leave a
	// half-written body.
	buf := getBuffer()
	defer putBuffer(buf)

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// User-facing error messages for service errors
const (
	ErrMsgGenericServerError  = "Something went wrong"
	ErrMsgUnknownError        = "Unknown error"
	ErrMsgInvalidRequestError = "Invalid request. Please check your inputs."

	ErrMsgPlayerNotFoundError = "Player not found"
	ErrMsgUsernameTakenError  = "That username is already taken"
	ErrMsgSpotNotFoundError   = "Spot not found"

	ErrMsgItemNotFoundError   = "Item not found"
	ErrMsgNotInInventoryError = "You don't have that item"
	ErrMsgNotConsumableError  = "That item cannot be used"

	ErrMsgLootNotFoundError     = "That loot is gone"
	ErrMsgLootExpiredError      = "That loot has expired"
	ErrMsgLootLimitReachedError = "You have too many active loot spots. Collect or wait for them to expire."

	ErrMsgInvalidCoordinateError = "Invalid coordinates"
	ErrMsgInvalidRadiusError     = "Invalid radius"
)

// mapServiceErrorToUserMessage maps domain errors to HTTP status codes
// and messages a player can act on. Rejections that carry detail (the
// cooldown remaining, the distance overshoot) pass their message
// through verbatim.
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrCooldownActive{}):
		return http.StatusTooManyRequests, err.Error()
	case errors.Is(err, domain.ErrOutOfRange{}):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrPlayerNotFound):
		return http.StatusNotFound, ErrMsgPlayerNotFoundError
	case errors.Is(err, domain.ErrUsernameTaken):
		return http.StatusConflict, ErrMsgUsernameTakenError
	case errors.Is(err, domain.ErrSpotNotFound):
		return http.StatusNotFound, ErrMsgSpotNotFoundError
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound, ErrMsgItemNotFoundError
	case errors.Is(err, domain.ErrNotInInventory):
		return http.StatusBadRequest, ErrMsgNotInInventoryError
	case errors.Is(err, domain.ErrNotConsumable):
		return http.StatusBadRequest, ErrMsgNotConsumableError
	case errors.Is(err, domain.ErrLootNotFound):
		return http.StatusNotFound, ErrMsgLootNotFoundError
	case errors.Is(err, domain.ErrLootExpired):
		return http.StatusGone, ErrMsgLootExpiredError
	case errors.Is(err, domain.ErrLootLimitReached):
		return http.StatusConflict, ErrMsgLootLimitReachedError
	case errors.Is(err, domain.ErrInvalidCoordinate):
		return http.StatusBadRequest, ErrMsgInvalidCoordinateError
	case errors.Is(err, domain.ErrInvalidRadius):
		return http.StatusBadRequest, ErrMsgInvalidRadiusError
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	}

	// Storage and other internal failures stay generic.
	return http.StatusInternalServerError, ErrMsgGenericServerError
}
