package handler

// Generic HTTP error messages for client responses.
// These intentionally do not expose internal error details.
const (
	ErrMsgMethodNotAllowed = "Method not allowed"
	ErrMsgInvalidRequest   = "Invalid request body"

	ErrMsgMissingQueryParam = "Missing %s query parameter"
	ErrMsgInvalidLimit      = "Invalid limit parameter"

	ErrMsgUsernameRequired = "Username is required"
	ErrMsgPlayerIDRequired = "Player ID is required"
	ErrMsgSpotIDRequired   = "Spot ID is required"
)

// Success messages for API responses
const (
	MsgSpotDeletedSuccess = "Spot deleted"
	MsgVisitLogged        = "Visit logged"
	MsgLootCollected      = "Loot collected"
)
