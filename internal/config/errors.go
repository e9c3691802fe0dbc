package config

const (
	// Backend errors
	ErrBackendUnavailable = "The content service is unavailable, please try again later"
	ErrLoadFailed         = "Failed to load %s"
	ErrNotFound           = "Not found"

	// Auth errors
	ErrCreateProviderFmt   = "Failed to create provider: %v"
	ErrUnauthorized        = "Unauthorized"
	ErrInvalidCredentials  = "Invalid email or password"
	ErrInvalidSession      = "Invalid session"
	ErrInternalServerError = "Internal server error"

	// Editor errors
	ErrDraftNotFound   = "Draft not found"
	ErrSubmitInFlight  = "A submission is already in progress"
	ErrInvalidOp       = "Invalid editor operation"
	ErrUploadFailed    = "Failed to upload image, please try again"
	ErrUnexpectedError = "An unexpected error occurred"

	// Contact errors
	ErrTooManyMessages = "Too many messages, please wait a minute before trying again"
)
