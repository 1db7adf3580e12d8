package errors

const (
	HttpInternalError          = "internal_error"
	HttpInvalidJsonError       = "invalid_json"
	HttpNotFoundError          = "not_found"
	HttpConflictError          = "conflict"
	HttpInvalidTransitionError = "invalid_transition"
	HttpCapacityExceededError  = "capacity_exceeded"
	HttpValidationError        = "validation_failed"
)

// ErrorResponse is the error response body for every API error.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
