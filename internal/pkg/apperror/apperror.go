package apperror

import "maps"

// AppError is a custom error type that includes an HTTP status code and an optional internal error code.
type AppError struct {
	Code    int            // HTTP Status Code (e.g., 400, 404)
	Message string         // User-facing error message
	Err     error          // The underlying error, if any (not exposed to user)
	Details map[string]any // Extra context rendered next to the message
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails returns a copy of e carrying an extra key/value pair.
// The copy unwraps to e, so errors.Is against the original sentinel still matches.
func (e *AppError) WithDetails(key string, value any) *AppError {
	details := make(map[string]any, len(e.Details)+1)
	maps.Copy(details, e.Details)
	details[key] = value
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e,
		Details: details,
	}
}
