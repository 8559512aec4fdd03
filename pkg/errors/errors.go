package errors

import "fmt"

// Error types for the loyalty proxy service
var (
	ErrInvalidRequest = &ServiceError{
		Code:    "INVALID_REQUEST",
		Message: "Invalid request",
		Status:  400,
	}

	ErrMethodNotAllowed = &ServiceError{
		Code:    "METHOD_NOT_ALLOWED",
		Message: "Only POST requests allowed",
		Status:  405,
	}

	ErrCardNotFound = &ServiceError{
		Code:    "CARD_NOT_FOUND",
		Message: "Card not found",
		Status:  404,
	}

	// ErrNoCampaign is returned when every tier of the default-campaign
	// resolver chain misses.
	ErrNoCampaign = &ServiceError{
		Code:    "NO_CAMPAIGN",
		Message: "No campaign resolvable",
		Status:  404,
	}

	ErrMissingSecret = &ServiceError{
		Code:    "MISSING_SECRET",
		Message: "API secret is required to sign tokens",
		Status:  500,
	}

	ErrInternalServer = &ServiceError{
		Code:    "INTERNAL_SERVER_ERROR",
		Message: "Internal server error",
		Status:  500,
	}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Wrap wraps an error with a ServiceError
func Wrap(err error, serviceErr *ServiceError) *ServiceError {
	return &ServiceError{
		Code:    serviceErr.Code,
		Message: serviceErr.Message,
		Status:  serviceErr.Status,
		Err:     err,
	}
}

// Upstream builds a ServiceError from a non-success reply of the loyalty
// platform, carrying the status code and body text. There is no retry; the
// failure is surfaced to the caller as-is.
func Upstream(status int, body string) *ServiceError {
	return &ServiceError{
		Code:    "UPSTREAM_ERROR",
		Message: fmt.Sprintf("upstream returned %d: %s", status, body),
		Status:  500,
	}
}

// WithMessage returns a copy of a ServiceError with a specific message,
// keeping code and status. Used where the response body must reference
// request data (e.g. the email a card lookup failed for).
func WithMessage(serviceErr *ServiceError, message string) *ServiceError {
	return &ServiceError{
		Code:    serviceErr.Code,
		Message: message,
		Status:  serviceErr.Status,
	}
}
