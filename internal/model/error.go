package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	OrderID string `json:"order_id,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeUpstreamRejected    = "UPSTREAM_REJECTED"
	ErrCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ErrCodeConfiguration       = "CONFIGURATION_ERROR"
	ErrCodeProductNotFound     = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound       = "ORDER_NOT_FOUND"
	ErrCodeOrderItemsNotSaved  = "ORDER_ITEMS_NOT_SAVED"
	ErrCodeLabelNotRetrieved   = "LABEL_PURCHASED_NOT_RETRIEVED"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// DomainError carries a machine-readable code alongside the message. Detail
// holds the raw provider response body when an upstream declined, and Status
// mirrors the provider's HTTP status where the contract requires it.
type DomainError struct {
	Code    string
	Message string
	Detail  string
	Status  int
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates an error for malformed or incomplete caller
// input, rejected before any outbound call is made.
func NewValidationError(message string) *DomainError {
	return NewDomainError(ErrCodeValidation, message)
}

// NewUpstreamRejected creates an error for an explicit decline by a payment
// or shipping provider. The provider's own status code and body are kept.
func NewUpstreamRejected(message, detail string, status int) *DomainError {
	return &DomainError{
		Code:    ErrCodeUpstreamRejected,
		Message: message,
		Detail:  detail,
		Status:  status,
	}
}

// NewUpstreamUnavailable creates an error for a transport failure or 5xx from
// a dependency. The caller may retry the whole step.
func NewUpstreamUnavailable(message string) *DomainError {
	return NewDomainError(ErrCodeUpstreamUnavailable, message)
}

// NewConfigurationError creates an error for a missing required credential.
func NewConfigurationError(message string) *DomainError {
	return NewDomainError(ErrCodeConfiguration, message)
}

// Common domain errors
var (
	ErrProductNotFound = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrOrderNotFound   = NewDomainError(ErrCodeOrderNotFound, "Order not found")
)
