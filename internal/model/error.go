package model

import "errors"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeMissingField      = "MISSING_FIELD"
	ErrCodeInvalidCode       = "INVALID_CODE"
	ErrCodeInvalidDiscount   = "INVALID_DISCOUNT"
	ErrCodeInvalidExpiration = "INVALID_EXPIRATION"
	ErrCodeDuplicateCode     = "DUPLICATE_CODE"
	ErrCodeCouponNotFound    = "COUPON_NOT_FOUND"
	ErrCodeAlreadyDeleted    = "COUPON_ALREADY_DELETED"
	ErrCodeInvalidID         = "INVALID_ID"
	ErrCodeInvalidPage       = "INVALID_PAGE"
	ErrCodeMethodNotAllowed  = "METHOD_NOT_ALLOWED"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
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

// AsDomainError unwraps err to a *DomainError if one is present in its chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Common domain errors
var (
	ErrInvalidCode        = NewDomainError(ErrCodeInvalidCode, "Coupon code must have exactly 6 alphanumeric characters")
	ErrInvalidDiscount    = NewDomainError(ErrCodeInvalidDiscount, "Minimum discount value is 0.5")
	ErrInvalidExpiration  = NewDomainError(ErrCodeInvalidExpiration, "Expiration date cannot be in the past")
	ErrDuplicateCode      = NewDomainError(ErrCodeDuplicateCode, "Coupon code already exists")
	ErrCouponNotFound     = NewDomainError(ErrCodeCouponNotFound, "Coupon not found")
	ErrAlreadyDeleted     = NewDomainError(ErrCodeAlreadyDeleted, "Coupon already deleted")
	ErrMissingDescription = NewDomainError(ErrCodeMissingField, "Description is required")
	ErrInvalidPage        = NewDomainError(ErrCodeInvalidPage, "Page must be zero or greater and size between 1 and 100")
)
