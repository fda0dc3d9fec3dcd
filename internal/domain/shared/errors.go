package shared

import "errors"

// DomainError is an error with a stable machine-readable code. The HTTP
// layer maps codes to status responses; services compare codes rather
// than message text.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// HasCode reports whether err is (or wraps) a DomainError with the given
// code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// Errors shared across aggregates. Aggregate-specific failures are built
// with NewDomainError at the call site.
var (
	ErrNotFound                   = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists              = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput               = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict        = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState               = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock          = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrInsufficientPayment        = NewDomainError("INSUFFICIENT_PAYMENT", "Payment amount does not cover the total")
	ErrPaymentProviderUnavailable = NewDomainError("PAYMENT_PROVIDER_UNAVAILABLE", "Payment provider could not be reached")
)
