package models

import (
	"errors"
	"fmt"
)

// ErrorCode is a stable machine-readable error code surfaced to API
// callers alongside a human-readable message.
type ErrorCode string

const (
	ErrorCodeValidationFailed      ErrorCode = "VALIDATION_FAILED"
	ErrorCodeClientNotFound        ErrorCode = "CLIENT_NOT_FOUND"
	ErrorCodeCardNotFound          ErrorCode = "CARD_NOT_FOUND"
	ErrorCodeChargeNotFound        ErrorCode = "CHARGE_NOT_FOUND"
	ErrorCodeCardOwnershipMismatch ErrorCode = "CARD_OWNERSHIP_MISMATCH"
	ErrorCodeChargeNotRefundable   ErrorCode = "CHARGE_NOT_REFUNDABLE"
	ErrorCodeChargeAlreadyRefunded ErrorCode = "CHARGE_ALREADY_REFUNDED"
	ErrorCodeStorageError          ErrorCode = "STORAGE_ERROR"
)

// ErrDuplicateRequestID is returned by charge stores when an insert
// violates the sparse unique index on request_id. The charge service
// resolves it by re-reading the winning record; it never reaches the
// API surface.
var ErrDuplicateRequestID = errors.New("charge with this request_id already exists")

// AppError is a structured domain error carrying a stable code. Error
// messages never contain a raw PAN or any other sensitive field.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError reports malformed input, detected before any I/O.
func NewValidationError(message string) *AppError {
	return &AppError{Code: ErrorCodeValidationFailed, Message: message}
}

// NewNotFoundError reports an absent referenced entity.
func NewNotFoundError(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// NewConflictError reports an operation rejected by the current state
// of the target record.
func NewConflictError(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// NewInvalidRelationshipError reports a card referenced under the wrong
// owning client.
func NewInvalidRelationshipError(message string) *AppError {
	return &AppError{Code: ErrorCodeCardOwnershipMismatch, Message: message}
}

// NewStorageError wraps an unexpected persistence failure.
func NewStorageError(err error) *AppError {
	return &AppError{Code: ErrorCodeStorageError, Message: "storage operation failed", Err: err}
}

// AsAppError unwraps err into an *AppError when possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
