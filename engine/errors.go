package engine

import (
	"errors"
	"fmt"
)

// Engine error codes.
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotParticipant    = "NOT_PARTICIPANT"
	ErrCodeNoSignatureOnFile = "NO_SIGNATURE_ON_FILE"
	ErrCodeAlreadySigned     = "ALREADY_SIGNED"
	ErrCodeAlreadyClosed     = "ALREADY_CLOSED"
	ErrCodeNotFound          = "ENTITY_NOT_FOUND"
	ErrCodeInvalidState      = "INVALID_STATE"
	ErrCodePersistence       = "PERSISTENCE_ERROR"
)

// ItemError names one check item that fails pre-sign validation.
type ItemError struct {
	ItemID  string `json:"item_id"`
	Label   string `json:"label"`
	Message string `json:"message"`
}

// Error is a structured engine error. Items is populated for
// VALIDATION_ERROR only.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Detail  string      `json:"detail,omitempty"`
	Items   []ItemError `json:"items,omitempty"`
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Recoverable reports whether the caller can correct input and retry the
// same operation. Persistence errors are retryable as a whole operation
// since nothing partially committed.
func (e *Error) Recoverable() bool {
	switch e.Code {
	case ErrCodeValidation, ErrCodePersistence:
		return true
	}
	return false
}

// IsCode reports whether err is an engine *Error carrying the given code.
func IsCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

func notFoundErr(entity, id string) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s does not exist", entity),
		Detail:  fmt.Sprintf("%s with id %s does not exist", entity, id),
	}
}

func persistenceErr(op string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{
		Code:    ErrCodePersistence,
		Message: fmt.Sprintf("failed to %s", op),
		Detail:  err.Error(),
	}
}
