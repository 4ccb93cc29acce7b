package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrStore      = errors.New("store error")
	ErrTransport  = errors.New("transport error")

	// ErrBlocked marks a delivery that failed because the recipient blocked the bot.
	ErrBlocked = fmt.Errorf("recipient blocked the bot: %w", ErrTransport)
)

// AppError carries one of the sentinel kinds above plus a human-readable message.
type AppError struct {
	Err     error  // sentinel kind
	Message string // human-readable message
	Field   string // optional: input field that failed validation
	Cause   error  // optional: underlying driver or transport error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the sentinel kind and the underlying cause to errors.Is/As.
func (e *AppError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// NotFound reports a missing resource
func NotFound(resource string, key any) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, key),
	}
}

// ValidationFailed reports a rejected input field
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a resource that already exists
func Conflict(resource string, key any) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists: %v", resource, key),
	}
}

// Store wraps a persistence failure for the named operation.
func Store(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrStore,
		Message: "failed to " + op,
		Cause:   cause,
	}
}

// Transport wraps a chat delivery failure.
func Transport(cause error) *AppError {
	return &AppError{
		Err:     ErrTransport,
		Message: "chat delivery failed",
		Cause:   cause,
	}
}

// Blocked wraps a delivery failure caused by the recipient blocking the bot.
func Blocked(cause error) *AppError {
	return &AppError{
		Err:     ErrBlocked,
		Message: "recipient blocked the bot",
		Cause:   cause,
	}
}

// Kind checks that see through wrapping
func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsConflict(err error) bool   { return errors.Is(err, ErrConflict) }
func IsBlocked(err error) bool    { return errors.Is(err, ErrBlocked) }
