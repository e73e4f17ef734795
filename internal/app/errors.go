package app

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or out-of-policy input. Handlers map it
	// to 400. Use validationErr to attach a client-facing message.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a lookup by an unknown identifier. Handlers map it
	// to 404.
	ErrNotFound = errors.New("not found")

	// ErrUsernameTaken is returned when registering or renaming to a
	// username that already exists. Handlers map it to 409.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials is returned on login mismatch. The message is
	// shown to end users and does not reveal whether the account exists.
	ErrInvalidCredentials = errors.New("incorrect username or password")
)

// ValidationError carries a client-facing message while still matching
// ErrValidation under errors.Is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func validationErr(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
