// Package common holds the error values, logging setup and retry helper
// shared by every footprint package.
package common

import (
	"errors"
	"fmt"
)

// Sentinel errors. Wrap them with fmt.Errorf("...: %w") and test with errors.Is.
var (
	// Input errors.
	ErrInvalidInput = errors.New("invalid input")

	// Remote service errors.
	ErrFetch       = errors.New("fetch failed")
	ErrBadResponse = errors.New("unexpected response body")

	// Database errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError carries a message fit for the terminal next to the underlying
// error. The root command prints only UserMessage.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
