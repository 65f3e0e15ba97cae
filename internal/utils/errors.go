package utils

import "fmt"

// AppError carries the failing service operation alongside a message fit
// for API responses. Err keeps the underlying cause reachable through
// errors.Is, which the HTTP layer relies on to map not-found lookups.
type AppError struct {
	Op  string
	Msg string
	Err error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError builds an AppError; err may be nil for plain validation
// failures.
func NewAppError(op, msg string, err error) error {
	return &AppError{Op: op, Msg: msg, Err: err}
}
