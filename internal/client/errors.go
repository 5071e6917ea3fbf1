package client

import (
	"errors"

	"Mansoor88-6/timeclock/internal/timecard"
)

type AuthError struct {
	Message    string
	StatusCode int
}

func (e *AuthError) Error() string {
	return e.Message
}

type RateLimitError struct {
	Message    string
	StatusCode int
}

func (e *RateLimitError) Error() string {
	return e.Message
}

type BadRequestError struct {
	Message    string
	StatusCode int
}

func (e *BadRequestError) Error() string {
	return e.Message
}

// ConflictError means the backend already holds a submission for the date.
type ConflictError struct {
	Message    string
	StatusCode int
}

func (e *ConflictError) Error() string {
	return e.Message
}

// Is lets callers test for timecard.ErrAlreadySubmitted.
func (e *ConflictError) Is(target error) bool {
	return target == timecard.ErrAlreadySubmitted
}

type BackendError struct {
	Message    string
	StatusCode int
}

func (e *BackendError) Error() string {
	return e.Message
}

// NetworkError wraps a transport failure (backend unreachable, timeout).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "backend unreachable: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether retrying the same request later may succeed.
func IsTransient(err error) bool {
	var (
		netErr     *NetworkError
		rateErr    *RateLimitError
		backendErr *BackendError
	)
	switch {
	case errors.As(err, &netErr), errors.As(err, &rateErr):
		return true
	case errors.As(err, &backendErr):
		return backendErr.StatusCode >= 500
	default:
		return false
	}
}
