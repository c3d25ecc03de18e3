package domain

import "errors"

var (
	// ErrInvalidInput is the only condition HandleTurn reports to its caller.
	ErrInvalidInput     = errors.New("invalid input")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionNotActive = errors.New("session is not active")
)
