package services

import "errors"

// Errors shared by the services and the HTTP error mapping.
var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrTournamentNotFound = errors.New("tournament not found")

	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Backend REST API or push channel failed.
	ErrBackendUnavailable = errors.New("tournament backend unavailable")
)
