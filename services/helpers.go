package services

import (
	"errors"
	"fmt"

	"github.com/LarisaDinulescu/quadball-live/repositories"
)

// handleRepositoryError maps repository errors onto the service sentinels.
func handleRepositoryError(err error, notFound error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %s", notFound, what)
	}
	return fmt.Errorf("%w: %s: %v", ErrBackendUnavailable, what, err)
}
