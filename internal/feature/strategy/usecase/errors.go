package usecase

import "errors"

// Sentinel errors returned by the strategy usecase and its repositories.
// Handlers map these to HTTP status codes with errors.Is.
var (
	// ErrStrategyNotFound indicates that no strategy matches the given ID.
	ErrStrategyNotFound = errors.New("strategy not found")

	// ErrStrategyNameTaken indicates that another strategy already uses the name.
	ErrStrategyNameTaken = errors.New("strategy name already taken")

	// ErrCatalogRefMissing indicates that a referenced trading type or asset
	// class does not exist or has been deactivated.
	ErrCatalogRefMissing = errors.New("referenced catalog entry not available")

	// ErrInvalidPeriod indicates a malformed or inverted statistic period.
	ErrInvalidPeriod = errors.New("invalid statistic period")
)
