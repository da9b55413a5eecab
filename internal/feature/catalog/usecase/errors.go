// Package usecase implements the business logic for the catalog feature.
package usecase

import "errors"

var (
	// ErrEntryNotFound is returned when a catalog entry cannot be found by ID,
	// order or name.
	ErrEntryNotFound = errors.New("catalog entry not found")

	// ErrDuplicateOrder is returned when the requested display order is already
	// held by another entry of the same catalog, active or inactive.
	ErrDuplicateOrder = errors.New("duplicate catalog order")

	// ErrDuplicateName is returned when the requested name is already held by
	// another entry of the same catalog, active or inactive.
	ErrDuplicateName = errors.New("duplicate catalog name")
)
