// Package entity defines the domain models for the catalog feature.
package entity

import "time"

// Flag is the two-value active/inactive marker used by catalog entries.
// It is modeled as an enumeration rather than a raw character so the
// storage encoding ("Y"/"N" columns) does not leak into business logic.
type Flag string

const (
	// FlagActive marks an entry as visible and selectable.
	FlagActive Flag = "Y"

	// FlagInactive marks an entry as logically deleted. The entry stays
	// in storage and keeps its order and name reserved.
	FlagInactive Flag = "N"
)

// Valid reports whether the flag holds one of the two allowed values.
func (f Flag) Valid() bool {
	return f == FlagActive || f == FlagInactive
}

// Entry represents one record of an ordered classification catalog
// (a trading type or an investment asset class).
// DisplayOrder is unique across all entries of the same catalog,
// active and inactive alike; gaps are tolerated, duplicates are not.
type Entry struct {
	ID           uint
	DisplayOrder int
	Name         string
	Icon         string
	IsActive     Flag

	// Audit columns. Set by the storage layer, never by business logic.
	CreatedBy  uint
	CreatedAt  time.Time
	ModifiedBy uint
	ModifiedAt time.Time
}
