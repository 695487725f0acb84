// Package repository defines the storage interfaces for the booking engine
// along with sentinel errors shared by all implementations. Sentinels let
// the service layer distinguish failure modes without knowing the store:
// ErrConflict is how the booking guard reports that an insert lost to an
// overlapping active booking, whether it was caught by the pre-check or by
// the database exclusion constraint itself.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a booking insert overlaps an existing
// active booking for the same stylist. Handlers translate this into 409.
var ErrConflict = errors.New("booking conflict")
