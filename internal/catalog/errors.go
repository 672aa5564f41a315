package catalog

import "errors"

var (
	// ErrNotFound means no row matched the requested id or slug.
	ErrNotFound = errors.New("content not found")
	// ErrConflict means an explicitly supplied slug is already in use by
	// another row of the same table.
	ErrConflict = errors.New("slug already in use")
	// ErrInvalidInput covers malformed payload fields: missing name or
	// link, unparseable post date, slug that fails the format check.
	ErrInvalidInput = errors.New("invalid input")
)
