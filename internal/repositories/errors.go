package repositories

import "errors"

// ErrNotFound is returned when no record matches a lookup. For tasks this
// covers both a missing id and an id owned by someone else, so callers
// cannot tell the two apart.
var ErrNotFound = errors.New("record not found")
