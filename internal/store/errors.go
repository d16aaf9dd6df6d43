package store

import "errors"

// ErrNotFound is returned when a row does not exist. Both stores write via
// ON CONFLICT upserts, so uniqueness violations cannot surface as errors.
var ErrNotFound = errors.New("not found")
