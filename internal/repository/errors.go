package repository

import "errors"

// ErrNotFound is returned when a requested template or service item does not
// exist in the database.
var ErrNotFound = errors.New("not found")
