package repository

import "errors"

// ErrNotFound is returned when a requested record does not exist in the store.
var ErrNotFound = errors.New("not found")

// ErrUnsupportedScheme is returned by Open for connection strings it cannot route.
var ErrUnsupportedScheme = errors.New("unsupported database url scheme")
