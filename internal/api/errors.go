package api

import "errors"

// Sentinel errors for service operations.
var (
	ErrNotFound = errors.New("resource not found")
	ErrInvalid  = errors.New("invalid request")
	ErrReadOnly = errors.New("built-in perspectives are read-only")
)
