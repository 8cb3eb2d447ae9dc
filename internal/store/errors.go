package store

import "errors"

// ErrNotFound indicates the row addressed by an update or delete does not exist.
var ErrNotFound = errors.New("not found")
