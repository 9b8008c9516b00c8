package storage

import "errors"

// ErrPersistence is the sentinel that all store I/O failures wrap. Callers
// use errors.Is to distinguish a failed write from a validation error.
var ErrPersistence = errors.New("persistence failure")

// ErrNotFound is returned when a row doesn't exist in the store.
type ErrNotFound struct {
	Kind string
	ID   string
}

func (e ErrNotFound) Error() string {
	if e.ID == "" {
		return e.Kind + " not found"
	}

	return e.Kind + " not found: " + e.ID
}
