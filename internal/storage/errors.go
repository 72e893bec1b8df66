package storage

import "errors"

var (
	// ErrNotFound is returned when no cheque exists for the requested id.
	ErrNotFound = errors.New("cheque not found")
	// ErrAlreadyExists is returned by Create when the id is already stored.
	ErrAlreadyExists = errors.New("cheque already exists")
	// ErrConflict is returned by UpdateStatus when the stored status no longer
	// matches the expected one.
	ErrConflict = errors.New("cheque status changed concurrently")
)
