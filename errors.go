package querymon

import (
	"errors"
)

var (
	// ErrClosed is returned when an operation is attempted on a closed
	// monitor.
	ErrClosed = errors.New("monitor closed")

	// ErrInvalidArgument is returned for malformed input: an empty
	// query id, an id repeated within one Register call, or a nil
	// document in a batch.
	ErrInvalidArgument = errors.New("invalid argument")
)
