package index

import "fmt"

// StorageError wraps an I/O failure from the underlying storage during
// commit, delete, clear or purge. The triggering call observes it
// directly; the scheduled purge routes it to OnPurgeError.
type StorageError struct {
	Op  Op
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("query index storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
