package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrReadOnly      = errors.New("preferences are in read-only mode")
	ErrKeyNotFound   = errors.New("key not found")
	ErrNotFound      = errors.New("entity not found")
	ErrClosed        = errors.New("store is closed")
	ErrInvalidOffset = errors.New("snooze offset must be positive")
	ErrDuplicateID   = errors.New("duplicate id")
	ErrInvalidTime   = errors.New("reminder time is required")
	ErrAmbiguousID   = errors.New("id prefix matches more than one entity")
)

// PersistError reports a failed write-through of one collection.
type PersistError struct {
	Key string
	Op  string // "encode" or "write"
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %s: %v", e.Key, e.Op, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
