package store

import (
	"errors"
	"fmt"
)

// ErrEmptyRef is returned when a reference carries neither an id nor a value.
var ErrEmptyRef = errors.New("reference has neither id nor value")

// NotFoundError reports a lookup by an id that was never issued or has
// been deleted.
type NotFoundError struct {
	Table string
	ID    int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Table, e.ID)
}

// CorruptDataError reports stored rows that break the action invariants:
// an unregistered kind, a missing kind row, or a NULL in a required column.
type CorruptDataError struct {
	ID     int64
	Reason string
	Err    error
}

func (e *CorruptDataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt action %d: %s: %v", e.ID, e.Reason, e.Err)
	}
	return fmt.Sprintf("corrupt action %d: %s", e.ID, e.Reason)
}

func (e *CorruptDataError) Unwrap() error { return e.Err }
