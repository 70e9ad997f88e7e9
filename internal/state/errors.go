package state

import (
	"errors"
	"fmt"
)

var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrProjectExists    = errors.New("project already exists")
	ErrActivityNotFound = errors.New("activity not found")
	ErrActivityExists   = errors.New("activity already exists")
	ErrTaskNotFound     = errors.New("task not found")
	ErrDemandNotFound   = errors.New("recurrent demand not found")
	ErrInvalidMonth     = errors.New("month must be between 1 and 12")
	ErrInvalidView      = errors.New("invalid view")
)

// RemoteError reports that the mirror of a mutation failed. Whether the local
// change stands depends on the mutation's durability class.
type RemoteError struct {
	Op         Mutation
	Durability Durability
	Err        error
}

func (e *RemoteError) Error() string {
	switch e.Durability {
	case Confirmed:
		return fmt.Sprintf("%s was not applied, remote sync failed: %v", e.Op, e.Err)
	case Compensated:
		return fmt.Sprintf("%s was reverted, remote sync failed: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s applied locally but remote sync failed: %v", e.Op, e.Err)
	}
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Reverted reports whether the local state no longer carries the mutation.
func (e *RemoteError) Reverted() bool {
	return e.Durability == Confirmed || e.Durability == Compensated
}
