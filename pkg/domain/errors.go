package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is by callers.
var (
	// ErrInvalidArgument marks construction-time validation failures.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMissingAssociation marks an absent or unknown mandatory association.
	ErrMissingAssociation = errors.New("missing required association")
	// ErrNotFound marks lookups of unregistered ids.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate marks registration of an id that is already present.
	ErrDuplicate = errors.New("already exists")
	// ErrScheduling marks failures reported by a Scheduler.
	ErrScheduling = errors.New("scheduling failed")
)

// ValidationError reports the field that failed a guard.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidArgument.
func (e *ValidationError) Unwrap() error { return ErrInvalidArgument }

// NotFoundError is returned when a mutator references an unregistered id.
type NotFoundError struct {
	Entity EntityType
	ID     ID
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// Is reports whether target is ErrNotFound.
func (e NotFoundError) Is(target error) bool { return target == ErrNotFound }

// AssociationError is returned when a mandatory parent is missing.
type AssociationError struct {
	Entity EntityType
	Parent EntityType
	ID     ID
}

func (e AssociationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s requires a %s", e.Entity, e.Parent)
	}
	return fmt.Sprintf("%s requires %s %s, which is not registered", e.Entity, e.Parent, e.ID)
}

// Unwrap lets errors.Is match ErrMissingAssociation.
func (e AssociationError) Unwrap() error { return ErrMissingAssociation }

// DuplicateError is returned when an id or natural key is registered twice.
type DuplicateError struct {
	Entity EntityType
	Key    string
}

func (e DuplicateError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Entity, e.Key)
}

// Unwrap lets errors.Is match ErrDuplicate.
func (e DuplicateError) Unwrap() error { return ErrDuplicate }

// SchedulingError is produced by Scheduler implementations. Callers propagate
// it unchanged.
type SchedulingError struct {
	Reason string
	Err    error
}

func (e *SchedulingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scheduling failed: %s: %v", e.Reason, e.Err)
	}
	return "scheduling failed: " + e.Reason
}

// Is reports whether target is ErrScheduling.
func (e *SchedulingError) Is(target error) bool { return target == ErrScheduling }

// Unwrap exposes the underlying cause, if any.
func (e *SchedulingError) Unwrap() error { return e.Err }
