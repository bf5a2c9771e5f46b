package core

import "fmt"

// ValidationError marks input that was rejected before any mutation ran.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Err.Error()
	}
	return fmt.Sprintf("validation: %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// PermissionError marks an operation refused because the actor lacks the
// required capability. No partial mutation happens.
type PermissionError struct {
	Actor      string
	Permission Permission
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission: actor %q lacks %q", e.Actor, e.Permission)
}

// PersistenceError marks a storage failure. When it happens mid-sequence the
// ledger may be left partially mutated; callers must treat it as requiring a
// reload or manual reconciliation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
