package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// ValidationError reports malformed or missing input, naming the offending
// field. Always recoverable by the caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// InvalidStateError reports an operation attempted outside its legal
// lifecycle state, e.g. editing a delivered material order.
type InvalidStateError struct {
	Current   string
	Attempted string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s while status is %s", e.Attempted, e.Current)
}

// AuthorizationError reports an actor lacking the role or outlet scope an
// operation requires.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return "not authorized: " + e.Reason
}

// InsufficientStockError reports a delivery or adjustment that would drive a
// raw material's stock negative. The whole mutation is rolled back before
// this error is returned.
type InsufficientStockError struct {
	MaterialID   string
	MaterialName string
	Requested    int64
	Available    int64
}

func (e *InsufficientStockError) Shortfall() int64 {
	return e.Requested - e.Available
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d (short %d)",
		e.MaterialName, e.Requested, e.Available, e.Shortfall())
}
