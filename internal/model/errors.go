package model

import (
	"errors"
	"fmt"
)

// Domain errors for system definition.
var (
	// ErrNonPositiveMass indicates a body declared with mass <= 0.
	ErrNonPositiveMass = errors.New("model: body mass must be positive")

	// ErrSelfCoupling indicates a body coupled to itself.
	ErrSelfCoupling = errors.New("model: body cannot be coupled to itself")

	// ErrIncompleteCoupling indicates stiffness, damping ratio and coupled-id
	// lists of different lengths.
	ErrIncompleteCoupling = errors.New("model: coupling definition incomplete (array lengths differ)")

	// ErrDuplicateBody indicates a body id declared twice.
	ErrDuplicateBody = errors.New("model: duplicate body id")

	// ErrBodyOrder indicates body ids that are not consecutive starting at 1.
	ErrBodyOrder = errors.New("model: body ids must be consecutive starting at 1")

	// ErrUnconnectedBody indicates a movable body with no coupling to any
	// other body or to ground.
	ErrUnconnectedBody = errors.New("model: body is not connected to the system")

	// ErrUnknownCoupling indicates a coupling that references an undeclared body.
	ErrUnknownCoupling = errors.New("model: coupling references unknown body")
)

// BodyError wraps an error with the id of the offending body.
type BodyError struct {
	Body    int
	Wrapped error
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("body %d: %v", e.Body, e.Wrapped)
}

func (e *BodyError) Unwrap() error {
	return e.Wrapped
}
