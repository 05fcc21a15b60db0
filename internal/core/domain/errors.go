package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers classify with errors.Is; the wrapped message carries
// the entity and id (or seat) the failure is about.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrPartialFailure reports that the primary write committed but one or
	// more follow-up writes (inverse references, cascades) did not.
	ErrPartialFailure = errors.New("partially applied")
)

var (
	ErrNoSeatsAvailable = fmt.Errorf("%w: no seats available", ErrConflict)
	ErrSeatTaken        = fmt.Errorf("%w: seat already booked", ErrConflict)
	ErrTicketUsed       = fmt.Errorf("%w: ticket already used", ErrConflict)
	ErrEmailTaken       = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrUsernameTaken    = fmt.Errorf("%w: username already taken", ErrConflict)
	ErrCustomerExists   = fmt.Errorf("%w: customer profile already exists for this user", ErrConflict)
	ErrInactiveUser     = fmt.Errorf("%w: inactive user", ErrForbidden)

	ErrIdempotencyKeyReused = fmt.Errorf("%w: idempotency key already used for a different purchase", ErrConflict)
	ErrPurchaseInProgress   = fmt.Errorf("%w: purchase with this idempotency key is in progress", ErrConflict)
)

// NotFoundError builds a NotFound error naming the entity kind and id.
func NotFoundError(entity, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, entity, id)
}

// Partial wraps the follow-up failures of an operation whose primary write
// already committed.
func Partial(op string, errs ...error) error {
	joined := errors.Join(errs...)
	if joined == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrPartialFailure, op, joined)
}
