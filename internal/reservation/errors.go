// Package reservation implements the transactional seat inventory core:
// atomic check-and-decrement on booking, atomic restore plus refund on
// cancellation, and the refund policy itself. All capacity decisions are
// made under an exclusive per-row lock taken through the Store; any
// capacity check done elsewhere is advisory only.
package reservation

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSeatCount is returned when fewer than one seat is requested.
	ErrInvalidSeatCount = errors.New("number of seats must be at least 1")

	// ErrTravelOptionNotFound is returned when the travel option does not exist.
	ErrTravelOptionNotFound = errors.New("travel option not found")

	// ErrBookingNotFound is returned when no booking matches the reference.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrNotOwner is returned when a booking belongs to a different user.
	ErrNotOwner = errors.New("booking belongs to another user")

	// ErrAlreadyCancelled is returned on a cancellation attempt against a
	// booking that is already in its terminal CANCELLED state. State is
	// unchanged; callers surface this as an informational notice.
	ErrAlreadyCancelled = errors.New("booking is already cancelled")

	// ErrWindowClosed is returned when cancellation is attempted with two
	// hours or less remaining until departure.
	ErrWindowClosed = errors.New("cancellations must be made more than 2 hours before departure")
)

// InsufficientCapacityError is returned when the requested seat count
// exceeds the available seats read under the row lock. Available carries
// the count seen at lock-check time so callers can offer a corrected
// request.
type InsufficientCapacityError struct {
	Available int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("only %d seats available", e.Available)
}
