package reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-booking/internal/model"
)

// Store opens reservation transactions. The production implementation
// wraps *sql.DB (see repository.ReservationStore); tests use an
// in-memory fake with a per-row mutex.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a single reservation transaction. LockTravelOption must take an
// exclusive lock on the row that is held until Commit or Rollback, so
// that two concurrent transactions against the same travel option
// serialize on it. All writes become visible atomically at Commit.
type Tx interface {
	// LockTravelOption reads a travel option under an exclusive row
	// lock. Returns ErrTravelOptionNotFound when no such row exists.
	LockTravelOption(ctx context.Context, id uint64) (*model.TravelOption, error)

	// SetAvailableSeats writes the seat counter of a travel option.
	// Callers hold the row lock from LockTravelOption.
	SetAvailableSeats(ctx context.Context, id uint64, seats int) error

	// InsertBooking persists a new booking and fills in its generated ID.
	InsertBooking(ctx context.Context, b *model.Booking) error

	// BookingByReference loads a booking and its travel option snapshot,
	// locking the booking row. Returns ErrBookingNotFound when absent.
	BookingByReference(ctx context.Context, ref uuid.UUID) (*model.Booking, error)

	// MarkCancelled writes the terminal state of a cancelled booking
	// (status, cancelled_at, cancellation_reason, refund_amount).
	MarkCancelled(ctx context.Context, b *model.Booking) error

	Commit() error
	Rollback() error
}

// Engine guarantees at-most-available-capacity booking under concurrent
// requests and exact capacity restoration on cancellation. It owns all
// mutation of TravelOption.AvailableSeats.
type Engine struct {
	store Store
	now   func() time.Time
}

// NewEngine returns an Engine backed by the given store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// WithClock overrides the engine's time source. Used by tests to pin
// the cancellation window and refund computation.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Reserve atomically books seats on a travel option for a user. It
// re-reads the seat counter under the row lock — the single
// authoritative capacity check — then decrements it and creates a
// CONFIRMED booking priced from the locked row, committing both writes
// as one unit. On InsufficientCapacityError nothing is written.
func (e *Engine) Reserve(ctx context.Context, userID, travelOptionID uint64, seats int) (*model.Booking, error) {
	if seats < 1 {
		return nil, ErrInvalidSeatCount
	}
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("reservation.Engine.Reserve: begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	opt, err := tx.LockTravelOption(ctx, travelOptionID)
	if err != nil {
		return nil, err
	}
	if seats > opt.AvailableSeats {
		return nil, &InsufficientCapacityError{Available: opt.AvailableSeats}
	}
	if err := tx.SetAvailableSeats(ctx, opt.ID, opt.AvailableSeats-seats); err != nil {
		return nil, fmt.Errorf("reservation.Engine.Reserve: decrement seats: %w", err)
	}

	b := &model.Booking{
		Reference:      uuid.New(),
		UserID:         userID,
		TravelOptionID: opt.ID,
		Seats:          seats,
		TotalPrice:     opt.Price.Mul(decimal.NewFromInt(int64(seats))),
		Status:         model.BookingConfirmed,
		BookedAt:       e.now().UTC(),
	}
	if err := tx.InsertBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("reservation.Engine.Reserve: insert booking: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("reservation.Engine.Reserve: commit: %w", err)
	}
	committed = true

	opt.AvailableSeats -= seats
	b.TravelOption = opt
	return b, nil
}

// Release cancels a CONFIRMED booking owned by userID: it restores the
// booked seats to the travel option under the row lock, computes the
// refund from the policy, and marks the booking CANCELLED — one atomic
// unit. The CONFIRMED→CANCELLED transition is irreversible.
func (e *Engine) Release(ctx context.Context, userID uint64, ref uuid.UUID, reason string) (*model.Booking, error) {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("reservation.Engine.Release: begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := tx.BookingByReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrNotOwner
	}
	if b.Status == model.BookingCancelled {
		return nil, ErrAlreadyCancelled
	}

	now := e.now().UTC()
	if !CancellationOpen(b.TravelOption.DepartureAt, now) {
		return nil, ErrWindowClosed
	}

	opt, err := tx.LockTravelOption(ctx, b.TravelOptionID)
	if err != nil {
		return nil, err
	}
	if err := tx.SetAvailableSeats(ctx, opt.ID, opt.AvailableSeats+b.Seats); err != nil {
		return nil, fmt.Errorf("reservation.Engine.Release: restore seats: %w", err)
	}

	refund := RefundAmount(b.TotalPrice, HoursUntil(opt.DepartureAt, now))
	if reason == "" {
		reason = "User requested cancellation"
	}
	b.Status = model.BookingCancelled
	b.CancelledAt = &now
	b.CancellationReason = reason
	b.RefundAmount = &refund
	if err := tx.MarkCancelled(ctx, b); err != nil {
		return nil, fmt.Errorf("reservation.Engine.Release: mark cancelled: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("reservation.Engine.Release: commit: %w", err)
	}
	committed = true

	opt.AvailableSeats += b.Seats
	b.TravelOption = opt
	return b, nil
}
