package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/reservation"
)

// ReservationStore adapts *sql.DB to the reservation engine's Store
// interface. Row locks are taken with SELECT ... FOR UPDATE and held
// until the transaction commits or rolls back, which serializes all
// concurrent reservation attempts against the same travel option.
type ReservationStore struct {
	db *sql.DB
}

// NewReservationStore returns a ReservationStore bound to the given database.
func NewReservationStore(db *sql.DB) *ReservationStore {
	return &ReservationStore{db: db}
}

// Begin opens a reservation transaction.
func (s *ReservationStore) Begin(ctx context.Context) (reservation.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &reservationTx{tx: tx}, nil
}

type reservationTx struct {
	tx *sql.Tx
}

func (t *reservationTx) LockTravelOption(ctx context.Context, id uint64) (*model.TravelOption, error) {
	const q = `SELECT id, travel_id, kind, source, destination, departure_at, price, available_seats, created_at
	           FROM travel_options
	           WHERE id = ?
	           FOR UPDATE`
	var opt model.TravelOption
	err := t.tx.QueryRowContext(ctx, q, id).Scan(
		&opt.ID, &opt.TravelID, &opt.Kind, &opt.Source, &opt.Destination,
		&opt.DepartureAt, &opt.Price, &opt.AvailableSeats, &opt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrTravelOptionNotFound
		}
		return nil, err
	}
	return &opt, nil
}

func (t *reservationTx) SetAvailableSeats(ctx context.Context, id uint64, seats int) error {
	const q = `UPDATE travel_options SET available_seats = ? WHERE id = ?`
	_, err := t.tx.ExecContext(ctx, q, seats, id)
	return err
}

func (t *reservationTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (reference, user_id, travel_option_id, seats, total_price, status, booked_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := t.tx.ExecContext(ctx, q,
		b.Reference.String(), b.UserID, b.TravelOptionID, b.Seats, b.TotalPrice, string(b.Status), b.BookedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// BookingByReference loads the booking row under lock together with a
// snapshot of its travel option. The booking lock prevents two
// concurrent cancellations of the same booking from both observing
// CONFIRMED; lock order is always booking first, then travel option.
func (t *reservationTx) BookingByReference(ctx context.Context, ref uuid.UUID) (*model.Booking, error) {
	const q = `SELECT id, reference, user_id, travel_option_id, seats, total_price, status,
	                  booked_at, cancelled_at, cancellation_reason, refund_amount
	           FROM bookings
	           WHERE reference = ?
	           FOR UPDATE`
	b, err := scanBooking(t.tx.QueryRowContext(ctx, q, ref.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrBookingNotFound
		}
		return nil, err
	}
	const optQ = `SELECT id, travel_id, kind, source, destination, departure_at, price, available_seats, created_at
	              FROM travel_options WHERE id = ?`
	var opt model.TravelOption
	err = t.tx.QueryRowContext(ctx, optQ, b.TravelOptionID).Scan(
		&opt.ID, &opt.TravelID, &opt.Kind, &opt.Source, &opt.Destination,
		&opt.DepartureAt, &opt.Price, &opt.AvailableSeats, &opt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.TravelOption = &opt
	return b, nil
}

func (t *reservationTx) MarkCancelled(ctx context.Context, b *model.Booking) error {
	const q = `UPDATE bookings
	           SET status = ?, cancelled_at = ?, cancellation_reason = ?, refund_amount = ?
	           WHERE id = ?`
	_, err := t.tx.ExecContext(ctx, q,
		string(b.Status), b.CancelledAt, b.CancellationReason, b.RefundAmount, b.ID)
	return err
}

func (t *reservationTx) Commit() error   { return t.tx.Commit() }
func (t *reservationTx) Rollback() error { return t.tx.Rollback() }
