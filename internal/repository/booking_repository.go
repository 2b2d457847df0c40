package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-booking/internal/model"
)

// BookingRepo provides the read side of the booking ledger: listings
// and detail lookups outside any reservation transaction. These reads
// take no locks and may observe inventory staleness; all booking
// mutation goes through the reservation engine.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `b.id, b.reference, b.user_id, b.travel_option_id, b.seats, b.total_price, b.status,
       b.booked_at, b.cancelled_at, b.cancellation_reason, b.refund_amount`

const travelColumns = `t.id, t.travel_id, t.kind, t.source, t.destination, t.departure_at, t.price, t.available_seats, t.created_at`

// ListByUser returns all bookings of a user, newest first, each with a
// travel option snapshot attached.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	q := `SELECT ` + bookingColumns + `, ` + travelColumns + `
	      FROM bookings b
	      JOIN travel_options t ON t.id = b.travel_option_id
	      WHERE b.user_id = ?
	      ORDER BY b.booked_at DESC, b.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("repository.BookingRepo.ListByUser: %w", err)
	}
	defer rows.Close()

	bookings := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBookingWithTravel(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.BookingRepo.ListByUser: scan: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.BookingRepo.ListByUser: rows: %w", err)
	}
	return bookings, nil
}

// GetByReferenceForUser returns a single booking by its public
// reference, restricted to the owning user. Returns ErrNotFound when
// the booking does not exist or belongs to someone else.
func (r *BookingRepo) GetByReferenceForUser(ctx context.Context, ref uuid.UUID, userID uint64) (*model.Booking, error) {
	q := `SELECT ` + bookingColumns + `, ` + travelColumns + `
	      FROM bookings b
	      JOIN travel_options t ON t.id = b.travel_option_id
	      WHERE b.reference = ? AND b.user_id = ?`
	b, err := scanBookingWithTravel(r.db.QueryRowContext(ctx, q, ref.String(), userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository.BookingRepo.GetByReferenceForUser: %w", err)
	}
	return b, nil
}

// CountByTravelOption reports how many bookings (any status) reference
// a travel option. Used to enforce restrict-delete.
func (r *BookingRepo) CountByTravelOption(ctx context.Context, travelOptionID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM bookings WHERE travel_option_id = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, q, travelOptionID).Scan(&n); err != nil {
		return 0, fmt.Errorf("repository.BookingRepo.CountByTravelOption: %w", err)
	}
	return n, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanBooking maps the booking columns into a model.Booking.
func scanBooking(s scanner) (*model.Booking, error) {
	var (
		b         model.Booking
		ref       string
		status    string
		cancelled sql.NullTime
		reason    sql.NullString
		refund    decimal.NullDecimal
	)
	err := s.Scan(&b.ID, &ref, &b.UserID, &b.TravelOptionID, &b.Seats, &b.TotalPrice, &status,
		&b.BookedAt, &cancelled, &reason, &refund)
	if err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("bad booking reference %q: %w", ref, err)
	}
	b.Reference = parsed
	b.Status = model.BookingStatus(status)
	if cancelled.Valid {
		at := cancelled.Time
		b.CancelledAt = &at
	}
	b.CancellationReason = reason.String
	if refund.Valid {
		amount := refund.Decimal
		b.RefundAmount = &amount
	}
	return &b, nil
}

// scanBookingWithTravel maps booking columns followed by travel option
// columns from a joined row.
func scanBookingWithTravel(s scanner) (*model.Booking, error) {
	var (
		b         model.Booking
		opt       model.TravelOption
		ref       string
		status    string
		cancelled sql.NullTime
		reason    sql.NullString
		refund    decimal.NullDecimal
	)
	err := s.Scan(&b.ID, &ref, &b.UserID, &b.TravelOptionID, &b.Seats, &b.TotalPrice, &status,
		&b.BookedAt, &cancelled, &reason, &refund,
		&opt.ID, &opt.TravelID, &opt.Kind, &opt.Source, &opt.Destination,
		&opt.DepartureAt, &opt.Price, &opt.AvailableSeats, &opt.CreatedAt)
	if err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("bad booking reference %q: %w", ref, err)
	}
	b.Reference = parsed
	b.Status = model.BookingStatus(status)
	if cancelled.Valid {
		at := cancelled.Time
		b.CancelledAt = &at
	}
	b.CancellationReason = reason.String
	if refund.Valid {
		amount := refund.Decimal
		b.RefundAmount = &amount
	}
	b.TravelOption = &opt
	return &b, nil
}
