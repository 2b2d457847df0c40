// Package service contains the booking lifecycle coordinator and the
// queue publisher. The coordinator validates input, delegates all
// capacity decisions to the reservation engine, and fires best-effort
// notifications after commit. No SQL lives here.
package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/queue"
	"github.com/iliyamo/travel-booking/internal/reservation"
)

// Reserver is the slice of the reservation engine the coordinator
// drives. Satisfied by *reservation.Engine.
type Reserver interface {
	Reserve(ctx context.Context, userID, travelOptionID uint64, seats int) (*model.Booking, error)
	Release(ctx context.Context, userID uint64, ref uuid.UUID, reason string) (*model.Booking, error)
}

// BookingReader serves booking reads outside reservation transactions.
// Satisfied by *repository.BookingRepo.
type BookingReader interface {
	ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
	GetByReferenceForUser(ctx context.Context, ref uuid.UUID, userID uint64) (*model.Booking, error)
}

// Notifier delivers booking events to the notification channel. All
// outcomes are advisory; the coordinator never propagates its errors.
type Notifier interface {
	BookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
	BookingCancelled(ctx context.Context, ev queue.BookingCancelledEvent) error
}

// notifyTimeout bounds the detached notification publish so a slow
// broker cannot pile up goroutines indefinitely.
const notifyTimeout = 10 * time.Second

// BookingService orchestrates the booking lifecycle:
//
//	[none] --Book--> CONFIRMED --Cancel (window open)--> CANCELLED (terminal)
type BookingService struct {
	engine   Reserver
	bookings BookingReader
	notifier Notifier
	now      func() time.Time
}

// NewBookingService wires the coordinator. notifier may be nil, in
// which case notifications are skipped entirely.
func NewBookingService(engine Reserver, bookings BookingReader, notifier Notifier) *BookingService {
	return &BookingService{engine: engine, bookings: bookings, notifier: notifier, now: time.Now}
}

// WithClock overrides the time source; used by tests.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// Book reserves seats for a user. Seat-count validation happens here;
// the capacity check belongs to the engine, under the row lock. The
// confirmation notification is dispatched after commit on a detached
// goroutine and can neither fail nor delay the booking.
func (s *BookingService) Book(ctx context.Context, userID, travelOptionID uint64, seats int) (*model.Booking, error) {
	if seats < 1 {
		return nil, reservation.ErrInvalidSeatCount
	}
	b, err := s.engine.Reserve(ctx, userID, travelOptionID, seats)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		go s.notifyConfirmed(b)
	}
	return b, nil
}

// Cancel releases a booking. On success the seats are back in the
// inventory and the refund is recorded; the cancellation notification
// follows the same fire-and-forget rule as Book.
func (s *BookingService) Cancel(ctx context.Context, userID uint64, ref uuid.UUID, reason string) (*model.Booking, error) {
	b, err := s.engine.Release(ctx, userID, ref, reason)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		go s.notifyCancelled(b)
	}
	return b, nil
}

// CancellationQuote previews a cancellation without mutating anything.
type CancellationQuote struct {
	RefundAmount    decimal.Decimal `json:"refund_amount"`
	CancellationFee decimal.Decimal `json:"cancellation_fee"`
	FeePercent      int             `json:"fee_percent"`
}

// Quote computes the refund a user would receive for cancelling now.
// It fails with the same errors Cancel would, so the UI can show the
// rejection before the user commits.
func (s *BookingService) Quote(ctx context.Context, userID uint64, ref uuid.UUID) (*CancellationQuote, error) {
	b, err := s.bookings.GetByReferenceForUser(ctx, ref, userID)
	if err != nil {
		return nil, err
	}
	if b.Status == model.BookingCancelled {
		return nil, reservation.ErrAlreadyCancelled
	}
	now := s.now().UTC()
	if !reservation.CancellationOpen(b.TravelOption.DepartureAt, now) {
		return nil, reservation.ErrWindowClosed
	}
	refund := reservation.RefundAmount(b.TotalPrice, reservation.HoursUntil(b.TravelOption.DepartureAt, now))
	fee := b.TotalPrice.Sub(refund)
	percent := 100
	if refund.IsPositive() && b.TotalPrice.IsPositive() {
		percent = int(fee.Div(b.TotalPrice).Mul(decimal.NewFromInt(100)).IntPart())
	}
	return &CancellationQuote{RefundAmount: refund, CancellationFee: fee, FeePercent: percent}, nil
}

// ListForUser returns the user's bookings, newest first.
func (s *BookingService) ListForUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// GetForUser returns one booking by reference, owner-scoped.
func (s *BookingService) GetForUser(ctx context.Context, userID uint64, ref uuid.UUID) (*model.Booking, error) {
	return s.bookings.GetByReferenceForUser(ctx, ref, userID)
}

func (s *BookingService) notifyConfirmed(b *model.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	ev := queue.BookingConfirmedEvent{
		Reference:   b.Reference.String(),
		UserID:      b.UserID,
		TravelID:    b.TravelOption.TravelID,
		Kind:        string(b.TravelOption.Kind),
		Source:      b.TravelOption.Source,
		Destination: b.TravelOption.Destination,
		DepartureAt: b.TravelOption.DepartureAt.UTC().Format(time.RFC3339),
		Seats:       b.Seats,
		TotalPrice:  b.TotalPrice.StringFixed(2),
		BookedAt:    b.BookedAt.UTC().Format(time.RFC3339),
	}
	if err := s.notifier.BookingConfirmed(ctx, ev); err != nil {
		log.Printf("notifier: booking confirmed event for %s failed: %v", ev.Reference, err)
	}
}

func (s *BookingService) notifyCancelled(b *model.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	refund := "0.00"
	if b.RefundAmount != nil {
		refund = b.RefundAmount.StringFixed(2)
	}
	cancelledAt := ""
	if b.CancelledAt != nil {
		cancelledAt = b.CancelledAt.UTC().Format(time.RFC3339)
	}
	ev := queue.BookingCancelledEvent{
		Reference:    b.Reference.String(),
		UserID:       b.UserID,
		TravelID:     b.TravelOption.TravelID,
		Source:       b.TravelOption.Source,
		Destination:  b.TravelOption.Destination,
		DepartureAt:  b.TravelOption.DepartureAt.UTC().Format(time.RFC3339),
		Seats:        b.Seats,
		TotalPrice:   b.TotalPrice.StringFixed(2),
		RefundAmount: refund,
		Reason:       b.CancellationReason,
		CancelledAt:  cancelledAt,
	}
	if err := s.notifier.BookingCancelled(ctx, ev); err != nil {
		log.Printf("notifier: booking cancelled event for %s failed: %v", ev.Reference, err)
	}
}
