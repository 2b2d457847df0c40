package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/queue"
	"github.com/iliyamo/travel-booking/internal/reservation"
)

type stubReserver struct {
	booking *model.Booking
	err     error
	calls   int
}

func (s *stubReserver) Reserve(ctx context.Context, userID, travelOptionID uint64, seats int) (*model.Booking, error) {
	s.calls++
	return s.booking, s.err
}

func (s *stubReserver) Release(ctx context.Context, userID uint64, ref uuid.UUID, reason string) (*model.Booking, error) {
	s.calls++
	return s.booking, s.err
}

type stubReader struct {
	booking *model.Booking
	err     error
}

func (s *stubReader) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []model.Booking{*s.booking}, nil
}

func (s *stubReader) GetByReferenceForUser(ctx context.Context, ref uuid.UUID, userID uint64) (*model.Booking, error) {
	return s.booking, s.err
}

// recordingNotifier records deliveries and can be told to fail.
type recordingNotifier struct {
	fail      bool
	confirmed chan queue.BookingConfirmedEvent
	cancelled chan queue.BookingCancelledEvent
}

func newRecordingNotifier(fail bool) *recordingNotifier {
	return &recordingNotifier{
		fail:      fail,
		confirmed: make(chan queue.BookingConfirmedEvent, 1),
		cancelled: make(chan queue.BookingCancelledEvent, 1),
	}
}

func (n *recordingNotifier) BookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error {
	n.confirmed <- ev
	if n.fail {
		return errors.New("broker unreachable")
	}
	return nil
}

func (n *recordingNotifier) BookingCancelled(ctx context.Context, ev queue.BookingCancelledEvent) error {
	n.cancelled <- ev
	if n.fail {
		return errors.New("broker unreachable")
	}
	return nil
}

func sampleBooking(status model.BookingStatus, departure time.Time) *model.Booking {
	refund := decimal.RequireFromString("90.00")
	b := &model.Booking{
		ID:             1,
		Reference:      uuid.New(),
		UserID:         7,
		TravelOptionID: 1,
		Seats:          2,
		TotalPrice:     decimal.RequireFromString("100.00"),
		Status:         status,
		BookedAt:       time.Now().UTC(),
		TravelOption: &model.TravelOption{
			ID:          1,
			TravelID:    "AA1234",
			Kind:        model.KindFlight,
			Source:      "Boston",
			Destination: "Denver",
			DepartureAt: departure,
			Price:       decimal.RequireFromString("50.00"),
		},
	}
	if status == model.BookingCancelled {
		now := time.Now().UTC()
		b.CancelledAt = &now
		b.CancellationReason = "User requested cancellation"
		b.RefundAmount = &refund
	}
	return b
}

func TestBookDispatchesConfirmation(t *testing.T) {
	departure := time.Now().UTC().Add(72 * time.Hour)
	b := sampleBooking(model.BookingConfirmed, departure)
	notifier := newRecordingNotifier(false)
	svc := NewBookingService(&stubReserver{booking: b}, &stubReader{}, notifier)

	got, err := svc.Book(context.Background(), 7, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, b.Reference, got.Reference)

	select {
	case ev := <-notifier.confirmed:
		assert.Equal(t, b.Reference.String(), ev.Reference)
		assert.Equal(t, "100.00", ev.TotalPrice)
		assert.Equal(t, "FLIGHT", ev.Kind)
	case <-time.After(time.Second):
		t.Fatal("confirmation event was not published")
	}
}

func TestBookSucceedsWhenNotifierFails(t *testing.T) {
	departure := time.Now().UTC().Add(72 * time.Hour)
	b := sampleBooking(model.BookingConfirmed, departure)
	notifier := newRecordingNotifier(true)
	svc := NewBookingService(&stubReserver{booking: b}, &stubReader{}, notifier)

	got, err := svc.Book(context.Background(), 7, 1, 2)
	require.NoError(t, err, "a broken notifier must never fail a booking")
	assert.Equal(t, model.BookingConfirmed, got.Status)
	<-notifier.confirmed // publish was attempted
}

func TestBookWithNilNotifier(t *testing.T) {
	b := sampleBooking(model.BookingConfirmed, time.Now().Add(72*time.Hour))
	svc := NewBookingService(&stubReserver{booking: b}, &stubReader{}, nil)

	_, err := svc.Book(context.Background(), 7, 1, 2)
	assert.NoError(t, err)
}

func TestBookRejectsInvalidSeatsBeforeEngine(t *testing.T) {
	res := &stubReserver{}
	svc := NewBookingService(res, &stubReader{}, nil)

	_, err := svc.Book(context.Background(), 7, 1, 0)
	assert.ErrorIs(t, err, reservation.ErrInvalidSeatCount)
	assert.Zero(t, res.calls, "engine must not be reached with invalid input")
}

func TestBookPropagatesEngineError(t *testing.T) {
	capErr := &reservation.InsufficientCapacityError{Available: 1}
	notifier := newRecordingNotifier(false)
	svc := NewBookingService(&stubReserver{err: capErr}, &stubReader{}, notifier)

	_, err := svc.Book(context.Background(), 7, 1, 2)
	var got *reservation.InsufficientCapacityError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, 1, got.Available)

	select {
	case <-notifier.confirmed:
		t.Fatal("no event may be published for a failed booking")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCancelDispatchesCancellation(t *testing.T) {
	departure := time.Now().UTC().Add(72 * time.Hour)
	b := sampleBooking(model.BookingCancelled, departure)
	notifier := newRecordingNotifier(false)
	svc := NewBookingService(&stubReserver{booking: b}, &stubReader{}, notifier)

	got, err := svc.Cancel(context.Background(), 7, b.Reference, "")
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, got.Status)

	select {
	case ev := <-notifier.cancelled:
		assert.Equal(t, b.Reference.String(), ev.Reference)
		assert.Equal(t, "90.00", ev.RefundAmount)
		assert.Equal(t, "User requested cancellation", ev.Reason)
	case <-time.After(time.Second):
		t.Fatal("cancellation event was not published")
	}
}

func TestQuoteComputesRefundWithoutMutation(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	b := sampleBooking(model.BookingConfirmed, now.Add(30*time.Hour))
	res := &stubReserver{}
	svc := NewBookingService(res, &stubReader{booking: b}, nil).
		WithClock(func() time.Time { return now })

	q, err := svc.Quote(context.Background(), 7, b.Reference)
	require.NoError(t, err)
	assert.Equal(t, "70.00", q.RefundAmount.StringFixed(2), "30h out refunds 70%")
	assert.Equal(t, "30.00", q.CancellationFee.StringFixed(2))
	assert.Equal(t, 30, q.FeePercent)
	assert.Zero(t, res.calls, "quote must not touch the engine")
	assert.Equal(t, model.BookingConfirmed, b.Status)
}

func TestQuoteAlreadyCancelled(t *testing.T) {
	b := sampleBooking(model.BookingCancelled, time.Now().Add(72*time.Hour))
	svc := NewBookingService(&stubReserver{}, &stubReader{booking: b}, nil)

	_, err := svc.Quote(context.Background(), 7, b.Reference)
	assert.ErrorIs(t, err, reservation.ErrAlreadyCancelled)
}

func TestQuoteWindowClosed(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	b := sampleBooking(model.BookingConfirmed, now.Add(time.Hour))
	svc := NewBookingService(&stubReserver{}, &stubReader{booking: b}, nil).
		WithClock(func() time.Time { return now })

	_, err := svc.Quote(context.Background(), 7, b.Reference)
	assert.ErrorIs(t, err, reservation.ErrWindowClosed)
}

func TestQuoteZeroRefundFullFee(t *testing.T) {
	// 2h..24h before departure: 50% tier still applies; below 2h the
	// window is closed, so FeePercent 100 only shows up for zero totals.
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	b := sampleBooking(model.BookingConfirmed, now.Add(10*time.Hour))
	b.TotalPrice = decimal.Zero
	svc := NewBookingService(&stubReserver{}, &stubReader{booking: b}, nil).
		WithClock(func() time.Time { return now })

	q, err := svc.Quote(context.Background(), 7, b.Reference)
	require.NoError(t, err)
	assert.True(t, q.RefundAmount.IsZero())
	assert.Equal(t, 100, q.FeePercent)
}
