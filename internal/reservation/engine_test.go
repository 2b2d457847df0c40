package reservation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-booking/internal/model"
)

// fakeStore is an in-memory Store whose transactions take a real
// exclusive lock on first row access and buffer writes until Commit,
// mirroring how the SQL store behaves under FOR UPDATE. Concurrency
// tests against it exercise the same serialization the engine relies
// on in production.
type fakeStore struct {
	mu       sync.Mutex
	options  map[uint64]*model.TravelOption
	bookings map[uuid.UUID]*model.Booking
	nextID   uint64
}

func newFakeStore(opts ...*model.TravelOption) *fakeStore {
	s := &fakeStore{
		options:  make(map[uint64]*model.TravelOption),
		bookings: make(map[uuid.UUID]*model.Booking),
	}
	for _, o := range opts {
		cp := *o
		s.options[cp.ID] = &cp
	}
	return s
}

func (s *fakeStore) Begin(ctx context.Context) (Tx, error) {
	return &fakeTx{store: s, seatWrites: make(map[uint64]int)}, nil
}

func (s *fakeStore) seats(id uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options[id].AvailableSeats
}

func (s *fakeStore) bookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

type fakeTx struct {
	store      *fakeStore
	locked     bool
	done       bool
	seatWrites map[uint64]int
	inserts    []*model.Booking
	cancels    []*model.Booking
}

func (t *fakeTx) acquire() {
	if !t.locked {
		t.store.mu.Lock()
		t.locked = true
	}
}

func (t *fakeTx) release() {
	if t.locked {
		t.store.mu.Unlock()
		t.locked = false
	}
}

func (t *fakeTx) LockTravelOption(ctx context.Context, id uint64) (*model.TravelOption, error) {
	t.acquire()
	opt, ok := t.store.options[id]
	if !ok {
		return nil, ErrTravelOptionNotFound
	}
	cp := *opt
	if seats, ok := t.seatWrites[id]; ok {
		cp.AvailableSeats = seats
	}
	return &cp, nil
}

func (t *fakeTx) SetAvailableSeats(ctx context.Context, id uint64, seats int) error {
	t.seatWrites[id] = seats
	return nil
}

func (t *fakeTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	t.store.nextID++
	b.ID = t.store.nextID
	cp := *b
	t.inserts = append(t.inserts, &cp)
	return nil
}

func (t *fakeTx) BookingByReference(ctx context.Context, ref uuid.UUID) (*model.Booking, error) {
	t.acquire()
	b, ok := t.store.bookings[ref]
	if !ok {
		return nil, ErrBookingNotFound
	}
	cp := *b
	if opt, ok := t.store.options[b.TravelOptionID]; ok {
		optCp := *opt
		cp.TravelOption = &optCp
	}
	return &cp, nil
}

func (t *fakeTx) MarkCancelled(ctx context.Context, b *model.Booking) error {
	cp := *b
	cp.TravelOption = nil
	t.cancels = append(t.cancels, &cp)
	return nil
}

func (t *fakeTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	if !t.locked {
		t.store.mu.Lock()
		t.locked = true
	}
	for id, seats := range t.seatWrites {
		t.store.options[id].AvailableSeats = seats
	}
	for _, b := range t.inserts {
		cp := *b
		cp.TravelOption = nil
		t.store.bookings[cp.Reference] = &cp
	}
	for _, b := range t.cancels {
		cp := *b
		t.store.bookings[cp.Reference] = &cp
	}
	t.release()
	return nil
}

func (t *fakeTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.release()
	return nil
}

func testOption(id uint64, seats int, price string, departure time.Time) *model.TravelOption {
	return &model.TravelOption{
		ID:             id,
		TravelID:       "AA1234",
		Kind:           model.KindFlight,
		Source:         "Boston",
		Destination:    "Denver",
		DepartureAt:    departure,
		Price:          decimal.RequireFromString(price),
		AvailableSeats: seats,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestReserveDecrementsSeatsAndSnapshotsPrice(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store := newFakeStore(testOption(1, 10, "120.50", now.Add(72*time.Hour)))
	eng := NewEngine(store).WithClock(fixedClock(now))

	b, err := eng.Reserve(context.Background(), 7, 1, 3)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, b.Reference)
	assert.Equal(t, uint64(7), b.UserID)
	assert.Equal(t, 3, b.Seats)
	assert.Equal(t, model.BookingConfirmed, b.Status)
	assert.Equal(t, "361.50", b.TotalPrice.StringFixed(2))
	assert.Equal(t, now, b.BookedAt)
	require.NotNil(t, b.TravelOption)
	assert.Equal(t, 7, b.TravelOption.AvailableSeats)
	assert.Equal(t, 7, store.seats(1))
	assert.Equal(t, 1, store.bookingCount())
}

func TestReserveExactCapacity(t *testing.T) {
	now := time.Now().UTC()
	store := newFakeStore(testOption(1, 5, "50.00", now.Add(48*time.Hour)))
	eng := NewEngine(store)

	b, err := eng.Reserve(context.Background(), 1, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, store.seats(1))
	assert.Equal(t, "250.00", b.TotalPrice.StringFixed(2))
}

func TestReserveInsufficientCapacityWritesNothing(t *testing.T) {
	now := time.Now().UTC()
	store := newFakeStore(testOption(1, 2, "50.00", now.Add(48*time.Hour)))
	eng := NewEngine(store)

	_, err := eng.Reserve(context.Background(), 1, 1, 3)
	var capErr *InsufficientCapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 2, capErr.Available)

	assert.Equal(t, 2, store.seats(1), "failed reservation must not touch the counter")
	assert.Equal(t, 0, store.bookingCount())
}

func TestReserveInvalidSeatCount(t *testing.T) {
	store := newFakeStore(testOption(1, 5, "50.00", time.Now().Add(48*time.Hour)))
	eng := NewEngine(store)

	for _, seats := range []int{0, -1, -10} {
		_, err := eng.Reserve(context.Background(), 1, 1, seats)
		assert.ErrorIs(t, err, ErrInvalidSeatCount)
	}
	assert.Equal(t, 5, store.seats(1))
}

func TestReserveUnknownTravelOption(t *testing.T) {
	eng := NewEngine(newFakeStore())
	_, err := eng.Reserve(context.Background(), 1, 99, 1)
	assert.ErrorIs(t, err, ErrTravelOptionNotFound)
}

func TestConcurrentReserveNeverOversells(t *testing.T) {
	const capacity = 10
	const contenders = 50

	now := time.Now().UTC()
	store := newFakeStore(testOption(1, capacity, "75.00", now.Add(72*time.Hour)))
	eng := NewEngine(store)

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = eng.Reserve(context.Background(), uint64(i+1), 1, 1)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var capErr *InsufficientCapacityError
		assert.ErrorAs(t, err, &capErr)
	}
	assert.Equal(t, capacity, succeeded, "exactly the available capacity must be sold")
	assert.Equal(t, 0, store.seats(1))
	assert.Equal(t, capacity, store.bookingCount())
}

func TestConcurrentReserveMultiSeat(t *testing.T) {
	// 20 contenders for 3 seats each against 30 seats: at most 10 can
	// win and the counter must account exactly for the winners.
	const capacity = 30
	const contenders = 20

	now := time.Now().UTC()
	store := newFakeStore(testOption(1, capacity, "10.00", now.Add(72*time.Hour)))
	eng := NewEngine(store)

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = eng.Reserve(context.Background(), uint64(i+1), 1, 3)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, capacity-succeeded*3, store.seats(1))
	assert.GreaterOrEqual(t, store.seats(1), 0, "counter must never go negative")
	assert.Equal(t, 10, succeeded)
}

func TestReleaseRestoresSeatsAndRefunds(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store := newFakeStore(testOption(1, 10, "100.00", now.Add(72*time.Hour)))
	eng := NewEngine(store).WithClock(fixedClock(now))

	b, err := eng.Reserve(context.Background(), 7, 1, 4)
	require.NoError(t, err)
	require.Equal(t, 6, store.seats(1))

	cancelled, err := eng.Release(context.Background(), 7, b.Reference, "")
	require.NoError(t, err)

	assert.Equal(t, model.BookingCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, now, *cancelled.CancelledAt)
	assert.Equal(t, "User requested cancellation", cancelled.CancellationReason)
	require.NotNil(t, cancelled.RefundAmount)
	assert.Equal(t, "360.00", cancelled.RefundAmount.StringFixed(2), "72h out refunds 90%")
	assert.Equal(t, 10, store.seats(1), "capacity restored exactly")
}

func TestReleaseRefundTierNearDeparture(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store := newFakeStore(testOption(1, 10, "100.00", now.Add(3*time.Hour)))
	eng := NewEngine(store).WithClock(fixedClock(now))

	b, err := eng.Reserve(context.Background(), 1, 1, 1)
	require.NoError(t, err)

	cancelled, err := eng.Release(context.Background(), 1, b.Reference, "change of plans")
	require.NoError(t, err)
	assert.Equal(t, "50.00", cancelled.RefundAmount.StringFixed(2), "3h out refunds 50%")
	assert.Equal(t, "change of plans", cancelled.CancellationReason)
}

func TestReleaseTwiceIsRejected(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store := newFakeStore(testOption(1, 10, "100.00", now.Add(72*time.Hour)))
	eng := NewEngine(store).WithClock(fixedClock(now))

	b, err := eng.Reserve(context.Background(), 7, 1, 4)
	require.NoError(t, err)
	_, err = eng.Release(context.Background(), 7, b.Reference, "")
	require.NoError(t, err)

	_, err = eng.Release(context.Background(), 7, b.Reference, "")
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
	assert.Equal(t, 10, store.seats(1), "seats must not be restored twice")
}

func TestReleaseWindowClosed(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store := newFakeStore(testOption(1, 10, "100.00", now.Add(90 * time.Minute)))
	eng := NewEngine(store).WithClock(fixedClock(now))

	b, err := eng.Reserve(context.Background(), 7, 1, 2)
	require.NoError(t, err)

	_, err = eng.Release(context.Background(), 7, b.Reference, "")
	assert.ErrorIs(t, err, ErrWindowClosed)
	assert.Equal(t, 8, store.seats(1), "booking stays live, seats stay taken")
}

func TestReleaseWindowBoundary(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store := newFakeStore(testOption(1, 10, "100.00", now.Add(2*time.Hour)))
	eng := NewEngine(store).WithClock(fixedClock(now))

	b, err := eng.Reserve(context.Background(), 7, 1, 1)
	require.NoError(t, err)

	// Exactly 2h before departure the window is already closed.
	_, err = eng.Release(context.Background(), 7, b.Reference, "")
	assert.ErrorIs(t, err, ErrWindowClosed)
}

func TestReleaseNotOwner(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store := newFakeStore(testOption(1, 10, "100.00", now.Add(72*time.Hour)))
	eng := NewEngine(store).WithClock(fixedClock(now))

	b, err := eng.Reserve(context.Background(), 7, 1, 2)
	require.NoError(t, err)

	_, err = eng.Release(context.Background(), 8, b.Reference, "")
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, 8, store.seats(1))
}

func TestReleaseUnknownReference(t *testing.T) {
	eng := NewEngine(newFakeStore())
	_, err := eng.Release(context.Background(), 1, uuid.New(), "")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestReserveThenReleaseRoundTrip(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store := newFakeStore(testOption(1, 3, "19.99", now.Add(49*time.Hour)))
	eng := NewEngine(store).WithClock(fixedClock(now))

	b, err := eng.Reserve(context.Background(), 5, 1, 3)
	require.NoError(t, err)
	require.Equal(t, 0, store.seats(1))

	// A second customer is locked out while the seats are held.
	_, err = eng.Reserve(context.Background(), 6, 1, 1)
	var capErr *InsufficientCapacityError
	require.ErrorAs(t, err, &capErr)

	cancelled, err := eng.Release(context.Background(), 5, b.Reference, "")
	require.NoError(t, err)
	// 19.99 * 3 = 59.97; 90% = 53.973 -> 53.97
	assert.Equal(t, "53.97", cancelled.RefundAmount.StringFixed(2))
	assert.Equal(t, 3, store.seats(1))

	// Capacity freed by the cancellation is bookable again.
	_, err = eng.Reserve(context.Background(), 6, 1, 1)
	assert.NoError(t, err)
}
