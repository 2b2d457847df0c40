package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingStatus is the lifecycle state of a booking. CANCELLED is
// terminal; there are no other transitions.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// Booking records a user's claim on a number of seats of a travel
// option. TotalPrice is snapshotted at booking time from the row read
// under the reservation lock and is never recomputed, so later price
// edits on the travel option cannot change what the customer owes.
// RefundAmount is set exactly when the booking is cancelled.
//
// Fields:
//  ID                 – primary key identifier.
//  Reference          – public, non-guessable booking reference.
//  UserID             – owning user.
//  TravelOptionID     – booked travel option.
//  Seats              – number of seats held, at least 1.
//  TotalPrice         – Seats × per-seat price at booking time.
//  Status             – CONFIRMED or CANCELLED (terminal).
//  BookedAt           – creation timestamp.
//  CancelledAt        – cancellation timestamp (nil while confirmed).
//  CancellationReason – free-text reason supplied on cancellation.
//  RefundAmount       – amount refunded, nil while confirmed.
type Booking struct {
	ID                 uint64           `json:"-"`                       // bookings.id
	Reference          uuid.UUID        `json:"reference"`               // bookings.reference
	UserID             uint64           `json:"user_id"`                 // bookings.user_id
	TravelOptionID     uint64           `json:"travel_option_id"`        // bookings.travel_option_id
	Seats              int              `json:"seats"`                   // bookings.seats
	TotalPrice         decimal.Decimal  `json:"total_price"`             // bookings.total_price
	Status             BookingStatus    `json:"status"`                  // bookings.status
	BookedAt           time.Time        `json:"booked_at"`               // bookings.booked_at
	CancelledAt        *time.Time       `json:"cancelled_at,omitempty"`  // bookings.cancelled_at (nullable)
	CancellationReason string           `json:"cancellation_reason,omitempty"`
	RefundAmount       *decimal.Decimal `json:"refund_amount,omitempty"` // bookings.refund_amount (nullable)

	// TravelOption is a read-only snapshot of the booked option,
	// populated by queries that join travel_options. Not persisted on
	// the booking row itself.
	TravelOption *TravelOption `json:"travel_option,omitempty"`
}
