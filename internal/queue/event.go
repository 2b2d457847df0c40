// Package queue defines message payloads exchanged over the message
// broker and the background consumer that turns them into customer
// notifications.
package queue

// Queue names used for booking notifications. Both are durable.
const (
	BookingConfirmedQueue = "booking.confirmed"
	BookingCancelledQueue = "booking.cancelled"
)

// BookingConfirmedEvent is published after a reservation commits. It
// carries enough information for downstream consumers to render a
// confirmation message without querying the primary database.
type BookingConfirmedEvent struct {
	Reference   string `json:"reference"`
	UserID      uint64 `json:"user_id"`
	TravelID    string `json:"travel_id"`
	Kind        string `json:"kind"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	DepartureAt string `json:"departure_at"`
	Seats       int    `json:"seats"`
	TotalPrice  string `json:"total_price"`
	BookedAt    string `json:"booked_at"`
}

// BookingCancelledEvent is published after a cancellation commits.
type BookingCancelledEvent struct {
	Reference    string `json:"reference"`
	UserID       uint64 `json:"user_id"`
	TravelID     string `json:"travel_id"`
	Source       string `json:"source"`
	Destination  string `json:"destination"`
	DepartureAt  string `json:"departure_at"`
	Seats        int    `json:"seats"`
	TotalPrice   string `json:"total_price"`
	RefundAmount string `json:"refund_amount"`
	Reason       string `json:"reason"`
	CancelledAt  string `json:"cancelled_at"`
}
