package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TravelKind enumerates the transport modes a travel option can have.
type TravelKind string

const (
	KindFlight TravelKind = "FLIGHT"
	KindTrain  TravelKind = "TRAIN"
	KindBus    TravelKind = "BUS"
)

// Valid reports whether k is one of the known transport modes.
func (k TravelKind) Valid() bool {
	switch k {
	case KindFlight, KindTrain, KindBus:
		return true
	}
	return false
}

// TravelOption is a bookable transport instance with finite seat
// capacity. AvailableSeats is the authoritative inventory counter and
// must only be mutated through the reservation engine, which serializes
// writers with a row lock. Readers outside a reservation transaction
// may observe a stale value.
//
// Fields:
//  ID             – primary key identifier.
//  TravelID       – external identifier (flight/train/bus number).
//  Kind           – transport mode (FLIGHT, TRAIN, BUS).
//  Source         – departure city.
//  Destination    – arrival city.
//  DepartureAt    – departure timestamp (UTC).
//  Price          – price per seat.
//  AvailableSeats – seats still open for booking, never negative.
//  CreatedAt      – creation timestamp.
type TravelOption struct {
	ID             uint64          `json:"id"`              // travel_options.id
	TravelID       string          `json:"travel_id"`       // travel_options.travel_id
	Kind           TravelKind      `json:"kind"`            // travel_options.kind
	Source         string          `json:"source"`          // travel_options.source
	Destination    string          `json:"destination"`     // travel_options.destination
	DepartureAt    time.Time       `json:"departure_at"`    // travel_options.departure_at
	Price          decimal.Decimal `json:"price"`           // travel_options.price
	AvailableSeats int             `json:"available_seats"` // travel_options.available_seats
	CreatedAt      time.Time       `json:"created_at"`      // travel_options.created_at
}
