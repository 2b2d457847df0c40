package model

import "time"

// Profile holds contact details and travel preferences for a user,
// one row per user. A profile is created explicitly right after
// registration; it carries no invariant that affects booking
// correctness.
type Profile struct {
	UserID        uint64     `json:"-"`              // profiles.user_id
	PhoneNumber   string     `json:"phone_number"`   // profiles.phone_number
	DateOfBirth   *time.Time `json:"date_of_birth"`  // profiles.date_of_birth (nullable)
	AddressLine1  string     `json:"address_line1"`  // profiles.address_line1
	AddressLine2  string     `json:"address_line2"`  // profiles.address_line2
	City          string     `json:"city"`           // profiles.city
	State         string     `json:"state"`          // profiles.state
	Country       string     `json:"country"`        // profiles.country
	PostalCode    string     `json:"postal_code"`    // profiles.postal_code
	PreferredKind string     `json:"preferred_kind"` // profiles.preferred_kind (FLIGHT, TRAIN, BUS or ANY)
	Newsletter    bool       `json:"newsletter"`     // profiles.newsletter
	CreatedAt     time.Time  `json:"-"`              // profiles.created_at
	UpdatedAt     time.Time  `json:"-"`              // profiles.updated_at
}
