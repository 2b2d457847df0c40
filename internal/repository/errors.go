// Package repository contains the MySQL persistence layer. Each
// aggregate has its own repository; the sentinel errors below let
// handlers distinguish failure modes without string matching.
package repository

import "errors"

// ErrNotFound is returned when a requested record does not exist (or
// is not visible to the requesting user). Handlers translate this into
// an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an operation cannot proceed because of
// dependent state, such as deleting a travel option that still has
// bookings against it. Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned on registration with a taken email.
var ErrEmailExists = errors.New("email already exists")

// ErrTravelIDExists is returned when creating a travel option whose
// external travel_id is already in use.
var ErrTravelIDExists = errors.New("travel id already exists")
