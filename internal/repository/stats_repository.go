package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/travel-booking/internal/model"
)

// StatsRepo serves the read-only aggregates behind the admin
// dashboard. No mutation path into the booking core exists here.
type StatsRepo struct {
	db *sql.DB
}

// NewStatsRepo returns a StatsRepo bound to the given database.
func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// KindCount is one row of the bookings-per-transport-mode breakdown.
type KindCount struct {
	Kind  model.TravelKind `json:"kind"`
	Count int              `json:"count"`
}

// RouteCount is one row of the popular-routes ranking.
type RouteCount struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Count       int    `json:"count"`
}

// Overview aggregates everything the admin dashboard shows in one
// response payload.
type Overview struct {
	TotalBookings     int             `json:"total_bookings"`
	ConfirmedBookings int             `json:"confirmed_bookings"`
	CancelledBookings int             `json:"cancelled_bookings"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalRefunds      decimal.Decimal `json:"total_refunds"`
	TotalUsers        int             `json:"total_users"`
	TotalTravel       int             `json:"total_travel_options"`
	BookingsByKind    []KindCount     `json:"bookings_by_kind"`
	PopularRoutes     []RouteCount    `json:"popular_routes"`
	LowAvailability   []model.TravelOption `json:"low_availability"`
}

// Load gathers the dashboard aggregates. Revenue counts CONFIRMED
// bookings only; refunds sum the refund_amount of CANCELLED ones.
func (r *StatsRepo) Load(ctx context.Context, now time.Time) (*Overview, error) {
	var o Overview

	const countsQ = `SELECT
	        COUNT(*),
	        COALESCE(SUM(status = 'CONFIRMED'), 0),
	        COALESCE(SUM(status = 'CANCELLED'), 0),
	        COALESCE(SUM(CASE WHEN status = 'CONFIRMED' THEN total_price END), 0),
	        COALESCE(SUM(CASE WHEN status = 'CANCELLED' THEN refund_amount END), 0)
	    FROM bookings`
	err := r.db.QueryRowContext(ctx, countsQ).Scan(
		&o.TotalBookings, &o.ConfirmedBookings, &o.CancelledBookings, &o.TotalRevenue, &o.TotalRefunds)
	if err != nil {
		return nil, fmt.Errorf("repository.StatsRepo.Load: booking counts: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&o.TotalUsers); err != nil {
		return nil, fmt.Errorf("repository.StatsRepo.Load: user count: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM travel_options").Scan(&o.TotalTravel); err != nil {
		return nil, fmt.Errorf("repository.StatsRepo.Load: travel count: %w", err)
	}

	const kindQ = `SELECT t.kind, COUNT(*)
	               FROM bookings b
	               JOIN travel_options t ON t.id = b.travel_option_id
	               WHERE b.status = 'CONFIRMED'
	               GROUP BY t.kind
	               ORDER BY COUNT(*) DESC`
	rows, err := r.db.QueryContext(ctx, kindQ)
	if err != nil {
		return nil, fmt.Errorf("repository.StatsRepo.Load: bookings by kind: %w", err)
	}
	defer rows.Close()
	o.BookingsByKind = make([]KindCount, 0, 3)
	for rows.Next() {
		var kc KindCount
		if err := rows.Scan(&kc.Kind, &kc.Count); err != nil {
			return nil, fmt.Errorf("repository.StatsRepo.Load: scan kind: %w", err)
		}
		o.BookingsByKind = append(o.BookingsByKind, kc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.StatsRepo.Load: kind rows: %w", err)
	}

	const routesQ = `SELECT t.source, t.destination, COUNT(*)
	                 FROM bookings b
	                 JOIN travel_options t ON t.id = b.travel_option_id
	                 WHERE b.status = 'CONFIRMED'
	                 GROUP BY t.source, t.destination
	                 ORDER BY COUNT(*) DESC
	                 LIMIT 10`
	routeRows, err := r.db.QueryContext(ctx, routesQ)
	if err != nil {
		return nil, fmt.Errorf("repository.StatsRepo.Load: popular routes: %w", err)
	}
	defer routeRows.Close()
	o.PopularRoutes = make([]RouteCount, 0, 10)
	for routeRows.Next() {
		var rc RouteCount
		if err := routeRows.Scan(&rc.Source, &rc.Destination, &rc.Count); err != nil {
			return nil, fmt.Errorf("repository.StatsRepo.Load: scan route: %w", err)
		}
		o.PopularRoutes = append(o.PopularRoutes, rc)
	}
	if err := routeRows.Err(); err != nil {
		return nil, fmt.Errorf("repository.StatsRepo.Load: route rows: %w", err)
	}

	const lowQ = `SELECT id, travel_id, kind, source, destination, departure_at, price, available_seats, created_at
	              FROM travel_options
	              WHERE available_seats <= 5 AND departure_at >= ?
	              ORDER BY available_seats ASC
	              LIMIT 10`
	lowRows, err := r.db.QueryContext(ctx, lowQ, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("repository.StatsRepo.Load: low availability: %w", err)
	}
	defer lowRows.Close()
	o.LowAvailability = make([]model.TravelOption, 0, 10)
	for lowRows.Next() {
		var opt model.TravelOption
		if err := lowRows.Scan(&opt.ID, &opt.TravelID, &opt.Kind, &opt.Source, &opt.Destination,
			&opt.DepartureAt, &opt.Price, &opt.AvailableSeats, &opt.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository.StatsRepo.Load: scan low availability: %w", err)
		}
		o.LowAvailability = append(o.LowAvailability, opt)
	}
	if err := lowRows.Err(); err != nil {
		return nil, fmt.Errorf("repository.StatsRepo.Load: low availability rows: %w", err)
	}

	return &o, nil
}
