package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/travel-booking/internal/model"
)

// TravelRepo provides CRUD and search over travel options. Seat counts
// returned here are lock-free reads and therefore advisory; the
// reservation engine re-checks capacity under lock before any mutation.
type TravelRepo struct {
	db *sql.DB
}

// NewTravelRepo returns a TravelRepo bound to the given database.
func NewTravelRepo(db *sql.DB) *TravelRepo { return &TravelRepo{db: db} }

// TravelFilter narrows Search results. Zero values mean "no filter".
// Query matches source, destination or the external travel id.
type TravelFilter struct {
	Kind        model.TravelKind
	Source      string
	Destination string
	Date        string // YYYY-MM-DD, matches the departure day
	Query       string
	Page        int
	Limit       int
}

const travelSelect = `SELECT id, travel_id, kind, source, destination, departure_at, price, available_seats, created_at
                      FROM travel_options`

// Search returns travel options matching the filter ordered by
// departure time, plus the total match count for pagination.
func (r *TravelRepo) Search(ctx context.Context, f TravelFilter) ([]model.TravelOption, int, error) {
	where := make([]string, 0, 5)
	args := make([]any, 0, 7)
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(f.Kind))
	}
	if f.Source != "" {
		where = append(where, "source LIKE ?")
		args = append(args, "%"+f.Source+"%")
	}
	if f.Destination != "" {
		where = append(where, "destination LIKE ?")
		args = append(args, "%"+f.Destination+"%")
	}
	if f.Date != "" {
		where = append(where, "DATE(departure_at) = ?")
		args = append(args, f.Date)
	}
	if f.Query != "" {
		where = append(where, "(source LIKE ? OR destination LIKE ? OR travel_id LIKE ?)")
		like := "%" + f.Query + "%"
		args = append(args, like, like, like)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM travel_options"+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.TravelRepo.Search: count: %w", err)
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}
	q := travelSelect + cond + " ORDER BY departure_at ASC, id ASC LIMIT ? OFFSET ?"
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.TravelRepo.Search: %w", err)
	}
	defer rows.Close()

	opts := make([]model.TravelOption, 0, limit)
	for rows.Next() {
		var opt model.TravelOption
		if err := rows.Scan(&opt.ID, &opt.TravelID, &opt.Kind, &opt.Source, &opt.Destination,
			&opt.DepartureAt, &opt.Price, &opt.AvailableSeats, &opt.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("repository.TravelRepo.Search: scan: %w", err)
		}
		opts = append(opts, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository.TravelRepo.Search: rows: %w", err)
	}
	return opts, total, nil
}

// GetByID returns a travel option by primary key, ErrNotFound when absent.
func (r *TravelRepo) GetByID(ctx context.Context, id uint64) (*model.TravelOption, error) {
	var opt model.TravelOption
	err := r.db.QueryRowContext(ctx, travelSelect+" WHERE id = ?", id).Scan(
		&opt.ID, &opt.TravelID, &opt.Kind, &opt.Source, &opt.Destination,
		&opt.DepartureAt, &opt.Price, &opt.AvailableSeats, &opt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository.TravelRepo.GetByID: %w", err)
	}
	return &opt, nil
}

// Create inserts a new travel option and fills in its generated ID.
func (r *TravelRepo) Create(ctx context.Context, opt *model.TravelOption) error {
	const q = `INSERT INTO travel_options (travel_id, kind, source, destination, departure_at, price, available_seats)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		opt.TravelID, string(opt.Kind), opt.Source, opt.Destination, opt.DepartureAt, opt.Price, opt.AvailableSeats)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrTravelIDExists
		}
		return fmt.Errorf("repository.TravelRepo.Create: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("repository.TravelRepo.Create: %w", err)
	}
	opt.ID = uint64(id)
	return nil
}

// Update overwrites the descriptive fields of a travel option. The
// seat counter is deliberately excluded: it belongs to the reservation
// engine. Returns ErrNotFound when the row does not exist.
func (r *TravelRepo) Update(ctx context.Context, opt *model.TravelOption) error {
	const q = `UPDATE travel_options
	           SET travel_id = ?, kind = ?, source = ?, destination = ?, departure_at = ?, price = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		opt.TravelID, string(opt.Kind), opt.Source, opt.Destination, opt.DepartureAt, opt.Price, opt.ID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrTravelIDExists
		}
		return fmt.Errorf("repository.TravelRepo.Update: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Zero affected rows is ambiguous between "missing" and
		// "unchanged"; confirm existence before reporting ErrNotFound.
		if _, getErr := r.GetByID(ctx, opt.ID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// Delete removes a travel option without bookings. Returns ErrConflict
// when bookings reference it (financial history is never destroyed)
// and ErrNotFound when it does not exist.
func (r *TravelRepo) Delete(ctx context.Context, id uint64) error {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings WHERE travel_option_id = ?", id).Scan(&n); err != nil {
		return fmt.Errorf("repository.TravelRepo.Delete: %w", err)
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM travel_options WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("repository.TravelRepo.Delete: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}
