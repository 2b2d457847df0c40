package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/travel-booking/internal/model"
)

// ProfileRepo persists the one-to-one user profile. Profiles are
// created explicitly by the registration flow right after the user row
// exists; there is no implicit hook.
type ProfileRepo struct {
	db *sql.DB
}

// NewProfileRepo returns a ProfileRepo bound to the given database.
func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{db: db} }

// CreateDefault inserts an empty profile for a freshly registered user.
// Inserting twice for the same user is an error (primary key).
func (r *ProfileRepo) CreateDefault(ctx context.Context, userID uint64) error {
	const q = `INSERT INTO profiles (user_id) VALUES (?)`
	if _, err := r.db.ExecContext(ctx, q, userID); err != nil {
		return fmt.Errorf("repository.ProfileRepo.CreateDefault: %w", err)
	}
	return nil
}

// GetByUserID returns the profile of a user, ErrNotFound when absent.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID uint64) (*model.Profile, error) {
	const q = `SELECT user_id, phone_number, date_of_birth, address_line1, address_line2,
	                  city, state, country, postal_code, preferred_kind, newsletter, created_at, updated_at
	           FROM profiles WHERE user_id = ?`
	var (
		p   model.Profile
		dob sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, q, userID).Scan(
		&p.UserID, &p.PhoneNumber, &dob, &p.AddressLine1, &p.AddressLine2,
		&p.City, &p.State, &p.Country, &p.PostalCode, &p.PreferredKind, &p.Newsletter,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository.ProfileRepo.GetByUserID: %w", err)
	}
	if dob.Valid {
		d := dob.Time
		p.DateOfBirth = &d
	}
	return &p, nil
}

// Update overwrites the mutable profile fields.
func (r *ProfileRepo) Update(ctx context.Context, p *model.Profile) error {
	const q = `UPDATE profiles
	           SET phone_number = ?, date_of_birth = ?, address_line1 = ?, address_line2 = ?,
	               city = ?, state = ?, country = ?, postal_code = ?, preferred_kind = ?, newsletter = ?
	           WHERE user_id = ?`
	res, err := r.db.ExecContext(ctx, q,
		p.PhoneNumber, p.DateOfBirth, p.AddressLine1, p.AddressLine2,
		p.City, p.State, p.Country, p.PostalCode, p.PreferredKind, p.Newsletter, p.UserID)
	if err != nil {
		return fmt.Errorf("repository.ProfileRepo.Update: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, getErr := r.GetByUserID(ctx, p.UserID); getErr != nil {
			return getErr
		}
	}
	return nil
}
