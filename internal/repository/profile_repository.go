package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/social-auth/internal/database"
	"github.com/iliyamo/social-auth/internal/model"
)

const profileColumns = "id, user_id, full_name, age, profile_picture, bio, hobbies, location, website, phone, created_at, updated_at"

// ProfileRepo stores complete profiles, one per user.
type ProfileRepo struct {
	DB      *sql.DB
	Dialect Dialect
	now     func() time.Time
}

func NewProfileRepo(db *sql.DB, d Dialect) *ProfileRepo {
	return &ProfileRepo{DB: db, Dialect: d, now: time.Now}
}

func scanProfile(row *sql.Row) (model.CompleteProfile, error) {
	var (
		p   model.CompleteProfile
		raw []byte
	)
	err := row.Scan(&p.ID, &p.UserID, &p.FullName, &p.Age, &p.ProfilePicture, &p.Bio,
		&raw, &p.Location, &p.Website, &p.Phone, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CompleteProfile{}, ErrNotFound
	}
	if err != nil {
		return model.CompleteProfile{}, err
	}
	if p.Hobbies, err = decodeList(raw); err != nil {
		return model.CompleteProfile{}, fmt.Errorf("decode complete_profiles.hobbies: %w", err)
	}
	return p, nil
}

// Get returns the user's profile or ErrNotFound.
func (r *ProfileRepo) Get(ctx context.Context, userID string) (model.CompleteProfile, error) {
	return scanProfile(r.DB.QueryRowContext(ctx, r.Dialect.Rebind(
		"SELECT "+profileColumns+" FROM complete_profiles WHERE user_id = ?"), userID))
}

// Upsert writes every field of p for p.UserID, creating the row when absent.
// The stored row is returned along with whether it was created.
func (r *ProfileRepo) Upsert(ctx context.Context, p model.CompleteProfile) (model.CompleteProfile, bool, error) {
	hobbies, err := encodeList(p.Hobbies)
	if err != nil {
		return model.CompleteProfile{}, false, err
	}
	now := r.now().UTC().Truncate(time.Microsecond)
	args := []any{uuid.NewString(), p.UserID, p.FullName, p.Age, p.ProfilePicture, p.Bio,
		hobbies, p.Location, p.Website, p.Phone, now, now}

	insert := "INSERT INTO complete_profiles (" + profileColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) "
	var q string
	if r.Dialect == Postgres {
		q = insert + "ON CONFLICT (user_id) DO UPDATE SET full_name = EXCLUDED.full_name, age = EXCLUDED.age, " +
			"profile_picture = EXCLUDED.profile_picture, bio = EXCLUDED.bio, hobbies = EXCLUDED.hobbies, " +
			"location = EXCLUDED.location, website = EXCLUDED.website, phone = EXCLUDED.phone, updated_at = EXCLUDED.updated_at"
	} else {
		q = insert + "ON DUPLICATE KEY UPDATE full_name = VALUES(full_name), age = VALUES(age), " +
			"profile_picture = VALUES(profile_picture), bio = VALUES(bio), hobbies = VALUES(hobbies), " +
			"location = VALUES(location), website = VALUES(website), phone = VALUES(phone), updated_at = VALUES(updated_at)"
	}

	var (
		out     model.CompleteProfile
		created bool
	)
	err = database.WithTx(ctx, r.DB, nil, func(ctx context.Context, tx database.DBTX) error {
		if _, err := tx.ExecContext(ctx, r.Dialect.Rebind(q), args...); err != nil {
			return err
		}
		out, err = scanProfile(tx.QueryRowContext(ctx, r.Dialect.Rebind(
			"SELECT "+profileColumns+" FROM complete_profiles WHERE user_id = ?"), p.UserID))
		if err != nil {
			return err
		}
		created = out.CreatedAt.Equal(out.UpdatedAt)
		return nil
	})
	if err != nil {
		return model.CompleteProfile{}, false, err
	}
	return out, created, nil
}
