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

// SingletonRepo stores a user-owned singleton resource: one row per user,
// keyed by a unique user_id, holding a JSON list of strings.
type SingletonRepo struct {
	DB      *sql.DB
	Dialect Dialect
	table   string
	column  string
	now     func() time.Time
}

// NewSingletonRepo returns the store for kind.
func NewSingletonRepo(db *sql.DB, d Dialect, kind model.ResourceKind) *SingletonRepo {
	r := &SingletonRepo{DB: db, Dialect: d, now: time.Now}
	switch kind {
	case model.ResourcePreferences:
		r.table, r.column = "user_preferences", "preferences"
	default:
		r.table, r.column = "user_interests", "interests"
	}
	return r
}

func (r *SingletonRepo) selectQuery() string {
	return r.Dialect.Rebind(fmt.Sprintf(
		"SELECT id, user_id, %s, created_at, updated_at FROM %s WHERE user_id = ?", r.column, r.table))
}

func (r *SingletonRepo) scan(row *sql.Row) (model.Resource, error) {
	var (
		res model.Resource
		raw []byte
	)
	if err := row.Scan(&res.ID, &res.UserID, &raw, &res.CreatedAt, &res.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Resource{}, ErrNotFound
		}
		return model.Resource{}, err
	}
	vals, err := decodeList(raw)
	if err != nil {
		return model.Resource{}, fmt.Errorf("decode %s.%s: %w", r.table, r.column, err)
	}
	res.Values = vals
	return res, nil
}

// Get returns the user's row or ErrNotFound.
func (r *SingletonRepo) Get(ctx context.Context, userID string) (model.Resource, error) {
	return r.scan(r.DB.QueryRowContext(ctx, r.selectQuery(), userID))
}

// Upsert creates the user's row or replaces its values wholesale in a single
// statement. created reports whether a new row was inserted.
func (r *SingletonRepo) Upsert(ctx context.Context, userID string, values []string) (model.Resource, bool, error) {
	enc, err := encodeList(values)
	if err != nil {
		return model.Resource{}, false, err
	}
	now := r.now().UTC().Truncate(time.Microsecond)
	id := uuid.NewString()

	if r.Dialect == Postgres {
		q := fmt.Sprintf(
			"INSERT INTO %[1]s (id, user_id, %[2]s, created_at, updated_at) VALUES ($1, $2, $3, $4, $4) "+
				"ON CONFLICT (user_id) DO UPDATE SET %[2]s = EXCLUDED.%[2]s, updated_at = EXCLUDED.updated_at "+
				"RETURNING id, created_at, (xmax = 0)", r.table, r.column)
		res := model.Resource{UserID: userID, Values: values, UpdatedAt: now}
		var created bool
		if err := r.DB.QueryRowContext(ctx, q, id, userID, enc, now).Scan(&res.ID, &res.CreatedAt, &created); err != nil {
			return model.Resource{}, false, err
		}
		return res, created, nil
	}

	var (
		res     model.Resource
		created bool
	)
	err = database.WithTx(ctx, r.DB, nil, func(ctx context.Context, tx database.DBTX) error {
		q := fmt.Sprintf(
			"INSERT INTO %[1]s (id, user_id, %[2]s, created_at, updated_at) VALUES (?, ?, ?, ?, ?) "+
				"ON DUPLICATE KEY UPDATE %[2]s = VALUES(%[2]s), updated_at = VALUES(updated_at)", r.table, r.column)
		out, err := tx.ExecContext(ctx, q, id, userID, enc, now, now)
		if err != nil {
			return err
		}
		// 1 = inserted, 2 = updated, 0 = updated to identical values
		n, err := out.RowsAffected()
		if err != nil {
			return err
		}
		created = n == 1
		res, err = r.scan(tx.QueryRowContext(ctx, r.selectQuery(), userID))
		return err
	})
	if err != nil {
		return model.Resource{}, false, err
	}
	return res, created, nil
}

// CreateIfAbsent inserts the user's row and returns ErrAlreadyExists when one
// is already present.
func (r *SingletonRepo) CreateIfAbsent(ctx context.Context, userID string, values []string) (model.Resource, error) {
	enc, err := encodeList(values)
	if err != nil {
		return model.Resource{}, err
	}
	now := r.now().UTC().Truncate(time.Microsecond)
	res := model.Resource{ID: uuid.NewString(), UserID: userID, Values: values, CreatedAt: now, UpdatedAt: now}

	q := r.Dialect.Rebind(fmt.Sprintf(
		"INSERT INTO %s (id, user_id, %s, created_at, updated_at) VALUES (?, ?, ?, ?, ?)", r.table, r.column))
	if _, err := r.DB.ExecContext(ctx, q, res.ID, userID, enc, now, now); err != nil {
		if _, ok := r.Dialect.uniqueViolation(err); ok {
			return model.Resource{}, ErrAlreadyExists
		}
		return model.Resource{}, err
	}
	return res, nil
}

// Delete removes the user's row or returns ErrNotFound.
func (r *SingletonRepo) Delete(ctx context.Context, userID string) error {
	out, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(
		fmt.Sprintf("DELETE FROM %s WHERE user_id = ?", r.table)), userID)
	if err != nil {
		return err
	}
	n, err := out.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
