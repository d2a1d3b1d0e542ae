package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/social-auth/internal/model"
)

const friendshipColumns = "id, requester_id, addressee_id, status, created_at, updated_at"

// FriendshipRepo stores friendship requests. The unique pair_key column holds
// both user ids in sorted order, so a pair can only exist once regardless of
// who asked first.
type FriendshipRepo struct {
	DB      *sql.DB
	Dialect Dialect
	now     func() time.Time
}

func NewFriendshipRepo(db *sql.DB, d Dialect) *FriendshipRepo {
	return &FriendshipRepo{DB: db, Dialect: d, now: time.Now}
}

// PairKey returns the direction-independent key for two user ids.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFriendship(s rowScanner) (model.Friendship, error) {
	var f model.Friendship
	err := s.Scan(&f.ID, &f.RequesterID, &f.AddresseeID, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

// Create inserts f as a new pending request. ErrConflict is returned when the
// pair already has a friendship in either direction.
func (r *FriendshipRepo) Create(ctx context.Context, f *model.Friendship) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Status == "" {
		f.Status = model.FriendshipPending
	}
	now := r.now().UTC().Truncate(time.Microsecond)
	f.CreatedAt, f.UpdatedAt = now, now

	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(
		"INSERT INTO friendships (id, requester_id, addressee_id, pair_key, status, created_at, updated_at) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?)"),
		f.ID, f.RequesterID, f.AddresseeID, PairKey(f.RequesterID, f.AddresseeID), string(f.Status), now, now)
	if err != nil {
		if _, ok := r.Dialect.uniqueViolation(err); ok {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (r *FriendshipRepo) GetByID(ctx context.Context, id string) (model.Friendship, error) {
	f, err := scanFriendship(r.DB.QueryRowContext(ctx, r.Dialect.Rebind(
		"SELECT "+friendshipColumns+" FROM friendships WHERE id = ?"), id))
	if r.Dialect.missing(err) {
		return model.Friendship{}, ErrNotFound
	}
	return f, err
}

// UpdateStatus sets the status of friendship id.
func (r *FriendshipRepo) UpdateStatus(ctx context.Context, id string, status model.FriendshipStatus) (model.Friendship, error) {
	now := r.now().UTC().Truncate(time.Microsecond)
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(
		"UPDATE friendships SET status = ?, updated_at = ? WHERE id = ?"), string(status), now, id)
	if r.Dialect.missing(err) {
		return model.Friendship{}, ErrNotFound
	}
	if err != nil {
		return model.Friendship{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return model.Friendship{}, err
	} else if n == 0 {
		return model.Friendship{}, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// ListForUser returns friendships where userID is either party, newest
// first. An empty status matches every status.
func (r *FriendshipRepo) ListForUser(ctx context.Context, userID string, status model.FriendshipStatus) ([]model.Friendship, error) {
	q := "SELECT " + friendshipColumns + " FROM friendships WHERE (requester_id = ? OR addressee_id = ?)"
	args := []any{userID, userID}
	if status != "" {
		q += " AND status = ?"
		args = append(args, string(status))
	}
	q += " ORDER BY created_at DESC, id"

	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Friendship{}
	for rows.Next() {
		f, err := scanFriendship(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *FriendshipRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind("DELETE FROM friendships WHERE id = ?"), id)
	if r.Dialect.missing(err) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
