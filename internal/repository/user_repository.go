package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/social-auth/internal/model"
)

const userColumns = "u.id, u.username, u.email, u.password_hash, r.name, u.created_at"

// UserRepo is the SQL-backed user store.
type UserRepo struct {
	DB      *sql.DB
	Dialect Dialect
	now     func() time.Time
}

func NewUserRepo(db *sql.DB, d Dialect) *UserRepo {
	return &UserRepo{DB: db, Dialect: d, now: time.Now}
}

// Create inserts u, resolving its role name through the roles table. ID and
// CreatedAt are filled in when empty. Uniqueness of email and username is
// enforced by the database, so concurrent inserts cannot both succeed.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = r.now().UTC().Truncate(time.Microsecond)
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(
		"INSERT INTO users (id, username, email, password_hash, role_id, created_at) "+
			"SELECT ?, ?, ?, ?, r.id, ? FROM roles r WHERE r.name = ?"),
		u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt, u.Role)
	if err != nil {
		if key, ok := r.Dialect.uniqueViolation(err); ok {
			return userConflict(key)
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRoleNotFound
	}
	return nil
}

// userConflict maps a violated constraint to the matching sentinel. An
// unnamed violation is reported as an email clash.
func userConflict(key string) error {
	if strings.Contains(key, "username") {
		return ErrUsernameExists
	}
	return ErrEmailExists
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx, "u.email = ?", email)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getOne(ctx, "u.username = ?", username)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.getOne(ctx, "u.id = ?", id)
}

func (r *UserRepo) getOne(ctx context.Context, where string, arg any) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(
		"SELECT "+userColumns+" FROM users u JOIN roles r ON r.id = u.role_id WHERE "+where+" LIMIT 1"),
		arg).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if r.Dialect.missing(err) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// List returns every user ordered by creation time.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users u JOIN roles r ON r.id = u.role_id ORDER BY u.created_at, u.id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Ping reports whether the database is reachable.
func (r *UserRepo) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}
