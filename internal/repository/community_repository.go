package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/social-auth/internal/model"
)

const communityColumns = "id, creator_id, name, description, category, tags, community_image_url, members_count, is_active, created_at, updated_at"

type CommunityRepo struct {
	DB      *sql.DB
	Dialect Dialect
	now     func() time.Time
}

func NewCommunityRepo(db *sql.DB, d Dialect) *CommunityRepo {
	return &CommunityRepo{DB: db, Dialect: d, now: time.Now}
}

func scanCommunity(s rowScanner) (model.Community, error) {
	var (
		c   model.Community
		raw []byte
	)
	if err := s.Scan(&c.ID, &c.CreatorID, &c.Name, &c.Description, &c.Category, &raw,
		&c.ImageURL, &c.MembersCount, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return model.Community{}, err
	}
	tags, err := decodeList(raw)
	if err != nil {
		return model.Community{}, fmt.Errorf("decode communities.tags: %w", err)
	}
	c.Tags = tags
	return c, nil
}

// Create inserts c. ID, timestamps, member count and active flag are set here.
func (r *CommunityRepo) Create(ctx context.Context, c *model.Community) error {
	tags, err := encodeList(c.Tags)
	if err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	now := r.now().UTC().Truncate(time.Microsecond)
	c.CreatedAt, c.UpdatedAt = now, now
	c.MembersCount, c.IsActive = 1, true

	_, err = r.DB.ExecContext(ctx, r.Dialect.Rebind(
		"INSERT INTO communities ("+communityColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"),
		c.ID, c.CreatorID, c.Name, c.Description, c.Category, tags, c.ImageURL,
		c.MembersCount, c.IsActive, now, now)
	return err
}

func (r *CommunityRepo) GetByID(ctx context.Context, id string) (model.Community, error) {
	c, err := scanCommunity(r.DB.QueryRowContext(ctx, r.Dialect.Rebind(
		"SELECT "+communityColumns+" FROM communities WHERE id = ?"), id))
	if r.Dialect.missing(err) {
		return model.Community{}, ErrNotFound
	}
	return c, err
}

// ListActive returns active communities, newest first, optionally filtered by
// category.
func (r *CommunityRepo) ListActive(ctx context.Context, category string) ([]model.Community, error) {
	q := "SELECT " + communityColumns + " FROM communities WHERE is_active = ?"
	args := []any{true}
	if category != "" {
		q += " AND category = ?"
		args = append(args, category)
	}
	q += " ORDER BY created_at DESC, id"

	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Community{}
	for rows.Next() {
		c, err := scanCommunity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
