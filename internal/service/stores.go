// Package service holds the workflows behind the HTTP handlers: registration,
// login, user-owned resources and the social features. Services depend on
// the store interfaces below and return *apperr.Error values whose message is
// safe to show to clients.
package service

import (
	"context"

	"github.com/iliyamo/social-auth/internal/model"
)

// UserStore persists users. Create must enforce email and username
// uniqueness atomically and report violations with repository.ErrEmailExists
// or repository.ErrUsernameExists.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

// SingletonStore persists at most one resource row per user.
type SingletonStore interface {
	Get(ctx context.Context, userID string) (model.Resource, error)
	Upsert(ctx context.Context, userID string, values []string) (model.Resource, bool, error)
	CreateIfAbsent(ctx context.Context, userID string, values []string) (model.Resource, error)
	Delete(ctx context.Context, userID string) error
}

type ProfileStore interface {
	Get(ctx context.Context, userID string) (model.CompleteProfile, error)
	Upsert(ctx context.Context, p model.CompleteProfile) (model.CompleteProfile, bool, error)
}

type FriendshipStore interface {
	Create(ctx context.Context, f *model.Friendship) error
	GetByID(ctx context.Context, id string) (model.Friendship, error)
	UpdateStatus(ctx context.Context, id string, status model.FriendshipStatus) (model.Friendship, error)
	ListForUser(ctx context.Context, userID string, status model.FriendshipStatus) ([]model.Friendship, error)
	Delete(ctx context.Context, id string) error
}

type CommunityStore interface {
	Create(ctx context.Context, c *model.Community) error
	GetByID(ctx context.Context, id string) (model.Community, error)
	ListActive(ctx context.Context, category string) ([]model.Community, error)
}
