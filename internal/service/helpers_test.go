package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/social-auth/internal/apperr"
	"github.com/iliyamo/social-auth/internal/model"
)

type published struct {
	queue string
	event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, q string, ev any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{q, ev})
	return p.err
}

func (p *recordingPublisher) all() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.events...)
}

// failingUsers wraps a UserStore and fails the chosen operation.
type failingUsers struct {
	UserStore
	failLookup bool
	failCreate bool
	failList   bool
}

var errStoreDown = errors.New("dial tcp 10.0.0.5:3306: connection refused")

func (f failingUsers) GetByEmail(ctx context.Context, email string) (model.User, error) {
	if f.failLookup {
		return model.User{}, errStoreDown
	}
	return f.UserStore.GetByEmail(ctx, email)
}

func (f failingUsers) Create(ctx context.Context, u *model.User) error {
	if f.failCreate {
		return errStoreDown
	}
	return f.UserStore.Create(ctx, u)
}

func (f failingUsers) List(ctx context.Context) ([]model.User, error) {
	if f.failList {
		return nil, errStoreDown
	}
	return f.UserStore.List(ctx)
}

func requireKind(t *testing.T, err error, kind apperr.Kind) *apperr.Error {
	t.Helper()
	require.Error(t, err)
	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, kind, e.Kind, e.Message)
	return e
}
