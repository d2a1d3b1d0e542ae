package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/social-auth/internal/apperr"
	"github.com/iliyamo/social-auth/internal/logging"
	"github.com/iliyamo/social-auth/internal/model"
	"github.com/iliyamo/social-auth/internal/queue"
	"github.com/iliyamo/social-auth/internal/repository"
)

func TestParseValues(t *testing.T) {
	got, err := ParseValues(json.RawMessage(` ["a","b"] `), "bad")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	got, err = ParseValues(json.RawMessage(`[]`), "bad")
	require.NoError(t, err)
	assert.Equal(t, []string{}, got)

	for _, raw := range []string{``, `null`, `"a"`, `{"a":1}`, `["a",1]`, `[null]`, `["a",null]`, `[null,"a"]`, `42`} {
		_, err := ParseValues(json.RawMessage(raw), "bad")
		e := requireKind(t, err, apperr.KindBadRequest)
		assert.Equal(t, "bad", e.Message, raw)
	}
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, dedupe([]string{"a", "b", "a"}))
	assert.Equal(t, []string{}, dedupe(nil))
}

func TestInterests_UpsertReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	svc := NewInterestsService(repository.NewMemory().Singleton(model.ResourceInterests), logging.Nop())

	got, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{}, got)

	got, err = svc.Set(ctx, "u1", []string{"a", "b", "a"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, got)

	got, err = svc.Set(ctx, "u1", []string{"c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, got)

	got, err = svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, got)
}

type brokenSingleton struct{ SingletonStore }

func (brokenSingleton) Get(context.Context, string) (model.Resource, error) {
	return model.Resource{}, errors.New("boom")
}

func (brokenSingleton) Upsert(context.Context, string, []string) (model.Resource, bool, error) {
	return model.Resource{}, false, errors.New("boom")
}

func (brokenSingleton) CreateIfAbsent(context.Context, string, []string) (model.Resource, error) {
	return model.Resource{}, errors.New("boom")
}

func (brokenSingleton) Delete(context.Context, string) error { return errors.New("boom") }

func TestInterests_StoreFailure(t *testing.T) {
	svc := NewInterestsService(brokenSingleton{}, logging.Nop())
	_, err := svc.Set(context.Background(), "u1", []string{"a"})
	requireKind(t, err, apperr.KindInternal)
	_, err = svc.Get(context.Background(), "u1")
	requireKind(t, err, apperr.KindInternal)
}

func newPrefs(t *testing.T) (*PreferencesService, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	svc := NewPreferencesService(repository.NewMemory().Singleton(model.ResourcePreferences), pub, logging.Nop())
	svc.now = func() time.Time { return now }
	return svc, pub
}

func TestPreferences_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc, pub := newPrefs(t)

	empty, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", empty.UserID)
	assert.Equal(t, []string{}, empty.Values)

	created, err := svc.Create(ctx, "u1", []string{"Arte", "Gaming", "Arte"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Arte", "Gaming"}, created.Values)

	_, err = svc.Create(ctx, "u1", []string{"Cocina"})
	e := requireKind(t, err, apperr.KindConflict)
	assert.Equal(t, MsgPreferencesExist, e.Message)

	updated, isNew, err := svc.Update(ctx, "u1", []string{"Cocina"})
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, []string{"Cocina"}, updated.Values)

	require.NoError(t, svc.Delete(ctx, "u1"))
	e = requireKind(t, svc.Delete(ctx, "u1"), apperr.KindNotFound)
	assert.Equal(t, MsgPreferencesMissing, e.Message)

	_, isNew, err = svc.Update(ctx, "u1", []string{"Baile"})
	require.NoError(t, err)
	assert.True(t, isNew)

	var actions []string
	for _, p := range pub.all() {
		assert.Equal(t, queue.PreferencesChangedQueue, p.queue)
		actions = append(actions, p.event.(queue.PreferencesChangedEvent).Action)
	}
	assert.Equal(t, []string{queue.ActionCreated, queue.ActionUpdated, queue.ActionDeleted, queue.ActionCreated}, actions)
}

func TestPreferences_RejectsUnknownValues(t *testing.T) {
	ctx := context.Background()
	svc, pub := newPrefs(t)

	_, err := svc.Create(ctx, "u1", []string{"Arte", "InvalidTag"})
	e := requireKind(t, err, apperr.KindBadRequest)
	assert.Equal(t, "Invalid preferences: InvalidTag", e.Message)
	assert.Equal(t, []string{"InvalidTag"}, e.Fields["invalidPreferences"])
	assert.Equal(t, model.PreferenceKeys(), e.Fields["validPreferences"])

	_, _, err = svc.Update(ctx, "u1", []string{"InvalidTag"})
	requireKind(t, err, apperr.KindBadRequest)

	// nothing was written
	got, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got.Values)
	assert.Empty(t, pub.all())
}

func TestPreferences_StoreFailure(t *testing.T) {
	svc := NewPreferencesService(brokenSingleton{}, nil, logging.Nop())
	ctx := context.Background()

	_, err := svc.Get(ctx, "u1")
	requireKind(t, err, apperr.KindInternal)
	_, err = svc.Create(ctx, "u1", []string{"Arte"})
	requireKind(t, err, apperr.KindInternal)
	_, _, err = svc.Update(ctx, "u1", []string{"Arte"})
	requireKind(t, err, apperr.KindInternal)
	requireKind(t, svc.Delete(ctx, "u1"), apperr.KindInternal)
}
