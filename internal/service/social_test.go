package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/social-auth/internal/apperr"
	"github.com/iliyamo/social-auth/internal/logging"
	"github.com/iliyamo/social-auth/internal/model"
	"github.com/iliyamo/social-auth/internal/repository"
)

func ptr[T any](v T) *T { return &v }

func TestProfile_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	svc := NewProfileService(repository.NewMemory().Profiles(), logging.Nop())

	empty, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", empty.UserID)
	assert.Equal(t, []string{}, empty.Hobbies)

	p, created, err := svc.Save(ctx, "u1", ProfileInput{
		FullName: ptr("  Ana Pérez "),
		Age:      ptr(29),
		Bio:      ptr("   "),
		Hobbies:  []string{"chess", " chess", "", "go"},
		Website:  ptr("https://ana.example"),
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Ana Pérez", *p.FullName)
	assert.Nil(t, p.Bio)
	assert.Equal(t, []string{"chess", "go"}, p.Hobbies)

	_, created, err = svc.Save(ctx, "u1", ProfileInput{Age: ptr(30)})
	require.NoError(t, err)
	assert.False(t, created)

	got, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 30, *got.Age)
	assert.Nil(t, got.FullName)
}

func TestProfile_Validation(t *testing.T) {
	svc := NewProfileService(repository.NewMemory().Profiles(), logging.Nop())
	_, _, err := svc.Save(context.Background(), "u1", ProfileInput{
		FullName: ptr(strings.Repeat("x", 101)),
		Age:      ptr(0),
		Website:  ptr("ftp://files.example"),
		Phone:    ptr(strings.Repeat("1", 21)),
	})
	e := requireKind(t, err, apperr.KindBadRequest)
	assert.Len(t, e.Fields["errors"], 4)
}

type socialFixture struct {
	users   UserStore
	friends *FriendshipService
	ana     string
	ben     string
	cat     string
}

func newSocial(t *testing.T) socialFixture {
	t.Helper()
	mem := repository.NewMemory()
	users := mem.Users()
	f := socialFixture{users: users, friends: NewFriendshipService(mem.Friendships(), users, logging.Nop())}
	for _, name := range []string{"ana", "ben", "cat"} {
		u := &model.User{Username: name, Email: name + "@x.io", PasswordHash: "h", Role: model.RoleUser}
		require.NoError(t, users.Create(context.Background(), u))
		switch name {
		case "ana":
			f.ana = u.ID
		case "ben":
			f.ben = u.ID
		case "cat":
			f.cat = u.ID
		}
	}
	return f
}

func TestFriendship_Request(t *testing.T) {
	ctx := context.Background()
	f := newSocial(t)

	fr, err := f.friends.Request(ctx, f.ana, f.ben)
	require.NoError(t, err)
	assert.Equal(t, model.FriendshipPending, fr.Status)

	_, err = f.friends.Request(ctx, f.ben, f.ana)
	requireKind(t, err, apperr.KindConflict)

	_, err = f.friends.Request(ctx, f.ana, f.ana)
	requireKind(t, err, apperr.KindBadRequest)

	_, err = f.friends.Request(ctx, f.ana, "ghost")
	requireKind(t, err, apperr.KindNotFound)

	_, err = f.friends.Request(ctx, f.ana, " ")
	requireKind(t, err, apperr.KindBadRequest)
}

func TestFriendship_Respond(t *testing.T) {
	ctx := context.Background()
	f := newSocial(t)
	fr, err := f.friends.Request(ctx, f.ana, f.ben)
	require.NoError(t, err)

	_, err = f.friends.Respond(ctx, f.ana, fr.ID, model.FriendshipAccepted)
	requireKind(t, err, apperr.KindForbidden)

	_, err = f.friends.Respond(ctx, f.cat, fr.ID, model.FriendshipAccepted)
	requireKind(t, err, apperr.KindNotFound)

	_, err = f.friends.Respond(ctx, f.ben, fr.ID, model.FriendshipPending)
	requireKind(t, err, apperr.KindBadRequest)

	got, err := f.friends.Respond(ctx, f.ben, fr.ID, model.FriendshipAccepted)
	require.NoError(t, err)
	assert.Equal(t, model.FriendshipAccepted, got.Status)

	_, err = f.friends.Respond(ctx, f.ben, fr.ID, model.FriendshipRejected)
	requireKind(t, err, apperr.KindConflict)

	got, err = f.friends.Respond(ctx, f.ana, fr.ID, model.FriendshipBlocked)
	require.NoError(t, err)
	assert.Equal(t, model.FriendshipBlocked, got.Status)
}

func TestFriendship_ListAndRemove(t *testing.T) {
	ctx := context.Background()
	f := newSocial(t)
	ab, err := f.friends.Request(ctx, f.ana, f.ben)
	require.NoError(t, err)
	ca, err := f.friends.Request(ctx, f.cat, f.ana)
	require.NoError(t, err)
	_, err = f.friends.Respond(ctx, f.ana, ca.ID, model.FriendshipAccepted)
	require.NoError(t, err)

	all, err := f.friends.List(ctx, f.ana, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	accepted, err := f.friends.List(ctx, f.ana, model.FriendshipAccepted)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, ca.ID, accepted[0].ID)

	_, err = f.friends.List(ctx, f.ana, "friends")
	requireKind(t, err, apperr.KindBadRequest)

	requireKind(t, f.friends.Remove(ctx, f.cat, ab.ID), apperr.KindNotFound)
	require.NoError(t, f.friends.Remove(ctx, f.ben, ab.ID))
	requireKind(t, f.friends.Remove(ctx, f.ben, ab.ID), apperr.KindNotFound)
}

func TestCommunity(t *testing.T) {
	ctx := context.Background()
	svc := NewCommunityService(repository.NewMemory().Communities(), logging.Nop())

	c, err := svc.Create(ctx, "u1", CommunityInput{
		Name:     " Chess club ",
		Category: "Gaming",
		Tags:     []string{"chess", "chess", "boards"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Chess club", c.Name)
	assert.Equal(t, "u1", c.CreatorID)
	assert.Equal(t, 1, c.MembersCount)
	assert.True(t, c.IsActive)
	assert.Equal(t, []string{"chess", "boards"}, c.Tags)

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	_, err = svc.Get(ctx, "missing")
	requireKind(t, err, apperr.KindNotFound)

	list, err := svc.List(ctx, "Gaming")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = svc.List(ctx, "Arte")
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = svc.List(ctx, "Knitting")
	requireKind(t, err, apperr.KindBadRequest)

	_, err = svc.Create(ctx, "u1", CommunityInput{Name: "", Category: "Knitting", ImageURL: ptr("not a url")})
	e := requireKind(t, err, apperr.KindBadRequest)
	assert.Len(t, e.Fields["errors"], 3)
	assert.Equal(t, model.PreferenceKeys(), e.Fields["validPreferences"])
}
