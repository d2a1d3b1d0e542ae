package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/social-auth/internal/apperr"
	"github.com/iliyamo/social-auth/internal/auth"
	"github.com/iliyamo/social-auth/internal/logging"
	"github.com/iliyamo/social-auth/internal/model"
	"github.com/iliyamo/social-auth/internal/queue"
	"github.com/iliyamo/social-auth/internal/repository"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newAuth(t *testing.T, users UserStore) (*AuthService, *auth.Issuer, *recordingPublisher) {
	t.Helper()
	if users == nil {
		users = repository.NewMemory().Users()
	}
	issuer := auth.NewIssuer("test-secret").WithClock(func() time.Time { return now })
	pub := &recordingPublisher{}
	svc := NewAuthService(users, auth.NewBcryptHasher(bcrypt.MinCost), issuer, pub, logging.Nop())
	svc.now = func() time.Time { return now }
	return svc, issuer, pub
}

func validRegister() RegisterInput {
	return RegisterInput{Username: "ana_01", Email: "Ana@Example.com", Password: "secret123"}
}

func TestRegister(t *testing.T) {
	svc, issuer, pub := newAuth(t, nil)

	sess, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)

	assert.NotEmpty(t, sess.User.ID)
	assert.Equal(t, "ana_01", sess.User.Username)
	assert.Equal(t, "ana@example.com", sess.User.Email)
	assert.Equal(t, model.RoleUser, sess.User.Role)
	assert.Equal(t, now, sess.User.CreatedAt)

	id, err := issuer.Verify(sess.Token.Value)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, id.UserID)
	assert.Equal(t, model.RoleUser, id.Role)
	assert.Equal(t, now.Add(time.Hour), id.ExpiresAt)

	events := pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, queue.UserRegisteredQueue, events[0].queue)
	ev := events[0].event.(queue.UserRegisteredEvent)
	assert.Equal(t, sess.User.ID, ev.UserID)
	assert.Equal(t, "2025-03-01T12:00:00Z", ev.RegisteredAt)
}

func TestRegister_StoresHashNotPlaintext(t *testing.T) {
	users := repository.NewMemory().Users()
	svc, _, _ := newAuth(t, users)

	sess, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)

	u, err := users.GetByID(context.Background(), sess.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret123")))
}

func TestRegister_Conflicts(t *testing.T) {
	svc, _, _ := newAuth(t, nil)
	ctx := context.Background()
	_, err := svc.Register(ctx, validRegister())
	require.NoError(t, err)

	sameEmail := validRegister()
	sameEmail.Username = "someone_else"
	e := requireKind(t, mustFail(svc.Register(ctx, sameEmail)), apperr.KindConflict)
	assert.Equal(t, MsgEmailTaken, e.Message)

	sameUser := validRegister()
	sameUser.Email = "other@example.com"
	e = requireKind(t, mustFail(svc.Register(ctx, sameUser)), apperr.KindConflict)
	assert.Equal(t, MsgUsernameTaken, e.Message)
}

func mustFail[T any](_ T, err error) error { return err }

func TestRegister_Validation(t *testing.T) {
	svc, _, pub := newAuth(t, nil)

	e := requireKind(t, mustFail(svc.Register(context.Background(),
		RegisterInput{Username: "a!", Email: "nope", Password: "123"})), apperr.KindBadRequest)
	assert.Equal(t, MsgValidationFailed, e.Message)
	assert.Len(t, e.Fields["errors"], 3)

	long := validRegister()
	long.Password = strings.Repeat("x", 73)
	requireKind(t, mustFail(svc.Register(context.Background(), long)), apperr.KindBadRequest)

	assert.Empty(t, pub.all())
}

func TestRegister_InternalErrorsAreGeneric(t *testing.T) {
	for name, users := range map[string]failingUsers{
		"lookup": {UserStore: repository.NewMemory().Users(), failLookup: true},
		"create": {UserStore: repository.NewMemory().Users(), failCreate: true},
	} {
		t.Run(name, func(t *testing.T) {
			svc, _, _ := newAuth(t, users)
			e := requireKind(t, mustFail(svc.Register(context.Background(), validRegister())), apperr.KindInternal)
			assert.Equal(t, "Internal server error during registration.", e.Message)
			assert.NotContains(t, e.Error(), "10.0.0.5")
		})
	}
}

func TestRegister_PublishFailureIgnored(t *testing.T) {
	svc, _, pub := newAuth(t, nil)
	pub.err = fmt.Errorf("broker down")

	_, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	for trial := 0; trial < 20; trial++ {
		svc, _, _ := newAuth(t, nil)
		const n = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			ok        int
			conflicts int
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := svc.Register(context.Background(), RegisterInput{
					Username: fmt.Sprintf("user_%d", i), Email: "race@example.com", Password: "secret123",
				})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					ok++
				case apperr.KindOf(err) == apperr.KindConflict:
					conflicts++
				}
			}(i)
		}
		wg.Wait()
		require.Equal(t, 1, ok, "trial %d", trial)
		require.Equal(t, n-1, conflicts, "trial %d", trial)
	}
}

func TestLogin(t *testing.T) {
	svc, issuer, _ := newAuth(t, nil)
	ctx := context.Background()
	sess, err := svc.Register(ctx, validRegister())
	require.NoError(t, err)

	tok, err := svc.Login(ctx, LoginInput{Email: " ANA@example.com ", Password: "secret123"})
	require.NoError(t, err)
	id, err := issuer.Verify(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, id.UserID)
	assert.Equal(t, model.RoleUser, id.Role)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	svc, _, _ := newAuth(t, nil)
	ctx := context.Background()
	_, err := svc.Register(ctx, validRegister())
	require.NoError(t, err)

	wrongPass := requireKind(t, mustFail(svc.Login(ctx, LoginInput{Email: "ana@example.com", Password: "nope-nope"})), apperr.KindUnauthorized)
	unknown := requireKind(t, mustFail(svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "secret123"})), apperr.KindUnauthorized)
	assert.Equal(t, wrongPass, unknown)
	assert.Equal(t, MsgInvalidCredentials, unknown.Message)
}

func TestLogin_Validation(t *testing.T) {
	svc, _, _ := newAuth(t, nil)
	e := requireKind(t, mustFail(svc.Login(context.Background(), LoginInput{})), apperr.KindBadRequest)
	assert.Equal(t, []string{"Email is required.", "Password is required."}, e.Fields["errors"])
}

func TestLogin_StoreFailure(t *testing.T) {
	svc, _, _ := newAuth(t, failingUsers{UserStore: repository.NewMemory().Users(), failLookup: true})
	e := requireKind(t, mustFail(svc.Login(context.Background(),
		LoginInput{Email: "a@b.io", Password: "x"})), apperr.KindInternal)
	assert.Equal(t, "Internal server error during login.", e.Message)
}

func TestProfileAndList(t *testing.T) {
	svc, _, _ := newAuth(t, nil)
	ctx := context.Background()
	sess, err := svc.Register(ctx, validRegister())
	require.NoError(t, err)

	u, err := svc.Profile(ctx, sess.User.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.User, u)

	requireKind(t, mustFail(svc.Profile(ctx, "missing")), apperr.KindNotFound)

	list, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.PublicUser{sess.User}, list)

	broken, _, _ := newAuth(t, failingUsers{UserStore: repository.NewMemory().Users(), failList: true})
	requireKind(t, mustFail(broken.ListUsers(ctx)), apperr.KindInternal)
}
