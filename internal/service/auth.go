package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/social-auth/internal/apperr"
	"github.com/iliyamo/social-auth/internal/auth"
	"github.com/iliyamo/social-auth/internal/logging"
	"github.com/iliyamo/social-auth/internal/model"
	"github.com/iliyamo/social-auth/internal/queue"
	"github.com/iliyamo/social-auth/internal/repository"
)

// Client-facing messages of the auth workflows.
const (
	MsgEmailTaken         = "User with this email already exists."
	MsgUsernameTaken      = "Username is already taken."
	MsgInvalidCredentials = "Invalid credentials."
	MsgValidationFailed   = "Validation failed."
	MsgUserNotFound       = "User not found."
)

// RegisterInput is the registration request after decoding.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput is the login request after decoding.
type LoginInput struct {
	Email    string
	Password string
}

// Session is what a successful registration or login hands back.
type Session struct {
	User  model.PublicUser
	Token auth.Token
}

// AuthService implements registration, login and user lookup.
type AuthService struct {
	users  UserStore
	hasher auth.Hasher
	tokens *auth.Issuer
	events queue.Publisher
	log    logging.Logger
	now    func() time.Time
}

func NewAuthService(users UserStore, hasher auth.Hasher, tokens *auth.Issuer, events queue.Publisher, log logging.Logger) *AuthService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &AuthService{users: users, hasher: hasher, tokens: tokens, events: events, log: log, now: time.Now}
}

// Normalize trims the username and email, strips control characters from
// them and lower-cases the email. The password is kept exactly as typed.
func (in RegisterInput) Normalize() RegisterInput {
	return RegisterInput{
		Username: clean(in.Username),
		Email:    strings.ToLower(clean(in.Email)),
		Password: in.Password,
	}
}

// Validate lists every problem with an already normalized input.
func (in RegisterInput) Validate() []string {
	var errs []string
	if !usernamePattern.MatchString(in.Username) {
		errs = append(errs, "Username must be 3-30 characters long and contain only letters, numbers, '_', '.' or '-'.")
	}
	if !validEmail(in.Email) {
		errs = append(errs, "A valid email address is required.")
	}
	switch {
	case len(in.Password) < 6:
		errs = append(errs, "Password must be at least 6 characters long.")
	case len(in.Password) > 72:
		errs = append(errs, "Password must be at most 72 bytes long.")
	}
	return errs
}

func (in LoginInput) Normalize() LoginInput {
	return LoginInput{Email: strings.ToLower(clean(in.Email)), Password: in.Password}
}

func (in LoginInput) Validate() []string {
	var errs []string
	if in.Email == "" {
		errs = append(errs, "Email is required.")
	}
	if in.Password == "" {
		errs = append(errs, "Password is required.")
	}
	return errs
}

func validationError(errs []string) *apperr.Error {
	return apperr.BadRequest(MsgValidationFailed).With("errors", errs)
}

// Register creates a user with the baseline role and opens a session for it.
// Email and username clashes are reported separately; when two requests race
// past the pre-checks the store's unique constraints still decide.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	in = in.Normalize()
	if errs := in.Validate(); len(errs) > 0 {
		return Session{}, validationError(errs)
	}
	internal := apperr.Internal("Internal server error during registration.")

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return Session{}, apperr.Conflict(MsgEmailTaken)
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.log.Error(ctx, "register: lookup by email failed", "error", err)
		return Session{}, internal
	}
	if _, err := s.users.GetByUsername(ctx, in.Username); err == nil {
		return Session{}, apperr.Conflict(MsgUsernameTaken)
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.log.Error(ctx, "register: lookup by username failed", "error", err)
		return Session{}, internal
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.log.Error(ctx, "register: hash password failed", "error", err)
		return Session{}, internal
	}

	u := model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    s.now().UTC().Truncate(time.Microsecond),
	}
	switch err := s.users.Create(ctx, &u); {
	case err == nil:
	case errors.Is(err, repository.ErrEmailExists):
		return Session{}, apperr.Conflict(MsgEmailTaken)
	case errors.Is(err, repository.ErrUsernameExists):
		return Session{}, apperr.Conflict(MsgUsernameTaken)
	default:
		s.log.Error(ctx, "register: create user failed", "error", err)
		return Session{}, internal
	}

	tok, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		s.log.Error(ctx, "register: issue token failed", "user_id", u.ID, "error", err)
		return Session{}, internal
	}

	s.log.Info(ctx, "user registered", "user_id", u.ID)
	s.publish(ctx, queue.UserRegisteredQueue, queue.UserRegisteredEvent{
		UserID:       u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Role:         u.Role,
		RegisteredAt: u.CreatedAt.Format(time.RFC3339),
	})
	return Session{User: u.Public(), Token: tok}, nil
}

// Login verifies credentials. Unknown emails and wrong passwords produce the
// same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (auth.Token, error) {
	in = in.Normalize()
	if errs := in.Validate(); len(errs) > 0 {
		return auth.Token{}, validationError(errs)
	}

	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return auth.Token{}, apperr.Unauthorized(MsgInvalidCredentials)
		}
		s.log.Error(ctx, "login: lookup failed", "error", err)
		return auth.Token{}, apperr.Internal("Internal server error during login.")
	}
	if !s.hasher.Verify(u.PasswordHash, in.Password) {
		return auth.Token{}, apperr.Unauthorized(MsgInvalidCredentials)
	}

	tok, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		s.log.Error(ctx, "login: issue token failed", "user_id", u.ID, "error", err)
		return auth.Token{}, apperr.Internal("Internal server error during login.")
	}
	return tok, nil
}

// Profile returns the public view of userID.
func (s *AuthService) Profile(ctx context.Context, userID string) (model.PublicUser, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.PublicUser{}, apperr.NotFound(MsgUserNotFound)
		}
		s.log.Error(ctx, "profile: lookup failed", "user_id", userID, "error", err)
		return model.PublicUser{}, apperr.Internal("Internal server error retrieving profile.")
	}
	return u.Public(), nil
}

// ListUsers returns every user's public view.
func (s *AuthService) ListUsers(ctx context.Context) ([]model.PublicUser, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		s.log.Error(ctx, "list users failed", "error", err)
		return nil, apperr.Internal("Internal server error retrieving users.")
	}
	out := make([]model.PublicUser, len(users))
	for i := range users {
		out[i] = users[i].Public()
	}
	return out, nil
}

// publish sends an event without failing the caller. The request context's
// cancellation is detached so a client hanging up does not drop the event.
func (s *AuthService) publish(ctx context.Context, q string, ev any) {
	publish(ctx, s.events, s.log, q, ev)
}

func publish(ctx context.Context, p queue.Publisher, log logging.Logger, q string, ev any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := p.Publish(ctx, q, ev); err != nil {
		log.Warn(ctx, "event publish failed", "queue", q, "error", err)
	}
}
