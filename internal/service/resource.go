package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/social-auth/internal/apperr"
	"github.com/iliyamo/social-auth/internal/logging"
	"github.com/iliyamo/social-auth/internal/model"
	"github.com/iliyamo/social-auth/internal/queue"
	"github.com/iliyamo/social-auth/internal/repository"
)

// ParseValues decodes raw as a JSON array of strings. Anything else,
// including null or an array holding null, is rejected with a BadRequest
// carrying msg.
func ParseValues(raw json.RawMessage, msg string) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, apperr.BadRequest(msg)
	}
	// Decoding through pointers keeps null elements visible; a plain
	// []string would turn them into "".
	var elems []*string
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, apperr.BadRequest(msg)
	}
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		if e == nil {
			return nil, apperr.BadRequest(msg)
		}
		out = append(out, *e)
	}
	return out, nil
}

// InterestsService manages the free-form interests list. Writes always
// upsert.
type InterestsService struct {
	store SingletonStore
	log   logging.Logger
}

func NewInterestsService(store SingletonStore, log logging.Logger) *InterestsService {
	return &InterestsService{store: store, log: log}
}

const (
	MsgInterestsNotArray = "Interests must be an array of strings."
	msgInterestsInternal = "Internal server error while processing the request."
)

// Set replaces the user's interests, creating the row on first use, and
// returns the stored list.
func (s *InterestsService) Set(ctx context.Context, userID string, values []string) ([]string, error) {
	res, _, err := s.store.Upsert(ctx, userID, dedupe(values))
	if err != nil {
		s.log.Error(ctx, "interests: upsert failed", "user_id", userID, "error", err)
		return nil, apperr.Internal(msgInterestsInternal)
	}
	return res.Values, nil
}

// Get returns the user's interests or an empty list.
func (s *InterestsService) Get(ctx context.Context, userID string) ([]string, error) {
	res, err := s.store.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		s.log.Error(ctx, "interests: get failed", "user_id", userID, "error", err)
		return nil, apperr.Internal(msgInterestsInternal)
	}
	return res.Values, nil
}

// Client-facing preference messages.
const (
	MsgPreferencesNotArray = "Preferences must be an array of strings."
	MsgPreferencesExist    = "User already has preferences configured. Use PUT to update."
	MsgPreferencesMissing  = "No preferences found to delete."
	msgPreferencesInternal = "Internal server error."
)

// PreferencesService manages the enumerated preferences list. POST is
// create-only and PUT upserts.
type PreferencesService struct {
	store  SingletonStore
	events queue.Publisher
	log    logging.Logger
	now    func() time.Time
}

func NewPreferencesService(store SingletonStore, events queue.Publisher, log logging.Logger) *PreferencesService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &PreferencesService{store: store, events: events, log: log, now: time.Now}
}

// check rejects values outside the catalogue, listing the offenders and the
// allowed set.
func (s *PreferencesService) check(values []string) error {
	var invalid []string
	for _, v := range values {
		if !model.IsPreference(v) {
			invalid = append(invalid, v)
		}
	}
	if len(invalid) == 0 {
		return nil
	}
	return apperr.BadRequest("Invalid preferences: "+strings.Join(invalid, ", ")).
		With("invalidPreferences", invalid).
		With("validPreferences", model.PreferenceKeys())
}

// Get returns the stored row; a user without one gets an empty row with
// only UserID set.
func (s *PreferencesService) Get(ctx context.Context, userID string) (model.Resource, error) {
	res, err := s.store.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Resource{UserID: userID, Values: []string{}}, nil
	}
	if err != nil {
		s.log.Error(ctx, "preferences: get failed", "user_id", userID, "error", err)
		return model.Resource{}, apperr.Internal(msgPreferencesInternal)
	}
	return res, nil
}

// Create stores the user's first preferences. A second call is a Conflict.
func (s *PreferencesService) Create(ctx context.Context, userID string, values []string) (model.Resource, error) {
	if err := s.check(values); err != nil {
		return model.Resource{}, err
	}
	res, err := s.store.CreateIfAbsent(ctx, userID, dedupe(values))
	if errors.Is(err, repository.ErrAlreadyExists) {
		return model.Resource{}, apperr.Conflict(MsgPreferencesExist)
	}
	if err != nil {
		s.log.Error(ctx, "preferences: create failed", "user_id", userID, "error", err)
		return model.Resource{}, apperr.Internal(msgPreferencesInternal)
	}
	s.changed(ctx, userID, queue.ActionCreated, res.Values)
	return res, nil
}

// Update replaces the user's preferences, creating them when absent.
// created reports which of the two happened.
func (s *PreferencesService) Update(ctx context.Context, userID string, values []string) (model.Resource, bool, error) {
	if err := s.check(values); err != nil {
		return model.Resource{}, false, err
	}
	res, created, err := s.store.Upsert(ctx, userID, dedupe(values))
	if err != nil {
		s.log.Error(ctx, "preferences: upsert failed", "user_id", userID, "error", err)
		return model.Resource{}, false, apperr.Internal(msgPreferencesInternal)
	}
	action := queue.ActionUpdated
	if created {
		action = queue.ActionCreated
	}
	s.changed(ctx, userID, action, res.Values)
	return res, created, nil
}

// Delete removes the user's preferences or reports NotFound.
func (s *PreferencesService) Delete(ctx context.Context, userID string) error {
	err := s.store.Delete(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(MsgPreferencesMissing)
	}
	if err != nil {
		s.log.Error(ctx, "preferences: delete failed", "user_id", userID, "error", err)
		return apperr.Internal(msgPreferencesInternal)
	}
	s.changed(ctx, userID, queue.ActionDeleted, []string{})
	return nil
}

func (s *PreferencesService) changed(ctx context.Context, userID, action string, values []string) {
	publish(ctx, s.events, s.log, queue.PreferencesChangedQueue, queue.PreferencesChangedEvent{
		UserID:      userID,
		Action:      action,
		Preferences: values,
		ChangedAt:   s.now().UTC().Format(time.RFC3339),
	})
}
