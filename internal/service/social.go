package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/social-auth/internal/apperr"
	"github.com/iliyamo/social-auth/internal/logging"
	"github.com/iliyamo/social-auth/internal/model"
	"github.com/iliyamo/social-auth/internal/repository"
)

const msgSocialInternal = "Internal server error."

// ProfileInput carries the editable complete-profile fields. Nil pointers
// clear the stored value.
type ProfileInput struct {
	FullName       *string
	Age            *int
	ProfilePicture *string
	Bio            *string
	Hobbies        []string
	Location       *string
	Website        *string
	Phone          *string
}

func cleanPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := clean(*p)
	if v == "" {
		return nil
	}
	return &v
}

// Normalize trims text fields, turning blank ones into nil, and dedupes
// hobbies.
func (in ProfileInput) Normalize() ProfileInput {
	out := ProfileInput{
		FullName:       cleanPtr(in.FullName),
		Age:            in.Age,
		ProfilePicture: cleanPtr(in.ProfilePicture),
		Bio:            cleanPtr(in.Bio),
		Location:       cleanPtr(in.Location),
		Website:        cleanPtr(in.Website),
		Phone:          cleanPtr(in.Phone),
	}
	hobbies := make([]string, 0, len(in.Hobbies))
	for _, h := range in.Hobbies {
		if h = clean(h); h != "" {
			hobbies = append(hobbies, h)
		}
	}
	out.Hobbies = dedupe(hobbies)
	return out
}

func (in ProfileInput) Validate() []string {
	var errs []string
	maxLen := func(p *string, n int, field string) {
		if p != nil && tooLong(*p, n) {
			errs = append(errs, fmt.Sprintf("%s must be at most %d characters.", field, n))
		}
	}
	maxLen(in.FullName, 100, "full_name")
	if in.Age != nil && (*in.Age < 1 || *in.Age > 120) {
		errs = append(errs, "age must be between 1 and 120.")
	}
	maxLen(in.ProfilePicture, 500, "profile_picture")
	maxLen(in.Bio, 500, "bio")
	maxLen(in.Location, 100, "location")
	maxLen(in.Website, 200, "website")
	if in.Website != nil && !validWebURL(*in.Website) {
		errs = append(errs, "website must be a valid http or https URL.")
	}
	maxLen(in.Phone, 20, "phone")
	return errs
}

type ProfileService struct {
	store ProfileStore
	log   logging.Logger
}

func NewProfileService(store ProfileStore, log logging.Logger) *ProfileService {
	return &ProfileService{store: store, log: log}
}

// Get returns the user's complete profile. Users who never saved one get an
// empty profile rather than NotFound.
func (s *ProfileService) Get(ctx context.Context, userID string) (model.CompleteProfile, error) {
	p, err := s.store.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.CompleteProfile{UserID: userID, Hobbies: []string{}}, nil
	}
	if err != nil {
		s.log.Error(ctx, "profile: get failed", "user_id", userID, "error", err)
		return model.CompleteProfile{}, apperr.Internal(msgSocialInternal)
	}
	return p, nil
}

// Save upserts the user's complete profile.
func (s *ProfileService) Save(ctx context.Context, userID string, in ProfileInput) (model.CompleteProfile, bool, error) {
	in = in.Normalize()
	if errs := in.Validate(); len(errs) > 0 {
		return model.CompleteProfile{}, false, validationError(errs)
	}
	p, created, err := s.store.Upsert(ctx, model.CompleteProfile{
		UserID:         userID,
		FullName:       in.FullName,
		Age:            in.Age,
		ProfilePicture: in.ProfilePicture,
		Bio:            in.Bio,
		Hobbies:        in.Hobbies,
		Location:       in.Location,
		Website:        in.Website,
		Phone:          in.Phone,
	})
	if err != nil {
		s.log.Error(ctx, "profile: upsert failed", "user_id", userID, "error", err)
		return model.CompleteProfile{}, false, apperr.Internal(msgSocialInternal)
	}
	return p, created, nil
}

// FriendshipService manages friend requests between users.
type FriendshipService struct {
	friendships FriendshipStore
	users       UserStore
	log         logging.Logger
}

func NewFriendshipService(friendships FriendshipStore, users UserStore, log logging.Logger) *FriendshipService {
	return &FriendshipService{friendships: friendships, users: users, log: log}
}

// Request opens a pending friendship from requesterID to addresseeID.
func (s *FriendshipService) Request(ctx context.Context, requesterID, addresseeID string) (model.Friendship, error) {
	addresseeID = clean(addresseeID)
	if addresseeID == "" {
		return model.Friendship{}, validationError([]string{"addressee_id is required."})
	}
	if addresseeID == requesterID {
		return model.Friendship{}, apperr.BadRequest("You cannot send a friend request to yourself.")
	}
	if _, err := s.users.GetByID(ctx, addresseeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Friendship{}, apperr.NotFound(MsgUserNotFound)
		}
		s.log.Error(ctx, "friendship: addressee lookup failed", "error", err)
		return model.Friendship{}, apperr.Internal(msgSocialInternal)
	}

	f := model.Friendship{RequesterID: requesterID, AddresseeID: addresseeID, Status: model.FriendshipPending}
	if err := s.friendships.Create(ctx, &f); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return model.Friendship{}, apperr.Conflict("A friendship between these users already exists.")
		}
		s.log.Error(ctx, "friendship: create failed", "error", err)
		return model.Friendship{}, apperr.Internal(msgSocialInternal)
	}
	return f, nil
}

// Respond moves friendship id to status on behalf of userID. The addressee
// may accept, reject or block a pending request; the requester may only
// block. Blocking is allowed from any state.
func (s *FriendshipService) Respond(ctx context.Context, userID, id string, status model.FriendshipStatus) (model.Friendship, error) {
	if !status.Valid() || status == model.FriendshipPending {
		return model.Friendship{}, apperr.BadRequest("status must be one of accepted, rejected, blocked.")
	}
	f, err := s.get(ctx, userID, id)
	if err != nil {
		return model.Friendship{}, err
	}

	switch {
	case userID == f.RequesterID && status != model.FriendshipBlocked:
		return model.Friendship{}, apperr.Forbidden("Only the addressee can accept or reject a friend request.")
	case status != model.FriendshipBlocked && f.Status != model.FriendshipPending:
		return model.Friendship{}, apperr.Conflict(fmt.Sprintf("Friend request is already %s.", f.Status))
	}

	out, err := s.friendships.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Friendship{}, apperr.NotFound("Friendship not found.")
		}
		s.log.Error(ctx, "friendship: update failed", "id", id, "error", err)
		return model.Friendship{}, apperr.Internal(msgSocialInternal)
	}
	return out, nil
}

// List returns userID's friendships, optionally filtered by status.
func (s *FriendshipService) List(ctx context.Context, userID string, status model.FriendshipStatus) ([]model.Friendship, error) {
	if status != "" && !status.Valid() {
		return nil, apperr.BadRequest("status must be one of pending, accepted, rejected, blocked.")
	}
	out, err := s.friendships.ListForUser(ctx, userID, status)
	if err != nil {
		s.log.Error(ctx, "friendship: list failed", "user_id", userID, "error", err)
		return nil, apperr.Internal(msgSocialInternal)
	}
	return out, nil
}

// Remove deletes friendship id if userID is one of its parties.
func (s *FriendshipService) Remove(ctx context.Context, userID, id string) error {
	if _, err := s.get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.friendships.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("Friendship not found.")
		}
		s.log.Error(ctx, "friendship: delete failed", "id", id, "error", err)
		return apperr.Internal(msgSocialInternal)
	}
	return nil
}

// get loads friendship id and hides it from users who are not a party to it.
func (s *FriendshipService) get(ctx context.Context, userID, id string) (model.Friendship, error) {
	f, err := s.friendships.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && f.RequesterID != userID && f.AddresseeID != userID) {
		return model.Friendship{}, apperr.NotFound("Friendship not found.")
	}
	if err != nil {
		s.log.Error(ctx, "friendship: get failed", "id", id, "error", err)
		return model.Friendship{}, apperr.Internal(msgSocialInternal)
	}
	return f, nil
}

// CommunityInput is a community creation request.
type CommunityInput struct {
	Name        string
	Description *string
	Category    string
	Tags        []string
	ImageURL    *string
}

func (in CommunityInput) Normalize() CommunityInput {
	out := CommunityInput{
		Name:        clean(in.Name),
		Description: cleanPtr(in.Description),
		Category:    clean(in.Category),
		ImageURL:    cleanPtr(in.ImageURL),
	}
	tags := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		if t = clean(t); t != "" {
			tags = append(tags, t)
		}
	}
	out.Tags = dedupe(tags)
	return out
}

func (in CommunityInput) Validate() []string {
	var errs []string
	if in.Name == "" || tooLong(in.Name, 100) {
		errs = append(errs, "name must be between 1 and 100 characters.")
	}
	if in.Description != nil && tooLong(*in.Description, 1000) {
		errs = append(errs, "description must be at most 1000 characters.")
	}
	if !model.IsPreference(in.Category) {
		errs = append(errs, "category must be one of the available preferences.")
	}
	if in.ImageURL != nil && (tooLong(*in.ImageURL, 500) || !validWebURL(*in.ImageURL)) {
		errs = append(errs, "community_image_url must be a valid http or https URL of at most 500 characters.")
	}
	return errs
}

type CommunityService struct {
	store CommunityStore
	log   logging.Logger
}

func NewCommunityService(store CommunityStore, log logging.Logger) *CommunityService {
	return &CommunityService{store: store, log: log}
}

// Create files a new active community under creatorID.
func (s *CommunityService) Create(ctx context.Context, creatorID string, in CommunityInput) (model.Community, error) {
	in = in.Normalize()
	if errs := in.Validate(); len(errs) > 0 {
		return model.Community{}, validationError(errs).With("validPreferences", model.PreferenceKeys())
	}
	c := model.Community{
		CreatorID:   creatorID,
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Tags:        in.Tags,
		ImageURL:    in.ImageURL,
	}
	if err := s.store.Create(ctx, &c); err != nil {
		s.log.Error(ctx, "community: create failed", "error", err)
		return model.Community{}, apperr.Internal(msgSocialInternal)
	}
	return c, nil
}

func (s *CommunityService) Get(ctx context.Context, id string) (model.Community, error) {
	c, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Community{}, apperr.NotFound("Community not found.")
	}
	if err != nil {
		s.log.Error(ctx, "community: get failed", "id", id, "error", err)
		return model.Community{}, apperr.Internal(msgSocialInternal)
	}
	return c, nil
}

// List returns active communities, optionally limited to one category.
func (s *CommunityService) List(ctx context.Context, category string) ([]model.Community, error) {
	if category != "" && !model.IsPreference(category) {
		return nil, apperr.BadRequest("Unknown category.").With("validPreferences", model.PreferenceKeys())
	}
	out, err := s.store.ListActive(ctx, category)
	if err != nil {
		s.log.Error(ctx, "community: list failed", "error", err)
		return nil, apperr.Internal(msgSocialInternal)
	}
	return out, nil
}
