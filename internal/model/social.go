package model

import "time"

// CompleteProfile is the extended, optional profile of a user. One row per
// user in `complete_profiles`; every field besides UserID is nullable.
type CompleteProfile struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	FullName       *string   `json:"full_name"`
	Age            *int      `json:"age"`
	ProfilePicture *string   `json:"profile_picture"`
	Bio            *string   `json:"bio"`
	Hobbies        []string  `json:"hobbies"`
	Location       *string   `json:"location"`
	Website        *string   `json:"website"`
	Phone          *string   `json:"phone"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FriendshipStatus is the state of a friendship request.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipRejected FriendshipStatus = "rejected"
	FriendshipBlocked  FriendshipStatus = "blocked"
)

func (s FriendshipStatus) Valid() bool {
	switch s {
	case FriendshipPending, FriendshipAccepted, FriendshipRejected, FriendshipBlocked:
		return true
	}
	return false
}

// Friendship links a requester to an addressee. A pair appears at most once
// regardless of direction, and a user cannot befriend themselves.
type Friendship struct {
	ID          string           `json:"id"`
	RequesterID string           `json:"requester_id"`
	AddresseeID string           `json:"addressee_id"`
	Status      FriendshipStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Community is a user-created group filed under one preference category.
type Community struct {
	ID           string    `json:"id"`
	CreatorID    string    `json:"creator_id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	Category     string    `json:"category"`
	Tags         []string  `json:"tags"`
	ImageURL     *string   `json:"community_image_url"`
	MembersCount int       `json:"members_count"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
