package model

import "time"

// Role names seeded into the roles table. RoleUser is assigned on
// registration; RoleAdmin unlocks the user listing.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an identity record as stored in the `users` table.
//
// Fields:
//
//	ID           – uuid primary key.
//	Username     – globally unique handle.
//	Email        – globally unique, stored lower-cased.
//	PasswordHash – bcrypt hash; the plaintext is never stored.
//	Role         – role name resolved through users.role_id.
//	CreatedAt    – timestamp of creation.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// PublicUser is the externally visible projection of a User. It has no
// password hash field.
type PublicUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
