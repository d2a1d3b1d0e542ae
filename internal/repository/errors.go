// Package repository defines the credential store: data access for users,
// roles and user-owned resources over MySQL or PostgreSQL, plus Redis and
// in-memory variants. The sentinel errors below let the service layer tell
// failure scenarios apart without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when a lookup or delete matches no row.
var ErrNotFound = errors.New("not found")

// ErrEmailExists and ErrUsernameExists report which uniqueness constraint on
// users rejected an insert.
var (
	ErrEmailExists    = errors.New("email already exists")
	ErrUsernameExists = errors.New("username already exists")
)

// ErrAlreadyExists is returned by CreateIfAbsent when the user already owns a
// row of the singleton resource.
var ErrAlreadyExists = errors.New("resource already exists")

// ErrConflict signals a uniqueness violation that has no more specific
// sentinel, such as a duplicate friendship pair.
var ErrConflict = errors.New("conflict")

// ErrRoleNotFound is returned when a user is created with a role name that
// is not present in the roles table.
var ErrRoleNotFound = errors.New("role not found")
