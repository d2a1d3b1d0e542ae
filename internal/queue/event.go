// Package queue defines the domain events exchanged over RabbitMQ, the
// publisher used by the services and the audit consumer.
package queue

// Queue names. Each event type has its own durable queue on the default
// exchange.
const (
	UserRegisteredQueue     = "user.registered"
	PreferencesChangedQueue = "preferences.changed"
)

// UserRegisteredEvent is published after a successful registration. It never
// carries the password or its hash.
type UserRegisteredEvent struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	RegisteredAt string `json:"registered_at"`
}

// Preference change actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// PreferencesChangedEvent is published whenever a user's preferences are
// written or removed.
type PreferencesChangedEvent struct {
	UserID      string   `json:"user_id"`
	Action      string   `json:"action"`
	Preferences []string `json:"preferences"`
	ChangedAt   string   `json:"changed_at"`
}
