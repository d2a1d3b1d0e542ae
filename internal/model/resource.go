package model

import "time"

// ResourceKind names a user-owned singleton resource. Each kind is stored in
// its own table with a unique user_id.
type ResourceKind string

const (
	ResourceInterests   ResourceKind = "interests"
	ResourcePreferences ResourceKind = "preferences"
)

// Resource is one row of a user-owned singleton resource: at most one per
// user, holding a whole collection of string values that is replaced
// wholesale on every write.
type Resource struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Values    []string  `json:"values"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PreferenceOption describes one member of the fixed preference catalogue.
type PreferenceOption struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PreferenceCatalog is the closed set of allowed preference values. Community
// categories draw from the same set.
var PreferenceCatalog = []PreferenceOption{
	{Key: "Deportes", Name: "Deportes", Description: "Sports and physical activities"},
	{Key: "Arte", Name: "Arte", Description: "Painting, sculpture, visual arts"},
	{Key: "Musica", Name: "Música", Description: "Instruments, music genres, concerts"},
	{Key: "Lectura", Name: "Lectura", Description: "Books, literature, writing"},
	{Key: "Tecnologia", Name: "Tecnología", Description: "Programming, gadgets, innovation"},
	{Key: "Naturaleza", Name: "Naturaleza", Description: "Hiking, ecology, outdoor life"},
	{Key: "Voluntariado", Name: "Voluntariado", Description: "Social work, charitable causes"},
	{Key: "Gaming", Name: "Gaming", Description: "Video games, esports, streaming"},
	{Key: "Fotografia", Name: "Fotografía", Description: "Photography, editing, visual art"},
	{Key: "Cocina", Name: "Cocina", Description: "Recipes, gastronomy, baking"},
	{Key: "Baile", Name: "Baile", Description: "Dance, choreography, rhythm"},
	{Key: "Meditacion", Name: "Meditación", Description: "Mindfulness, yoga, mental wellbeing"},
}

// PreferenceKeys returns the catalogue keys in display order.
func PreferenceKeys() []string {
	keys := make([]string, len(PreferenceCatalog))
	for i, p := range PreferenceCatalog {
		keys[i] = p.Key
	}
	return keys
}

// IsPreference reports whether v is a member of the catalogue.
func IsPreference(v string) bool {
	for _, p := range PreferenceCatalog {
		if p.Key == v {
			return true
		}
	}
	return false
}
