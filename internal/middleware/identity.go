package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/social-auth/internal/auth"
)

// Context keys written by JWTAuth. "user_id" and "role" hold plain strings
// for handlers that only need one of them.
const (
	identityKey = "identity"
	userIDKey   = "user_id"
	roleKey     = "role"
)

func setIdentity(c echo.Context, id auth.Identity) {
	c.Set(identityKey, id)
	c.Set(userIDKey, id.UserID)
	c.Set(roleKey, id.Role)
}

// Identity returns the verified identity of the request, if any.
func Identity(c echo.Context) (auth.Identity, bool) {
	id, ok := c.Get(identityKey).(auth.Identity)
	return id, ok
}

// UserID returns the authenticated subject, or "" for anonymous requests.
func UserID(c echo.Context) string {
	v, _ := c.Get(userIDKey).(string)
	return v
}

func Role(c echo.Context) string {
	v, _ := c.Get(roleKey).(string)
	return v
}
