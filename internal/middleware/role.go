package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/social-auth/internal/apperr"
)

// RequireRole returns a middleware that lets the request through only when
// the identity stored by JWTAuth has one of roles. It must run after JWTAuth;
// a request without an identity is treated as unauthenticated (401), one with
// a role outside the set is refused with 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := Identity(c)
			if !ok {
				return apperr.Unauthorized(MsgNoToken)
			}
			if !allowed[id.Role] {
				return apperr.Forbidden(MsgForbidden)
			}
			return next(c)
		}
	}
}
