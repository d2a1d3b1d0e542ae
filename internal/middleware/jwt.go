package middleware // reusable HTTP middleware: authentication, role gate and access logging

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/social-auth/internal/apperr"
	"github.com/iliyamo/social-auth/internal/auth"
)

// Messages returned by the authentication stages.
const (
	MsgNoToken      = "Access denied. No token provided."
	MsgInvalidToken = "Invalid or expired token."
	MsgForbidden    = "Access denied. Insufficient permissions."
)

// TokenVerifier checks a raw session token. *auth.Issuer implements it.
type TokenVerifier interface {
	Verify(raw string) (auth.Identity, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer session token
// and stores the verified identity in the request context. Downstream
// handlers read it with Identity, UserID or Role. Failures end the request
// with 401 before any later stage runs.
func JWTAuth(v TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return apperr.Unauthorized(MsgNoToken)
			}
			id, err := v.Verify(raw)
			if err != nil {
				if !errors.Is(err, auth.ErrTokenExpired) && !errors.Is(err, auth.ErrInvalidToken) {
					return err
				}
				return apperr.Unauthorized(MsgInvalidToken)
			}
			setIdentity(c, id)
			return next(c)
		}
	}
}

// bearerToken extracts the credential from an "Authorization: Bearer x"
// header. The scheme is matched case-insensitively.
func bearerToken(h string) (string, bool) {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}
