package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/social-auth/internal/apperr"
	"github.com/iliyamo/social-auth/internal/logging"
)

const envelopeKey = "envelope"

// Envelope marks every response of a route group as using the
// {success, message, ...} body shape.
func Envelope() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(envelopeKey, true)
			return next(c)
		}
	}
}

func enveloped(c echo.Context) bool {
	v, _ := c.Get(envelopeKey).(bool)
	return v
}

// ErrorHandler renders every error returned by handlers and middleware as
// JSON. *apperr.Error values are shown as-is and echo errors keep their
// status with a generic message. Anything else is logged and becomes a 500
// without detail, or a 503 when the request deadline expired.
func ErrorHandler(log logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		ae, status := render(err)
		if timedOut(c, err, status) {
			ae, status = apperr.Internal(MsgTimeout), http.StatusServiceUnavailable
		}
		if status >= http.StatusInternalServerError && !isAppErr(err) {
			log.Error(c.Request().Context(), "unhandled error", "path", c.Path(), "error", err)
		}

		body := make(map[string]any, len(ae.Fields)+2)
		for k, v := range ae.Fields {
			body[k] = v
		}
		body["message"] = ae.Message
		if enveloped(c) {
			body["success"] = false
		}
		if err := c.JSON(status, body); err != nil {
			log.Error(c.Request().Context(), "write error response", "error", err)
		}
	}
}

func isAppErr(err error) bool {
	var ae *apperr.Error
	return errors.As(err, &ae)
}

// MsgTimeout is sent when the request deadline passed before a handler
// could finish.
const MsgTimeout = "Request timed out."

// render maps err to a client-safe error and the status to send.
func render(err error) (*apperr.Error, int) {
	var he *echo.HTTPError
	if !isAppErr(err) && errors.As(err, &he) {
		switch {
		case he.Code == http.StatusNotFound:
			return apperr.NotFound("Route not found."), he.Code
		case he.Code >= 500:
			return apperr.Internal(http.StatusText(he.Code) + "."), he.Code
		case he.Code >= 400:
			return apperr.BadRequest(http.StatusText(he.Code) + "."), he.Code
		}
	}
	ae := apperr.As(err)
	return ae, ae.Kind.Status()
}

// timedOut reports whether a 500 is really the request deadline expiring.
// Services hide store errors behind apperr.Internal, so the request context
// is checked directly.
func timedOut(c echo.Context, err error, status int) bool {
	if status != http.StatusInternalServerError {
		return false
	}
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(c.Request().Context().Err(), context.DeadlineExceeded)
}

// bind decodes the request body into v, turning decoder errors into a
// client-safe BadRequest.
func bind(c echo.Context, v any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		return apperr.BadRequest("Invalid request body.")
	}
	return nil
}
