package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/social-auth/internal/logging"
)

// RequestLogger writes one access log line per request. Headers and bodies
// are never logged, so tokens and passwords stay out of the logs.
func RequestLogger(log logging.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"path", v.URIPath,
				"status", v.Status,
				"latency", v.Latency.String(),
				"request_id", v.RequestID,
				"remote_ip", v.RemoteIP,
			}
			if uid := UserID(c); uid != "" {
				args = append(args, "user_id", uid, "role", Role(c))
			}
			ctx := c.Request().Context()
			switch levelFor(v.Status) {
			case slog.LevelError:
				if v.Error != nil {
					args = append(args, "error", v.Error.Error())
				}
				log.Error(ctx, "request", args...)
			case slog.LevelWarn:
				log.Warn(ctx, "request", args...)
			default:
				log.Info(ctx, "request", args...)
			}
			return nil
		},
	})
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	}
	return slog.LevelInfo
}
