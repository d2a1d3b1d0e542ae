// Package router assembles the echo instance: global middleware, the error
// handler and the route table of each service.
package router

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/social-auth/internal/handler"
	"github.com/iliyamo/social-auth/internal/logging"
	"github.com/iliyamo/social-auth/internal/middleware"
	"github.com/iliyamo/social-auth/internal/model"
)

// Options configures the global middleware stack.
type Options struct {
	AllowOrigins   []string
	RequestTimeout time.Duration
	BodyLimit      string
}

// New returns an echo instance with recovery, request ids, CORS, a body
// limit, a per-request deadline and structured access logs installed.
func New(log logging.Logger, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(log)

	if opts.BodyLimit == "" {
		opts.BodyLimit = "1M"
	}
	if len(opts.AllowOrigins) == 0 {
		opts.AllowOrigins = []string{"*"}
	}

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: opts.AllowOrigins}))
	e.Use(echomw.BodyLimit(opts.BodyLimit))
	if opts.RequestTimeout > 0 {
		e.Use(echomw.ContextTimeout(opts.RequestTimeout))
	}
	return e
}

// RegisterRoutes registers the unauthenticated probes. /readyz pings the
// store behind ready.
func RegisterRoutes(e *echo.Echo, ready handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(ready))
}

// RegisterAuth mounts the auth service: registration and login are public,
// everything else needs a valid bearer token and /users also the admin role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, v middleware.TokenVerifier) {
	e.POST("/register", a.Register)
	e.POST("/login", a.Login)

	jwt := middleware.JWTAuth(v)
	e.GET("/profile", a.Profile, jwt)
	e.GET("/users", a.ListUsers, jwt, middleware.RequireRole(model.RoleAdmin))

	g := e.Group("/user", jwt)
	g.GET("/interests", a.GetInterests)
	g.POST("/interests", a.SetInterests)
}

// Social groups the handlers of the social profile service.
type Social struct {
	Preferences *handler.PreferencesHandler
	Profiles    *handler.ProfileHandler
	Friendships *handler.FriendshipHandler
	Communities *handler.CommunityHandler
}

// RegisterSocial mounts the social profile service. Every response uses the
// {success, message, data} envelope; only the preference catalogue is
// public.
func RegisterSocial(e *echo.Echo, s Social, v middleware.TokenVerifier) {
	env := handler.Envelope()
	jwt := middleware.JWTAuth(v)

	e.GET("/preferences/available", s.Preferences.Available, env)

	p := e.Group("/preferences", env, jwt)
	p.GET("", s.Preferences.Get)
	p.POST("", s.Preferences.Create)
	p.PUT("", s.Preferences.Update)
	p.DELETE("", s.Preferences.Delete)

	pr := e.Group("/profile/complete", env, jwt)
	pr.GET("", s.Profiles.Get)
	pr.PUT("", s.Profiles.Save)

	f := e.Group("/friendships", env, jwt)
	f.POST("", s.Friendships.Request)
	f.GET("", s.Friendships.List)
	f.PUT("/:id", s.Friendships.Respond)
	f.DELETE("/:id", s.Friendships.Remove)

	c := e.Group("/communities", env, jwt)
	c.POST("", s.Communities.Create)
	c.GET("", s.Communities.List)
	c.GET("/:id", s.Communities.Get)
}
