package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/social-auth/internal/middleware"
	"github.com/iliyamo/social-auth/internal/service"
)

// AuthHandler serves registration, login, the caller's profile, the admin
// user listing and the interests resource.
type AuthHandler struct {
	Auth      *service.AuthService
	Interests *service.InterestsService
}

func NewAuthHandler(a *service.AuthService, i *service.InterestsService) *AuthHandler {
	return &AuthHandler{Auth: a, Interests: i}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type interestsReq struct {
	Interests json.RawMessage `json:"interests"`
}

// Register: create user and return a session token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bind(c, &req); err != nil {
		return err
	}
	sess, err := h.Auth.Register(c.Request().Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully.",
		"user":    sess.User,
		"token":   sess.Token.Value,
	})
}

// Login: verify credentials and return a token only.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return err
	}
	tok, err := h.Auth.Login(c.Request().Context(), service.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged in successfully.", "token": tok.Value})
}

// Profile returns the authenticated user.
func (h *AuthHandler) Profile(c echo.Context) error {
	u, err := h.Auth.Profile(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

// ListUsers is admin only; the role gate runs in the router.
func (h *AuthHandler) ListUsers(c echo.Context) error {
	users, err := h.Auth.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// SetInterests replaces the caller's interests, creating them on first use.
func (h *AuthHandler) SetInterests(c echo.Context) error {
	var req interestsReq
	if err := bind(c, &req); err != nil {
		return err
	}
	values, err := service.ParseValues(req.Interests, service.MsgInterestsNotArray)
	if err != nil {
		return err
	}
	stored, err := h.Interests.Set(c.Request().Context(), middleware.UserID(c), values)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Interests saved successfully.", "interests": stored})
}

func (h *AuthHandler) GetInterests(c echo.Context) error {
	values, err := h.Interests.Get(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"interests": values})
}
