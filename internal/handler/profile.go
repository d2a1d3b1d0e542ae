package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/social-auth/internal/middleware"
	"github.com/iliyamo/social-auth/internal/service"
)

type ProfileHandler struct {
	Profiles *service.ProfileService
}

func NewProfileHandler(p *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{Profiles: p}
}

type profileReq struct {
	FullName       *string  `json:"full_name"`
	Age            *int     `json:"age"`
	ProfilePicture *string  `json:"profile_picture"`
	Bio            *string  `json:"bio"`
	Hobbies        []string `json:"hobbies"`
	Location       *string  `json:"location"`
	Website        *string  `json:"website"`
	Phone          *string  `json:"phone"`
}

func (h *ProfileHandler) Get(c echo.Context) error {
	p, err := h.Profiles.Get(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Profile retrieved successfully.", p)
}

// Save replaces the caller's complete profile. Fields left out of the body
// are cleared.
func (h *ProfileHandler) Save(c echo.Context) error {
	var req profileReq
	if err := bind(c, &req); err != nil {
		return err
	}
	p, created, err := h.Profiles.Save(c.Request().Context(), middleware.UserID(c), service.ProfileInput(req))
	if err != nil {
		return err
	}
	if created {
		return ok(c, http.StatusCreated, "Profile created successfully.", p)
	}
	return ok(c, http.StatusOK, "Profile updated successfully.", p)
}
