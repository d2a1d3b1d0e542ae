package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/social-auth/internal/middleware"
	"github.com/iliyamo/social-auth/internal/service"
)

type CommunityHandler struct {
	Communities *service.CommunityService
}

func NewCommunityHandler(s *service.CommunityService) *CommunityHandler {
	return &CommunityHandler{Communities: s}
}

type communityReq struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	ImageURL    *string  `json:"community_image_url"`
}

func (h *CommunityHandler) Create(c echo.Context) error {
	var req communityReq
	if err := bind(c, &req); err != nil {
		return err
	}
	com, err := h.Communities.Create(c.Request().Context(), middleware.UserID(c), service.CommunityInput(req))
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, "Community created successfully.", com)
}

// List returns active communities; ?category= narrows the result.
func (h *CommunityHandler) List(c echo.Context) error {
	out, err := h.Communities.List(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Communities retrieved successfully.", out)
}

func (h *CommunityHandler) Get(c echo.Context) error {
	com, err := h.Communities.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Community retrieved successfully.", com)
}
