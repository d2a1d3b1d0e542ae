package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/social-auth/internal/middleware"
	"github.com/iliyamo/social-auth/internal/model"
	"github.com/iliyamo/social-auth/internal/service"
)

type FriendshipHandler struct {
	Friendships *service.FriendshipService
}

func NewFriendshipHandler(f *service.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{Friendships: f}
}

type friendRequestReq struct {
	AddresseeID string `json:"addressee_id"`
}

type friendStatusReq struct {
	Status string `json:"status"`
}

// Request sends a friend request from the caller to addressee_id.
func (h *FriendshipHandler) Request(c echo.Context) error {
	var req friendRequestReq
	if err := bind(c, &req); err != nil {
		return err
	}
	f, err := h.Friendships.Request(c.Request().Context(), middleware.UserID(c), req.AddresseeID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, "Friend request sent successfully.", f)
}

// Respond changes the status of friendship :id.
func (h *FriendshipHandler) Respond(c echo.Context) error {
	var req friendStatusReq
	if err := bind(c, &req); err != nil {
		return err
	}
	f, err := h.Friendships.Respond(c.Request().Context(), middleware.UserID(c), c.Param("id"), model.FriendshipStatus(req.Status))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Friendship updated successfully.", f)
}

// List returns the caller's friendships, optionally filtered by ?status=.
func (h *FriendshipHandler) List(c echo.Context) error {
	out, err := h.Friendships.List(c.Request().Context(), middleware.UserID(c), model.FriendshipStatus(c.QueryParam("status")))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Friendships retrieved successfully.", out)
}

func (h *FriendshipHandler) Remove(c echo.Context) error {
	if err := h.Friendships.Remove(c.Request().Context(), middleware.UserID(c), c.Param("id")); err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Friendship deleted successfully.", nil)
}
