package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/social-auth/internal/middleware"
	"github.com/iliyamo/social-auth/internal/model"
	"github.com/iliyamo/social-auth/internal/service"
)

type PreferencesHandler struct {
	Prefs *service.PreferencesService
}

func NewPreferencesHandler(p *service.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{Prefs: p}
}

type preferencesReq struct {
	Preferences json.RawMessage `json:"preferences"`
}

// preferencesView is the stored row as clients see it. Timestamps are
// omitted for users who have not saved preferences yet.
type preferencesView struct {
	ID          string     `json:"id,omitempty"`
	UserID      string     `json:"user_id"`
	Preferences []string   `json:"preferences"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func newPreferencesView(r model.Resource) preferencesView {
	v := preferencesView{ID: r.ID, UserID: r.UserID, Preferences: r.Values}
	if v.Preferences == nil {
		v.Preferences = []string{}
	}
	if r.ID != "" {
		v.CreatedAt, v.UpdatedAt = &r.CreatedAt, &r.UpdatedAt
	}
	return v
}

func ok(c echo.Context, status int, msg string, data any) error {
	body := echo.Map{"success": true, "message": msg}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(status, body)
}

func (h *PreferencesHandler) parse(c echo.Context) ([]string, error) {
	var req preferencesReq
	if err := bind(c, &req); err != nil {
		return nil, err
	}
	return service.ParseValues(req.Preferences, service.MsgPreferencesNotArray)
}

func (h *PreferencesHandler) Get(c echo.Context) error {
	res, err := h.Prefs.Get(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Preferences retrieved successfully.", newPreferencesView(res))
}

// Create stores the caller's first preferences; 409 if they already exist.
func (h *PreferencesHandler) Create(c echo.Context) error {
	values, err := h.parse(c)
	if err != nil {
		return err
	}
	res, err := h.Prefs.Create(c.Request().Context(), middleware.UserID(c), values)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, "Preferences created successfully.", newPreferencesView(res))
}

// Update upserts: 201 when the row was created, 200 otherwise.
func (h *PreferencesHandler) Update(c echo.Context) error {
	values, err := h.parse(c)
	if err != nil {
		return err
	}
	res, created, err := h.Prefs.Update(c.Request().Context(), middleware.UserID(c), values)
	if err != nil {
		return err
	}
	if created {
		return ok(c, http.StatusCreated, "Preferences created successfully.", newPreferencesView(res))
	}
	return ok(c, http.StatusOK, "Preferences updated successfully.", newPreferencesView(res))
}

func (h *PreferencesHandler) Delete(c echo.Context) error {
	if err := h.Prefs.Delete(c.Request().Context(), middleware.UserID(c)); err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Preferences deleted successfully.", nil)
}

// Available lists the catalogue. No authentication required.
func (h *PreferencesHandler) Available(c echo.Context) error {
	return ok(c, http.StatusOK, "Available preferences retrieved successfully.", model.PreferenceCatalog)
}
