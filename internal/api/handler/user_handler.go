package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bookxchange/marketplace/internal/core/ports"
)

// UserHandler serves the caller's own profile.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Me handles GET /users/me.
//
// @Summary      Current user's profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Account
// @Failure      401  {object}  errorResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	acc, err := h.service.Me(c.Request().Context(), currentPrincipal(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acc)
}

// UpdateMe handles PUT /users/me.
//
// @Summary      Update the current user's profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Profile"
// @Success      200   {object}  domain.Account
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /users/me [put]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	acc, err := h.service.UpdateMe(c.Request().Context(), currentPrincipal(c), ports.ProfileInput{
		Username:          req.Username,
		CountryCode:       req.CountryCode,
		ProfilePictureURL: req.ProfilePictureURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acc)
}
