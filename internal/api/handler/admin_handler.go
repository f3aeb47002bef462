package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bookxchange/marketplace/internal/core/domain"
	"github.com/bookxchange/marketplace/internal/core/ports"
)

// AdminHandler exposes moderation endpoints. Every route is mounted behind
// the RequireAdmin guard; the services check the role again.
type AdminHandler struct {
	users    ports.UserService
	books    ports.BookService
	comments ports.CommentService
}

func NewAdminHandler(users ports.UserService, books ports.BookService, comments ports.CommentService) *AdminHandler {
	return &AdminHandler{users: users, books: books, comments: comments}
}

// ListUsers handles GET /admin/users.
//
// @Summary      List all accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Account
// @Failure      403  {object}  errorResponse
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	accounts, err := h.users.List(c.Request().Context(), currentPrincipal(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accounts)
}

// GetUser handles GET /admin/users/:id.
//
// @Summary      Get an account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Account ID"
// @Success      200  {object}  domain.Account
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id} [get]
func (h *AdminHandler) GetUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	acc, err := h.users.Get(c.Request().Context(), currentPrincipal(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acc)
}

// SetEnabled handles PATCH /admin/users/:id/enabled?enabled=true|false.
//
// @Summary      Enable or disable an account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int   true  "Account ID"
// @Param        enabled  query     bool  true  "New state"
// @Success      200      {object}  domain.Account
// @Failure      400      {object}  errorResponse
// @Router       /admin/users/{id}/enabled [patch]
func (h *AdminHandler) SetEnabled(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	enabled, err := strconv.ParseBool(c.QueryParam("enabled"))
	if err != nil {
		return domain.NewValidationError("enabled: must be true or false")
	}
	acc, err := h.users.SetEnabled(c.Request().Context(), currentPrincipal(c), id, enabled)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acc)
}

// ToggleEnabled handles PATCH /admin/users/:id/toggle-enabled.
//
// @Summary      Flip an account's enabled flag
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Account ID"
// @Success      200  {object}  domain.Account
// @Router       /admin/users/{id}/toggle-enabled [patch]
func (h *AdminHandler) ToggleEnabled(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	acc, err := h.users.ToggleEnabled(c.Request().Context(), currentPrincipal(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acc)
}

// SetRole handles PATCH /admin/users/:id/role.
//
// @Summary      Change an account's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int             true  "Account ID"
// @Param        body  body      setRoleRequest  true  "Role"
// @Success      200   {object}  domain.Account
// @Failure      400   {object}  errorResponse
// @Router       /admin/users/{id}/role [patch]
func (h *AdminHandler) SetRole(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req setRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	acc, err := h.users.SetRole(c.Request().Context(), currentPrincipal(c), id, domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acc)
}

// ListBooks handles GET /admin/books.
//
// @Summary      List every book in any status
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  bookResponse
// @Router       /admin/books [get]
func (h *AdminHandler) ListBooks(c echo.Context) error {
	views, err := h.books.ListAll(c.Request().Context(), currentPrincipal(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookResponses(views))
}

// ListComments handles GET /admin/comments.
//
// @Summary      List every comment, newest first
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  commentResponse
// @Router       /admin/comments [get]
func (h *AdminHandler) ListComments(c echo.Context) error {
	views, err := h.comments.ListAll(c.Request().Context(), currentPrincipal(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCommentResponses(views))
}
