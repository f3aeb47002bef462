package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bookxchange/marketplace/internal/core/ports"
)

// CommentHandler handles HTTP requests for comments on listings.
type CommentHandler struct {
	service ports.CommentService
}

func NewCommentHandler(service ports.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// ListForBook handles GET /comments/book/:bookId.
//
// @Summary      List comments on a book, oldest first
// @Tags         comments
// @Produce      json
// @Param        bookId  path      int  true  "Book ID"
// @Success      200     {array}   commentResponse
// @Failure      404     {object}  errorResponse
// @Router       /comments/book/{bookId} [get]
func (h *CommentHandler) ListForBook(c echo.Context) error {
	bookID, err := pathID(c, "bookId")
	if err != nil {
		return err
	}
	views, err := h.service.ListForBook(c.Request().Context(), currentPrincipal(c), bookID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCommentResponses(views))
}

// Create handles POST /comments/book/:bookId.
//
// @Summary      Comment on an available book
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        bookId  path      int             true  "Book ID"
// @Param        body    body      commentRequest  true  "Comment"
// @Success      201     {object}  commentResponse
// @Failure      400     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /comments/book/{bookId} [post]
func (h *CommentHandler) Create(c echo.Context) error {
	bookID, err := pathID(c, "bookId")
	if err != nil {
		return err
	}
	var req commentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	view, err := h.service.Create(c.Request().Context(), currentPrincipal(c), bookID, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toCommentResponse(*view))
}

// Mine handles GET /comments/me.
//
// @Summary      List the caller's comments, newest first
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   commentResponse
// @Failure      401  {object}  errorResponse
// @Router       /comments/me [get]
func (h *CommentHandler) Mine(c echo.Context) error {
	views, err := h.service.ListMine(c.Request().Context(), currentPrincipal(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCommentResponses(views))
}

// Update handles PUT /comments/:id.
//
// @Summary      Edit a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int             true  "Comment ID"
// @Param        body  body      commentRequest  true  "Comment"
// @Success      200   {object}  commentResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /comments/{id} [put]
func (h *CommentHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req commentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	view, err := h.service.Update(c.Request().Context(), currentPrincipal(c), id, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCommentResponse(*view))
}

// Delete handles DELETE /comments/:id.
//
// @Summary      Delete a comment
// @Tags         comments
// @Security     BearerAuth
// @Param        id   path  int  true  "Comment ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /comments/{id} [delete]
func (h *CommentHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), currentPrincipal(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
