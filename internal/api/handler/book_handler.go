package handler

import (
	"fmt"
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bookxchange/marketplace/internal/api/metrics"
	"github.com/bookxchange/marketplace/internal/core/domain"
	"github.com/bookxchange/marketplace/internal/core/ports"
)

// BookHandler handles HTTP requests for book listings.
type BookHandler struct {
	service        ports.BookService
	maxUploadBytes int64
}

func NewBookHandler(service ports.BookService, maxUploadBytes int64) *BookHandler {
	return &BookHandler{service: service, maxUploadBytes: maxUploadBytes}
}

// List handles GET /books.
//
// @Summary      Browse available books
// @Tags         books
// @Produce      json
// @Param        condition     query     string  false  "NEW, GOOD or USED"
// @Param        exchangeType  query     string  false  "EXCHANGE_ONLY, GIVEAWAY or EXCHANGE_OR_GIVEAWAY"
// @Param        language      query     string  false  "Exact language, case-insensitive"
// @Param        search        query     string  false  "Substring of title or author"
// @Param        page          query     int     false  "Page number, starting at 1"
// @Param        limit         query     int     false  "Page size (max 100)"
// @Success      200           {object}  bookPageResponse
// @Failure      400           {object}  errorResponse
// @Router       /books [get]
func (h *BookHandler) List(c echo.Context) error {
	var q listBooksQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}
	page, err := h.service.ListPublic(c.Request().Context(), toListBooksInput(q))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookPageResponse(page))
}

// Get handles GET /books/:id.
//
// @Summary      Get a book listing
// @Tags         books
// @Produce      json
// @Param        id   path      int  true  "Book ID"
// @Success      200  {object}  bookResponse
// @Failure      404  {object}  errorResponse
// @Router       /books/{id} [get]
func (h *BookHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	view, err := h.service.Get(c.Request().Context(), currentPrincipal(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookResponse(*view))
}

// Mine handles GET /books/me.
//
// @Summary      List the caller's books
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   bookResponse
// @Failure      401  {object}  errorResponse
// @Router       /books/me [get]
func (h *BookHandler) Mine(c echo.Context) error {
	views, err := h.service.ListMine(c.Request().Context(), currentPrincipal(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookResponses(views))
}

// Create handles POST /books.
//
// @Summary      Create a book listing
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createBookRequest  true  "Listing"
// @Success      201   {object}  bookResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /books [post]
func (h *BookHandler) Create(c echo.Context) error {
	var req createBookRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	view, err := h.service.Create(c.Request().Context(), currentPrincipal(c), toBookInput(req))
	if err != nil {
		return err
	}
	metrics.BooksCreatedTotal.WithLabelValues(string(view.Book.ExchangeType)).Inc()
	return c.JSON(http.StatusCreated, toBookResponse(*view))
}

// Update handles PUT /books/:id.
//
// @Summary      Update a book listing
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Book ID"
// @Param        body  body      updateBookRequest  true  "Listing"
// @Success      200   {object}  bookResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /books/{id} [put]
func (h *BookHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateBookRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	view, err := h.service.Update(c.Request().Context(), currentPrincipal(c), id, toBookUpdateInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookResponse(*view))
}

// Delete handles DELETE /books/:id.
//
// @Summary      Delete a book listing and its comments
// @Tags         books
// @Security     BearerAuth
// @Param        id   path  int  true  "Book ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /books/{id} [delete]
func (h *BookHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), currentPrincipal(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadImage handles POST /books/:id/image.
//
// @Summary      Upload a cover image
// @Tags         books
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int   true  "Book ID"
// @Param        file  formData  file  true  "JPEG, PNG or WEBP image"
// @Success      200   {object}  bookResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      413   {object}  errorResponse
// @Router       /books/{id}/image [post]
func (h *BookHandler) UploadImage(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return domain.NewValidationError("file: an image file is required")
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Image exceeds the maximum size of %d bytes", h.maxUploadBytes))
	}

	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	contentType, _, _ := mime.ParseMediaType(fh.Header.Get(echo.HeaderContentType))
	view, err := h.service.AttachImage(c.Request().Context(), currentPrincipal(c), id, ports.ImageUpload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookResponse(*view))
}

// DeleteImage handles DELETE /books/:id/image.
//
// @Summary      Remove the cover image
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Book ID"
// @Success      200  {object}  bookResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /books/{id}/image [delete]
func (h *BookHandler) DeleteImage(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	view, err := h.service.RemoveImage(c.Request().Context(), currentPrincipal(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookResponse(*view))
}
