package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusshelf/library-system/internal/core/ports"
)

// CatalogHandler handles books and genres.
type CatalogHandler struct {
	service ports.CatalogService
}

func NewCatalogHandler(service ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// ListBooks handles GET /v1/books.
//
// @Summary      Search the catalog
// @Description  Title and author match by case-insensitive substring, genre by case-insensitive equality.
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        q       query     string  false  "Title contains"
// @Param        author  query     string  false  "Author contains"
// @Param        genre   query     string  false  "Genre name"
// @Success      200     {array}   domain.Book
// @Failure      401     {object}  errorResponse
// @Router       /v1/books [get]
func (h *CatalogHandler) ListBooks(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	books, err := h.service.ListBooks(c.Request().Context(), actor, ports.BookFilter{
		Query:  c.QueryParam("q"),
		Author: c.QueryParam("author"),
		Genre:  c.QueryParam("genre"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, books)
}

// AddBook handles POST /v1/books.
//
// @Summary      Add a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addBookRequest  true  "Book details"
// @Success      201   {object}  domain.Book
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse  "duplicate isbn"
// @Router       /v1/books [post]
func (h *CatalogHandler) AddBook(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req addBookRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	book, err := h.service.AddBook(c.Request().Context(), actor, ports.AddBookInput{
		Title:    req.Title,
		Author:   req.Author,
		Genre:    req.Genre,
		ISBN:     req.ISBN,
		Quantity: req.Quantity,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, book)
}

// ResizeQuantity handles PATCH /v1/books/:id/quantity.
//
// @Summary      Change the number of owned copies
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Book ID"
// @Param        body  body      resizeBookRequest  true  "New total"
// @Success      200   {object}  domain.Book
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/books/{id}/quantity [patch]
func (h *CatalogHandler) ResizeQuantity(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req resizeBookRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	book, err := h.service.ResizeBookQuantity(c.Request().Context(), actor, c.Param("id"), *req.TotalQuantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, book)
}

// ListGenres handles GET /v1/genres.
//
// @Summary      List genres
// @Tags         genres
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Genre
// @Router       /v1/genres [get]
func (h *CatalogHandler) ListGenres(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	genres, err := h.service.ListGenres(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, genres)
}

// AddGenre handles POST /v1/genres.
//
// @Summary      Add a genre
// @Tags         genres
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      genreRequest  true  "Genre"
// @Success      201   {object}  domain.Genre
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/genres [post]
func (h *CatalogHandler) AddGenre(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req genreRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	genre, err := h.service.AddGenre(c.Request().Context(), actor, ports.GenreInput{Name: req.Name, Description: req.Description})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, genre)
}

// UpdateGenre handles PUT /v1/genres/:id.
//
// @Summary      Update a genre
// @Tags         genres
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true  "Genre ID"
// @Param        body  body      genreRequest  true  "Genre"
// @Success      200   {object}  domain.Genre
// @Failure      404   {object}  errorResponse
// @Router       /v1/genres/{id} [put]
func (h *CatalogHandler) UpdateGenre(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req genreRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	genre, err := h.service.UpdateGenre(c.Request().Context(), actor, c.Param("id"), ports.GenreInput{Name: req.Name, Description: req.Description})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, genre)
}

// DeleteGenre handles DELETE /v1/genres/:id.
//
// @Summary      Delete a genre
// @Tags         genres
// @Security     BearerAuth
// @Param        id   path  string  true  "Genre ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/genres/{id} [delete]
func (h *CatalogHandler) DeleteGenre(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteGenre(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
