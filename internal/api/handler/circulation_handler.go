package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusshelf/library-system/internal/core/domain"
	"github.com/campusshelf/library-system/internal/core/ports"
)

// CirculationHandler handles borrow requests and loans.
type CirculationHandler struct {
	service ports.CirculationService
}

func NewCirculationHandler(service ports.CirculationService) *CirculationHandler {
	return &CirculationHandler{service: service}
}

// CreateRequest handles POST /v1/borrow-requests.
//
// @Summary      Request to borrow a book
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createBorrowRequestRequest  true  "Book to borrow"
// @Success      201   {object}  domain.BorrowRequest
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse  "pending request already exists"
// @Failure      422   {object}  errorResponse  "no copies available"
// @Router       /v1/borrow-requests [post]
func (h *CirculationHandler) CreateRequest(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req createBorrowRequestRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	br, err := h.service.CreateBorrowRequest(c.Request().Context(), actor, req.BookID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, br)
}

// ListRequests handles GET /v1/borrow-requests.
//
// @Summary      List borrow requests
// @Description  Reviewers see every request; borrowers see their own.
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "pending, approved or rejected"
// @Success      200     {array}   domain.BorrowRequest
// @Failure      400     {object}  errorResponse
// @Router       /v1/borrow-requests [get]
func (h *CirculationHandler) ListRequests(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	filter := ports.RequestFilter{}
	if s := c.QueryParam("status"); s != "" {
		status := domain.RequestStatus(s)
		if !status.Valid() {
			return domain.Invalid("unknown request status %q", s)
		}
		filter.Status = status
	}

	requests, err := h.service.ListBorrowRequests(c.Request().Context(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, requests)
}

// ReviewRequest handles POST /v1/borrow-requests/:id/review.
//
// @Summary      Approve or reject a borrow request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Request ID"
// @Param        body  body      reviewRequest  true  "Decision"
// @Success      200   {object}  domain.BorrowRequest
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse  "request already reviewed"
// @Router       /v1/borrow-requests/{id}/review [post]
func (h *CirculationHandler) ReviewRequest(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req reviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	decision, err := domain.ParseDecision(req.Decision)
	if err != nil {
		return err
	}

	br, err := h.service.ReviewBorrowRequest(c.Request().Context(), actor, ports.ReviewInput{
		RequestID: c.Param("id"),
		Decision:  decision,
		Note:      req.Note,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, br)
}

// ListActiveLoans handles GET /v1/loans.
//
// @Summary      List every open loan
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Loan
// @Failure      403  {object}  errorResponse
// @Router       /v1/loans [get]
func (h *CirculationHandler) ListActiveLoans(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	loans, err := h.service.ListActiveLoans(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loans)
}

// ListMyLoans handles GET /v1/loans/mine.
//
// @Summary      List the caller's loans
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Loan
// @Router       /v1/loans/mine [get]
func (h *CirculationHandler) ListMyLoans(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	loans, err := h.service.ListUserLoans(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loans)
}

// ReturnLoan handles POST /v1/loans/:id/return.
//
// @Summary      Check a borrowed copy back in
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Loan ID"
// @Success      200  {object}  domain.Loan
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse  "already returned"
// @Router       /v1/loans/{id}/return [post]
func (h *CirculationHandler) ReturnLoan(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	loan, err := h.service.ReturnLoan(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loan)
}
