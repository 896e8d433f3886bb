package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusshelf/library-system/internal/core/ports"
)

type FineHandler struct {
	service ports.FineService
}

func NewFineHandler(service ports.FineService) *FineHandler {
	return &FineHandler{service: service}
}

// Summary handles GET /v1/fines.
//
// @Summary      Show what the caller owes
// @Tags         fines
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  fineSummaryResponse
// @Router       /v1/fines [get]
func (h *FineHandler) Summary(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	s, err := h.service.FineSummary(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fineSummaryResponse{
		Accruing: s.Accruing,
		Payable:  s.Payable,
		Total:    s.Total,
		Loans:    s.Loans,
	})
}

// Pay handles POST /v1/fines/pay.
//
// @Summary      Settle every payable fine
// @Description  Only fines fixed on returned loans can be paid.
// @Tags         fines
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      payFinesRequest  false  "Payment reference"
// @Success      201   {object}  domain.Payment
// @Failure      422   {object}  errorResponse  "nothing to pay"
// @Router       /v1/fines/pay [post]
func (h *FineHandler) Pay(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req payFinesRequest
	if c.Request().ContentLength != 0 {
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
	}
	p, err := h.service.PayFines(c.Request().Context(), actor, req.Reference)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}
