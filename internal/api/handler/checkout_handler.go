package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kompu/storefront/internal/core/ports"
)

// CheckoutHandler drives payment of the current cart.
type CheckoutHandler struct {
	service ports.CheckoutService
}

func NewCheckoutHandler(service ports.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// Begin handles POST /checkout.
//
// @Summary      Start paying the cart
// @Description  Creates a provider order for the cart total; the client approves it with the provider and then calls approve.
// @Tags         checkout
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  checkoutResponse
// @Failure      422  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /checkout [post]
func (h *CheckoutHandler) Begin(c echo.Context) error {
	co, err := h.service.Begin(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toCheckoutResponse(co, nil))
}

// Approve handles POST /checkout/:id/approve.
//
// @Summary      Capture an approved payment and record the order
// @Description  Repeating the call for a recorded checkout returns the same order.
// @Tags         checkout
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Provider order id"
// @Success      200  {object}  checkoutResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /checkout/{id}/approve [post]
func (h *CheckoutHandler) Approve(c echo.Context) error {
	co, order, err := h.service.Approve(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCheckoutResponse(co, order))
}

// Fail handles POST /checkout/:id/fail.
//
// @Summary      Abandon a checkout
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true   "Provider order id"
// @Param        body  body      failCheckoutRequest  false  "Reason reported by the client"
// @Success      200   {object}  checkoutResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /checkout/{id}/fail [post]
func (h *CheckoutHandler) Fail(c echo.Context) error {
	var req failCheckoutRequest
	if c.Request().ContentLength != 0 {
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
	}
	if req.Reason == "" {
		req.Reason = "cancelado por el usuario"
	}

	co, err := h.service.Fail(c.Request().Context(), c.Param("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCheckoutResponse(co, nil))
}
