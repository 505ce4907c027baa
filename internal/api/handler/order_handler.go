package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kompu/storefront/internal/core/ports"
)

const mimePDF = "application/pdf"

// OrderHandler serves the current user's order history.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// History handles GET /me/orders.
//
// @Summary      Order history, newest first
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   orderResponse
// @Failure      401  {object}  errorResponse
// @Router       /me/orders [get]
func (h *OrderHandler) History(c echo.Context) error {
	summaries, err := h.service.History(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]orderResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, toOrderSummaryResponse(s))
	}
	return c.JSON(http.StatusOK, out)
}

// Invoice handles GET /me/orders/:id/invoice.
//
// @Summary      Download an order invoice
// @Tags         orders
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  int  true  "Order id"
// @Success      200  {file}    binary
// @Failure      404  {object}  errorResponse
// @Router       /me/orders/{id}/invoice [get]
func (h *OrderHandler) Invoice(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	doc, err := h.service.Invoice(c.Request().Context(), id)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="factura-%d.pdf"`, id))
	return c.Blob(http.StatusOK, mimePDF, doc)
}
