package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kompu/storefront/internal/core/ports"
)

// CartHandler serves the current user's cart.
type CartHandler struct {
	service ports.CartService
}

func NewCartHandler(service ports.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// View handles GET /me/cart.
//
// @Summary      Cart contents and total
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  cartResponse
// @Failure      401  {object}  errorResponse
// @Router       /me/cart [get]
func (h *CartHandler) View(c echo.Context) error {
	view, err := h.service.View(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(view))
}

// Add handles POST /me/cart.
//
// @Summary      Add a product to the cart
// @Description  Adds one unit, or increases the quantity when the product is already in the cart.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      cartAddRequest  true  "Product id"
// @Success      200   {object}  cartAddResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /me/cart [post]
func (h *CartHandler) Add(c echo.Context) error {
	var req cartAddRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	outcome, err := h.service.Add(c.Request().Context(), req.ProductID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cartAddResponse{Outcome: string(outcome)})
}

// SetQuantity handles PUT /me/cart/:id.
//
// @Summary      Set a cart line quantity
// @Description  Values below 1 or not numeric are replaced by 1.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                  true  "Product id"
// @Param        body  body      cartQuantityRequest  true  "New quantity"
// @Success      200   {object}  cartResponse
// @Failure      404   {object}  errorResponse
// @Router       /me/cart/{id} [put]
func (h *CartHandler) SetQuantity(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req cartQuantityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	raw := strings.Trim(strings.TrimSpace(string(req.Quantity)), `"`)
	view, err := h.service.SetQuantity(c.Request().Context(), id, raw)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(view))
}

// Remove handles DELETE /me/cart/:id.
//
// @Summary      Remove a product from the cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Product id"
// @Success      200  {object}  cartResponse
// @Failure      404  {object}  errorResponse
// @Router       /me/cart/{id} [delete]
func (h *CartHandler) Remove(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	view, err := h.service.Remove(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(view))
}
