package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kompu/storefront/internal/core/ports"
)

// WishlistHandler serves the current user's wish-list.
type WishlistHandler struct {
	service ports.WishlistService
}

func NewWishlistHandler(service ports.WishlistService) *WishlistHandler {
	return &WishlistHandler{service: service}
}

// List handles GET /me/wishlist.
//
// @Summary      Wish-list products in insertion order
// @Tags         wishlist
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   productResponse
// @Failure      401  {object}  errorResponse
// @Router       /me/wishlist [get]
func (h *WishlistHandler) List(c echo.Context) error {
	products, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponses(products))
}

// Toggle handles POST /me/wishlist.
//
// @Summary      Add a product to the wish-list
// @Description  A product already in the list is left untouched.
// @Tags         wishlist
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      wishlistRequest  true  "Product id"
// @Success      200   {object}  wishlistToggleResponse
// @Failure      404   {object}  errorResponse
// @Router       /me/wishlist [post]
func (h *WishlistHandler) Toggle(c echo.Context) error {
	var req wishlistRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	outcome, err := h.service.Toggle(c.Request().Context(), req.ProductID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, wishlistToggleResponse{Outcome: string(outcome)})
}

// Remove handles DELETE /me/wishlist/:id.
//
// @Summary      Remove a product from the wish-list
// @Tags         wishlist
// @Security     BearerAuth
// @Param        id   path  int  true  "Product id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /me/wishlist/{id} [delete]
func (h *WishlistHandler) Remove(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.Remove(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
