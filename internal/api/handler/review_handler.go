package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kompu/storefront/internal/core/ports"
)

// ReviewHandler records product ratings.
type ReviewHandler struct {
	service ports.ReviewService
}

func NewReviewHandler(service ports.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// Submit handles POST /products/:id/reviews.
//
// @Summary      Rate a product
// @Description  One review per user and product. The comment is optional.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int            true  "Product id"
// @Param        body  body      reviewRequest  true  "Rating 1..5 and comment"
// @Success      201   {object}  productDetailResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /products/{id}/reviews [post]
func (h *ReviewHandler) Submit(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req reviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.service.Submit(c.Request().Context(), id, req.Rating, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, productDetailResponse{
		productResponse: toProductResponse(*product),
		AverageRating:   product.AverageRating(),
	})
}
