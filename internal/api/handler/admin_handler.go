package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kompu/storefront/internal/core/domain"
	"github.com/kompu/storefront/internal/core/ports"
)

// AdminHandler serves catalog and account management. Routes are gated by
// the administrator role.
type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// Products handles GET /admin/products.
//
// @Summary      List every product
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   productResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/products [get]
func (h *AdminHandler) Products(c echo.Context) error {
	products, err := h.service.Products(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponses(products))
}

// CreateProduct handles POST /admin/products.
//
// @Summary      Create a product
// @Description  Missing fields take their defaults. An optional base64 image is uploaded first.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      productRequest  true  "Partial product"
// @Success      201   {object}  productResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /admin/products [post]
func (h *AdminHandler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.service.CreateProduct(c.Request().Context(), ports.NewProductInput{
		Product: domain.Product{
			Name:        req.Name,
			Brand:       req.Brand,
			Category:    req.Category,
			Price:       req.Price,
			Stock:       req.Stock,
			Images:      req.Images,
			Description: req.Description,
			ReleasedAt:  req.ReleasedAt,
		},
		ImageBase64: req.ImageBase64,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toProductResponse(*product))
}

// EditProduct handles PATCH /admin/products/:id.
//
// @Summary      Edit product fields
// @Description  Body keys use the stored field names (nombre, precio, stock...). Unknown keys are ignored and malformed numbers become 0.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                     true  "Product id"
// @Param        body  body      map[string]interface{}  true  "Field edits"
// @Success      200   {object}  productResponse
// @Failure      404   {object}  errorResponse
// @Router       /admin/products/{id} [patch]
func (h *AdminHandler) EditProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	edits := map[string]any{}
	if err := c.Bind(&edits); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	product, err := h.service.EditProduct(c.Request().Context(), id, edits)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponse(*product))
}

// DeleteProduct handles DELETE /admin/products/:id.
//
// @Summary      Delete a product
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  int  true  "Product id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /admin/products/{id} [delete]
func (h *AdminHandler) DeleteProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteProduct(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Users handles GET /admin/users.
//
// @Summary      List every account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/users [get]
func (h *AdminHandler) Users(c echo.Context) error {
	users, err := h.service.Users(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(users))
}

// ToggleUserState handles POST /admin/users/:id/toggle.
//
// @Summary      Enable or disable an account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id}/toggle [post]
func (h *AdminHandler) ToggleUserState(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.service.ToggleUserState(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(*user))
}
