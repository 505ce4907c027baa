package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kompu/storefront/internal/core/catalog"
	"github.com/kompu/storefront/internal/core/ports"
)

const defaultLatest = 4

// CatalogHandler serves the public product listing.
type CatalogHandler struct {
	service ports.CatalogService
}

func NewCatalogHandler(service ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// Search handles GET /products.
//
// @Summary      Search the catalog
// @Tags         catalog
// @Produce      json
// @Param        categoria  query     string  false  "Category"
// @Param        marca      query     string  false  "Brand"
// @Param        precioMin  query     number  false  "Minimum price"
// @Param        precioMax  query     number  false  "Maximum price, 0 for no limit"
// @Param        q          query     string  false  "Text search on name and brand"
// @Param        orden      query     string  false  "price-desc, price-asc or name-asc"
// @Success      200        {array}   productResponse
// @Router       /products [get]
func (h *CatalogHandler) Search(c echo.Context) error {
	criteria := catalog.Criteria{
		Category: c.QueryParam("categoria"),
		Brand:    c.QueryParam("marca"),
		PriceMin: queryFloat(c, "precioMin"),
		PriceMax: queryFloat(c, "precioMax"),
		Search:   c.QueryParam("q"),
	}

	products, err := h.service.Search(c.Request().Context(), criteria, catalog.ParseSortKey(c.QueryParam("orden")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponses(products))
}

// Facets handles GET /products/facets.
//
// @Summary      Filterable categories, brands and price ceiling
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  catalog.Facets
// @Router       /products/facets [get]
func (h *CatalogHandler) Facets(c echo.Context) error {
	facets, err := h.service.Facets(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, facets)
}

// Latest handles GET /products/latest.
//
// @Summary      Newest products
// @Tags         catalog
// @Produce      json
// @Param        n    query     int  false  "Number of products (default 4)"
// @Success      200  {array}   productResponse
// @Router       /products/latest [get]
func (h *CatalogHandler) Latest(c echo.Context) error {
	n := defaultLatest
	if v, err := strconv.Atoi(c.QueryParam("n")); err == nil && v >= 0 {
		n = v
	}

	products, err := h.service.Latest(c.Request().Context(), n)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponses(products))
}

// Get handles GET /products/:id.
//
// @Summary      Product detail with average rating
// @Tags         catalog
// @Produce      json
// @Param        id   path      int  true  "Product id"
// @Success      200  {object}  productDetailResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /products/{id} [get]
func (h *CatalogHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	detail, err := h.service.Product(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, productDetailResponse{
		productResponse: toProductResponse(detail.Product),
		AverageRating:   detail.AverageRating,
	})
}

// queryFloat accepts both "12.5" and "12,5"; anything else is 0.
func queryFloat(c echo.Context, name string) float64 {
	v, err := strconv.ParseFloat(strings.Replace(c.QueryParam(name), ",", ".", 1), 64)
	if err != nil {
		return 0
	}
	return v
}
