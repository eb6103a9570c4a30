package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tokobaju/storefront/internal/core/domain"
	"github.com/tokobaju/storefront/internal/core/ports"
)

type ProductHandler struct {
	productService ports.ProductService
}

func NewProductHandler(productService ports.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// productRequest is shared by create and update. Image is a reference to an
// already uploaded file; on update an empty image keeps the stored one.
type productRequest struct {
	Name     string  `json:"name"     validate:"required"`
	Brand    string  `json:"brand"    validate:"required"`
	Price    float64 `json:"price"    validate:"gte=0"`
	Color    string  `json:"color"    validate:"required"`
	Category string  `json:"category" validate:"omitempty,oneof=Baju Celana Aksesoris Jaket"`
	Image    string  `json:"image"`
}

func (r productRequest) input() ports.ProductInput {
	return ports.ProductInput{
		Name:     r.Name,
		Brand:    r.Brand,
		Price:    r.Price,
		Color:    r.Color,
		Category: r.Category,
		Image:    r.Image,
	}
}

type productListResponse struct {
	Products []*domain.Product `json:"products"`
	Total    int               `json:"total"`
}

// List returns the catalog, optionally filtered by category.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        category  query     string  false  "Category filter"  Enums(Baju, Celana, Aksesoris, Jaket)
// @Success      200       {object}  productListResponse
// @Failure      400       {object}  map[string]string
// @Router       /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.productService.List(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return err
	}
	if products == nil {
		products = []*domain.Product{}
	}
	return c.JSON(http.StatusOK, productListResponse{Products: products, Total: len(products)})
}

// Get returns one product.
//
// @Summary      Get product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  domain.Product
// @Failure      404  {object}  map[string]string
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	p, err := h.productService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Create adds a product to the catalog.
//
// @Summary      Create product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body      productRequest  true  "Product"
// @Success      201   {object}  domain.Product
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	req, err := bindProduct(c)
	if err != nil {
		return err
	}
	p, err := h.productService.Create(c.Request().Context(), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// Update replaces a product's fields.
//
// @Summary      Update product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Product ID"
// @Param        body  body      productRequest  true  "Product"
// @Success      200   {object}  domain.Product
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	req, err := bindProduct(c)
	if err != nil {
		return err
	}
	p, err := h.productService.Update(c.Request().Context(), c.Param("id"), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Delete removes a product.
//
// @Summary      Delete product
// @Tags         products
// @Param        id   path  string  true  "Product ID"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	if err := h.productService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func bindProduct(c echo.Context) (productRequest, error) {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return req, err
	}
	return req, nil
}
