package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/scrubline/scrubline-backend-go/repository"
	"github.com/scrubline/scrubline-backend-go/services"
)

func (h *Handler) GetProducts(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	products, err := h.svc.Catalog.List(ctx, repository.ProductFilter{
		Category:    c.QueryParam("category"),
		Subcategory: c.QueryParam("subcategory"),
		Status:      c.QueryParam("status"),
		Search:      c.QueryParam("search"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *Handler) GetProduct(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	product, err := h.svc.Catalog.Get(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *Handler) CreateProduct(c echo.Context) error {
	var in services.ProductInput
	if err := bind(c, &in); err != nil {
		return err
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	product, err := h.svc.Catalog.Create(ctx, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

func (h *Handler) UpdateProduct(c echo.Context) error {
	var in services.ProductUpdate
	if err := bind(c, &in); err != nil {
		return err
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	product, err := h.svc.Catalog.Update(ctx, c.Param("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *Handler) DeleteProduct(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.svc.Catalog.Delete(ctx, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}
