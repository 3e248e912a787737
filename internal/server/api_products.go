package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	producthttpmapper "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/adapters/http/mapper"
	catalogports "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/ports"
	apierrors "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/shared/errors"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/shared/pagination"
)

// ProductAPI implements the product catalog routes.
type ProductAPI struct {
	service  catalogports.Service
	problems *apierrors.ChainedResponder
}

// NewProductAPI wires dependencies.
func NewProductAPI(service catalogports.Service) ProductAPI {
	return ProductAPI{service: service, problems: newProductResponder()}
}

// Post /api/products
// Create a product
func (api *ProductAPI) CreateProduct(c *gin.Context) {
	var payload producthttpmapper.CreateProductRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.problems.BadRequest(c, err.Error())
		return
	}
	product, err := api.service.CreateProduct(c.Request.Context(), producthttpmapper.ToCreateInput(payload))
	if err != nil {
		api.problems.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, producthttpmapper.FromDomainProduct(product))
}

// Get /api/products
// List products, optionally filtered by a name fragment
func (api *ProductAPI) ListProducts(c *gin.Context) {
	filter := catalogports.ListFilter{
		NameContains: c.Query("name"),
		Page:         pageParams(c),
	}
	page, err := api.service.ListProducts(c.Request.Context(), filter)
	if err != nil {
		api.problems.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Map(page, producthttpmapper.FromDomainProduct))
}

// Get /api/products/:id
// Find a product by id
func (api *ProductAPI) GetProduct(c *gin.Context) {
	id := c.Param("id")
	product, err := api.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondLookupError(c, api.problems, "product", id, catalogports.ErrNotFound, err)
		return
	}
	c.JSON(http.StatusOK, producthttpmapper.FromDomainProduct(product))
}

// Put /api/products/:id
// Update the supplied fields of a product
func (api *ProductAPI) UpdateProduct(c *gin.Context) {
	id := c.Param("id")
	var payload producthttpmapper.UpdateProductRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.problems.BadRequest(c, err.Error())
		return
	}
	product, err := api.service.UpdateProduct(c.Request.Context(), producthttpmapper.ToUpdateInput(id, payload))
	if err != nil {
		respondLookupError(c, api.problems, "product", id, catalogports.ErrNotFound, err)
		return
	}
	c.JSON(http.StatusOK, producthttpmapper.FromDomainProduct(product))
}

// Delete /api/products/:id
// Delete a product
func (api *ProductAPI) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := api.service.DeleteProduct(c.Request.Context(), id); err != nil {
		respondLookupError(c, api.problems, "product", id, catalogports.ErrNotFound, err)
		return
	}
	c.Status(http.StatusNoContent)
}
