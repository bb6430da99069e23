package httpserver

import (
	"net/http"

	"clubstore/internal/domain"
	"clubstore/internal/service/catalog"
	"github.com/gin-gonic/gin"
)

func (h *handlers) listProducts(c *gin.Context) {
	products, err := h.deps.Catalog.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(products), "results": products})
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.deps.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) listCategories(c *gin.Context) {
	cats, err := h.deps.Catalog.Categories(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": cats})
}

func (h *handlers) adminListProducts(c *gin.Context) {
	h.listProducts(c)
}

func (h *handlers) adminCreateProduct(c *gin.Context) {
	var in catalog.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.deps.Catalog.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handlers) adminUpdateProduct(c *gin.Context) {
	var patch domain.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.deps.Catalog.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) adminDeleteProduct(c *gin.Context) {
	if err := h.deps.Catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
