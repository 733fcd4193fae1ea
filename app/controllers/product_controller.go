package controllers

import (
	"github.com/agromap/agromap/app/services"
	"github.com/agromap/agromap/pkg/ctx"
)

type ProductController struct {
	products *services.ProductService
}

// Index handles GET /api/products and its public alias. ?available=true
// hides products that are out of stock.
func (pc *ProductController) Index(c *ctx.Context) {
	products, err := pc.products.List(c.Context(), c.Query("available") == "true")
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(products)
}

// Show handles GET /api/products/{id}.
func (pc *ProductController) Show(c *ctx.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	product, err := pc.products.Detail(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(product)
}

// ByCategory handles GET /api/products/category/{category}.
func (pc *ProductController) ByCategory(c *ctx.Context) {
	products, err := pc.products.ByCategory(c.Context(), c.Param("category"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(products)
}

// ForMarket handles GET /api/markets/{id}/products.
func (pc *ProductController) ForMarket(c *ctx.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	products, err := pc.products.ForMarket(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(products)
}

// Mine handles GET /api/products/my.
func (pc *ProductController) Mine(c *ctx.Context) {
	products, err := pc.products.Mine(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(products)
}

// Store handles POST /api/products/create.
func (pc *ProductController) Store(c *ctx.Context) {
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	product, err := pc.products.Create(c.Context(), c.UserID(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(product)
}

// UpdateMine handles PUT /api/products/{id}.
func (pc *ProductController) UpdateMine(c *ctx.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in services.ProductUpdate
	if !c.BindJSON(&in) {
		return
	}
	product, err := pc.products.UpdateMine(c.Context(), c.UserID(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(product)
}

// DestroyMine handles DELETE /api/products/{id}.
func (pc *ProductController) DestroyMine(c *ctx.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := pc.products.DeleteMine(c.Context(), c.UserID(), id); err != nil {
		fail(c, err)
		return
	}
	c.Message("Product deleted")
}

// Update handles PUT /api/admin/products/{id}.
func (pc *ProductController) Update(c *ctx.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in services.ProductUpdate
	if !c.BindJSON(&in) {
		return
	}
	product, err := pc.products.Update(c.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(product)
}

// Destroy handles DELETE /api/admin/products/{id}.
func (pc *ProductController) Destroy(c *ctx.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := pc.products.Delete(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Message("Product deleted")
}
