package controllers

import (
	"github.com/agromap/agromap/app/services"
	"github.com/agromap/agromap/pkg/ctx"
)

type ProductBaseController struct {
	bases *services.ProductBaseService
}

// Index lists the catalogue, optionally filtered by ?category=.
func (bc *ProductBaseController) Index(c *ctx.Context) {
	bases, err := bc.bases.List(c.Context(), c.Query("category"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(bases)
}

func (bc *ProductBaseController) Store(c *ctx.Context) {
	var in services.BaseInput
	if !c.BindJSON(&in) {
		return
	}
	base, err := bc.bases.Create(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(base)
}

func (bc *ProductBaseController) Update(c *ctx.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in services.BaseInput
	if !c.BindJSON(&in) {
		return
	}
	base, err := bc.bases.Update(c.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(base)
}

func (bc *ProductBaseController) Destroy(c *ctx.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := bc.bases.Delete(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Message("Product base deleted")
}
