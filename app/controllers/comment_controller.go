package controllers

import (
	"net/http"

	"github.com/agromap/agromap/app/services"
	"github.com/agromap/agromap/pkg/ctx"
)

type CommentController struct {
	comments *services.CommentService
}

// Index handles GET /api/comments?productId=.
func (cc *CommentController) Index(c *ctx.Context) {
	productID, ok := c.QueryUint("productId")
	if !ok {
		c.Error(http.StatusBadRequest, "A valid productId is required")
		return
	}
	comments, err := cc.comments.ForProduct(c.Context(), productID)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(comments)
}

// Store handles POST /api/comments.
func (cc *CommentController) Store(c *ctx.Context) {
	var in services.CommentInput
	if !c.BindJSON(&in) {
		return
	}
	comment, err := cc.comments.Create(c.Context(), c.UserID(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(comment)
}

// Vote handles POST /api/comments/{id}/vote.
func (cc *CommentController) Vote(c *ctx.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in services.VoteInput
	if !c.BindJSON(&in) {
		return
	}
	result, err := cc.comments.Vote(c.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(result)
}

// Mine handles GET /api/user/comments.
func (cc *CommentController) Mine(c *ctx.Context) {
	comments, err := cc.comments.ByUser(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(comments)
}

// All handles GET /api/admin/comments.
func (cc *CommentController) All(c *ctx.Context) {
	comments, err := cc.comments.All(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(comments)
}

// Destroy handles DELETE /api/admin/comments/{id}.
func (cc *CommentController) Destroy(c *ctx.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := cc.comments.Delete(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Message("Comment deleted")
}
