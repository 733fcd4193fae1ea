package controllers

import (
	"github.com/agromap/agromap/app/services"
	"github.com/agromap/agromap/pkg/ctx"
)

type UserController struct {
	users *services.UserService
}

func (uc *UserController) Profile(c *ctx.Context) {
	user, err := uc.users.Profile(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(user)
}

func (uc *UserController) UpdateProfile(c *ctx.Context) {
	var in services.ProfileInput
	if !c.BindJSON(&in) {
		return
	}
	user, err := uc.users.UpdateProfile(c.Context(), c.UserID(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(user)
}

func (uc *UserController) Stats(c *ctx.Context) {
	stats, err := uc.users.Stats(c.Context(), c.UserID(), c.Claims().Role)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(stats)
}

// Index handles GET /api/admin/users.
func (uc *UserController) Index(c *ctx.Context) {
	users, err := uc.users.List(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(users)
}

// Update handles PUT /api/admin/users/{id}: a role change.
func (uc *UserController) Update(c *ctx.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in services.RoleInput
	if !c.BindJSON(&in) {
		return
	}
	user, err := uc.users.ChangeRole(c.Context(), c.UserID(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(user)
}

// Destroy handles DELETE /api/admin/users/{id}.
func (uc *UserController) Destroy(c *ctx.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := uc.users.Delete(c.Context(), c.UserID(), id); err != nil {
		fail(c, err)
		return
	}
	c.Message("User deleted")
}
