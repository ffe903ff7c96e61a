package controllers

import (
	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/app/services"
	"github.com/shashiranjanraj/uniformhub/pkg/ctx"
)

type RoleController struct {
	roles *services.RoleService
}

func NewRoleController(s *services.RoleService) *RoleController {
	return &RoleController{roles: s}
}

func (r *RoleController) Index(c *ctx.Context) {
	roles, err := r.roles.List(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(roles)
}

// Permissions lists the fixed permission keys a role bag may hold.
func (r *RoleController) Permissions(c *ctx.Context) {
	c.Success(models.AllPermissions)
}

func (r *RoleController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	role, err := r.roles.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(role)
}

func (r *RoleController) Store(c *ctx.Context) {
	var in services.RoleInput
	if !c.BindJSON(&in) {
		return
	}
	role, err := r.roles.Create(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(role)
}

func (r *RoleController) Update(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var in services.RoleUpdateInput
	if !c.BindJSON(&in) {
		return
	}
	role, err := r.roles.Update(c.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(role)
}

func (r *RoleController) Destroy(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := r.roles.Delete(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}
