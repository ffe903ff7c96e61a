package controllers

import (
	"github.com/shashiranjanraj/uniformhub/app/presenters"
	"github.com/shashiranjanraj/uniformhub/app/repositories"
	"github.com/shashiranjanraj/uniformhub/app/services"
	"github.com/shashiranjanraj/uniformhub/pkg/ctx"
	"github.com/shashiranjanraj/uniformhub/pkg/resource"
)

// UserController serves /api/admin/users.
type UserController struct {
	users *services.UserService
}

func NewUserController(s *services.UserService) *UserController {
	return &UserController{users: s}
}

func (u *UserController) Index(c *ctx.Context) {
	list, page, err := u.users.List(c.Context(), repositories.UserFilter{
		Status: c.Query("status"),
		Search: c.Query("q"),
	}, c.Page())
	if err != nil {
		fail(c, err)
		return
	}
	c.Paginated(resource.Many(presenters.User, list), page)
}

func (u *UserController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	user, err := u.users.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(presenters.User(*user))
}

func (u *UserController) Update(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var in services.UpdateUserInput
	if !c.BindJSON(&in) {
		return
	}
	user, err := u.users.Update(c.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(presenters.User(*user))
}

func (u *UserController) Ban(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var in services.BanInput
	if !c.BindJSON(&in) {
		return
	}
	user, err := u.users.Ban(c.Context(), c.Principal().UserID, id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(presenters.User(*user))
}

func (u *UserController) Unban(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	user, err := u.users.Unban(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(presenters.User(*user))
}

func (u *UserController) Destroy(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := u.users.Delete(c.Context(), c.Principal().UserID, id); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}

func (u *UserController) SetPassword(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var in services.SetPasswordInput
	if !c.BindJSON(&in) {
		return
	}
	if err := u.users.SetPassword(c.Context(), id, in); err != nil {
		fail(c, err)
		return
	}
	c.Message("Password updated")
}

func (u *UserController) PendingCount(c *ctx.Context) {
	n, err := u.users.PendingCount(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(map[string]int64{"count": n})
}

func (u *UserController) Approve(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	user, err := u.users.Approve(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(presenters.User(*user))
}

func (u *UserController) Reject(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	user, err := u.users.Reject(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(presenters.User(*user))
}
