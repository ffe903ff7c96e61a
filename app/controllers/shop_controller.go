package controllers

import (
	"github.com/shashiranjanraj/uniformhub/app/services"
	"github.com/shashiranjanraj/uniformhub/pkg/ctx"
)

type ShopController struct {
	shops *services.ShopService
	Show  ctx.HandlerFunc
}

func NewShopController(s *services.ShopService) *ShopController {
	return &ShopController{shops: s, Show: show(s.Get)}
}

func (sc *ShopController) Index(c *ctx.Context) {
	out, page, err := sc.shops.List(c.Context(), services.ShopFilter{
		OwnerID:  c.QueryUint("ownerId"),
		SchoolID: c.QueryUint("schoolId"),
		Search:   c.Query("q"),
	}, c.Page())
	if err != nil {
		fail(c, err)
		return
	}
	c.Paginated(out, page)
}

func (sc *ShopController) Store(c *ctx.Context) {
	var in services.ShopInput
	if !c.BindJSON(&in) {
		return
	}
	shop, err := sc.shops.Create(c.Context(), c.Principal(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(shop)
}

func (sc *ShopController) Update(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var in services.ShopInput
	if !c.BindJSON(&in) {
		return
	}
	shop, err := sc.shops.Update(c.Context(), c.Principal(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(shop)
}

func (sc *ShopController) Destroy(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := sc.shops.Delete(c.Context(), c.Principal(), id); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}
