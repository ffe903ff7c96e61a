package controllers

import (
	"github.com/shashiranjanraj/uniformhub/app/presenters"
	"github.com/shashiranjanraj/uniformhub/app/repositories"
	"github.com/shashiranjanraj/uniformhub/app/services"
	"github.com/shashiranjanraj/uniformhub/pkg/ctx"
	"github.com/shashiranjanraj/uniformhub/pkg/resource"
)

type ListingController struct {
	listings *services.ListingService
}

func NewListingController(s *services.ListingService) *ListingController {
	return &ListingController{listings: s}
}

// Index GET /api/listings?schoolId=&shopId=&productTypeId=&sellerId=&status=&minPrice=&maxPrice=&q=
func (lc *ListingController) Index(c *ctx.Context) {
	f := repositories.ListingFilter{
		SchoolID:      c.QueryUint("schoolId"),
		ShopID:        c.QueryUint("shopId"),
		ProductTypeID: c.QueryUint("productTypeId"),
		SellerID:      c.QueryUint("sellerId"),
		Status:        c.Query("status"),
		Search:        c.Query("q"),
	}
	errs := map[string]string{}
	if v, ok := c.QueryInt64("minPrice"); ok {
		f.MinPrice = &v
	} else if c.Query("minPrice") != "" {
		errs["minPrice"] = "The minPrice must be an integer number of cents."
	}
	if v, ok := c.QueryInt64("maxPrice"); ok {
		f.MaxPrice = &v
	} else if c.Query("maxPrice") != "" {
		errs["maxPrice"] = "The maxPrice must be an integer number of cents."
	}
	if len(errs) > 0 {
		c.ValidationError(errs)
		return
	}

	out, page, err := lc.listings.Browse(c.Context(), f, c.Page())
	if err != nil {
		fail(c, err)
		return
	}
	c.Paginated(resource.Many(presenters.Listing, out), page)
}

func (lc *ListingController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	l, err := lc.listings.Get(c.Context(), c.Principal(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(presenters.Listing(*l))
}

func (lc *ListingController) Store(c *ctx.Context) {
	var in services.ListingInput
	if !c.BindJSON(&in) {
		return
	}
	l, err := lc.listings.Create(c.Context(), c.Principal(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(presenters.Listing(*l))
}

func (lc *ListingController) Update(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var in services.ListingUpdateInput
	if !c.BindJSON(&in) {
		return
	}
	l, err := lc.listings.Update(c.Context(), c.Principal(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(presenters.Listing(*l))
}

func (lc *ListingController) Publish(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	l, err := lc.listings.Publish(c.Context(), c.Principal(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(presenters.Listing(*l))
}

func (lc *ListingController) Destroy(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := lc.listings.Delete(c.Context(), c.Principal(), id); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}
