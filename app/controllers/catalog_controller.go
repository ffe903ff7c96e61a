package controllers

import (
	"github.com/shashiranjanraj/uniformhub/app/services"
	"github.com/shashiranjanraj/uniformhub/pkg/ctx"
)

// CatalogController serves the public tree and the four admin levels:
// categories, product types, attributes and attribute values.
type CatalogController struct {
	catalog *services.CatalogService

	Categories, Category, StoreCategory, UpdateCategory, DestroyCategory ctx.HandlerFunc
	Type, StoreType, UpdateType, DestroyType                             ctx.HandlerFunc
	Attribute, StoreAttribute, UpdateAttribute, DestroyAttribute         ctx.HandlerFunc
	Value, StoreValue, UpdateValue, DestroyValue                         ctx.HandlerFunc
}

func NewCatalogController(s *services.CatalogService) *CatalogController {
	return &CatalogController{
		catalog: s,

		Categories:      list(s.Categories),
		Category:        show(s.Category),
		StoreCategory:   store(s.CreateCategory),
		UpdateCategory:  update(s.UpdateCategory),
		DestroyCategory: destroy(s.DeleteCategory),

		Type:        show(s.Type),
		StoreType:   store(s.CreateType),
		UpdateType:  update(s.UpdateType),
		DestroyType: destroy(s.DeleteType),

		Attribute:        show(s.Attribute),
		StoreAttribute:   store(s.CreateAttribute),
		UpdateAttribute:  update(s.UpdateAttribute),
		DestroyAttribute: destroy(s.DeleteAttribute),

		Value:        show(s.Value),
		StoreValue:   store(s.CreateValue),
		UpdateValue:  update(s.UpdateValue),
		DestroyValue: destroy(s.DeleteValue),
	}
}

// Tree GET /api/catalog
func (cc *CatalogController) Tree(c *ctx.Context) {
	tree, err := cc.catalog.Tree(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if tree == nil {
		tree = []services.CategoryNode{}
	}
	c.Success(tree)
}

// Types lists product types, optionally for ?categoryId=.
func (cc *CatalogController) Types(c *ctx.Context) {
	out, err := cc.catalog.Types(c.Context(), c.QueryUint("categoryId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(out)
}

// Attributes lists attributes, optionally for ?productTypeId=.
func (cc *CatalogController) Attributes(c *ctx.Context) {
	out, err := cc.catalog.Attributes(c.Context(), c.QueryUint("productTypeId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(out)
}

// Values lists attribute values, optionally for ?attributeId=.
func (cc *CatalogController) Values(c *ctx.Context) {
	out, err := cc.catalog.Values(c.Context(), c.QueryUint("attributeId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(out)
}
