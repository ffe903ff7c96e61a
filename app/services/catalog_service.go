package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/app/repositories"
	"github.com/shashiranjanraj/uniformhub/pkg/cache"
	"github.com/shashiranjanraj/uniformhub/pkg/collection"
)

const (
	catalogCacheKey = "uniformhub:catalog:tree"
	catalogCacheTTL = 15 * time.Minute
)

type CategoryInput struct {
	Name string `json:"name" validate:"required,max=120"`
	Slug string `json:"slug" validate:"nullable,slug,max=120"`
}

type TypeInput struct {
	CategoryID uint   `json:"categoryId" validate:"required"`
	Name       string `json:"name" validate:"required,max=120"`
	Slug       string `json:"slug" validate:"nullable,slug,max=120"`
}

type AttributeInput struct {
	ProductTypeID uint   `json:"productTypeId" validate:"required"`
	Name          string `json:"name" validate:"required,max=120"`
	Required      bool   `json:"required"`
}

type AttributeValueInput struct {
	AttributeID uint   `json:"attributeId" validate:"required"`
	Value       string `json:"value" validate:"required,max=120"`
}

// Tree nodes returned by GET /api/catalog and the GraphQL catalog field.
type (
	CategoryNode struct {
		ID    uint       `json:"id"`
		Name  string     `json:"name"`
		Slug  string     `json:"slug"`
		Types []TypeNode `json:"types"`
	}
	TypeNode struct {
		ID         uint            `json:"id"`
		Name       string          `json:"name"`
		Slug       string          `json:"slug"`
		Attributes []AttributeNode `json:"attributes"`
	}
	AttributeNode struct {
		ID       uint        `json:"id"`
		Name     string      `json:"name"`
		Required bool        `json:"required"`
		Values   []ValueNode `json:"values"`
	}
	ValueNode struct {
		ID    uint   `json:"id"`
		Value string `json:"value"`
	}
)

type CatalogService struct {
	categories repositories.Repo[models.ProductCategory]
	types      repositories.Repo[models.ProductType]
	attributes repositories.Repo[models.Attribute]
	values     repositories.Repo[models.AttributeValue]
	cache      cache.Store
}

func NewCatalogService(db *gorm.DB, store cache.Store) *CatalogService {
	return &CatalogService{
		categories: repositories.NewRepo[models.ProductCategory](db),
		types:      repositories.NewRepo[models.ProductType](db),
		attributes: repositories.NewRepo[models.Attribute](db),
		values:     repositories.NewRepo[models.AttributeValue](db),
		cache:      store,
	}
}

// Tree returns the whole catalog nested four levels deep.
func (s *CatalogService) Tree(ctx context.Context) ([]CategoryNode, error) {
	return cache.Remember(ctx, s.cache, catalogCacheKey, catalogCacheTTL, func() ([]CategoryNode, error) {
		return s.buildTree(ctx)
	})
}

func (s *CatalogService) buildTree(ctx context.Context) ([]CategoryNode, error) {
	cats, err := s.categories.Where(ctx, "name asc", "")
	if err != nil {
		return nil, err
	}
	types, err := s.types.Where(ctx, "name asc", "")
	if err != nil {
		return nil, err
	}
	attrs, err := s.attributes.Where(ctx, "name asc", "")
	if err != nil {
		return nil, err
	}
	vals, err := s.values.Where(ctx, "value asc", "")
	if err != nil {
		return nil, err
	}

	valsByAttr := collection.GroupBy(vals, func(v models.AttributeValue) uint { return v.AttributeID })
	attrsByType := collection.GroupBy(attrs, func(a models.Attribute) uint { return a.ProductTypeID })
	typesByCat := collection.GroupBy(types, func(t models.ProductType) uint { return t.CategoryID })

	return collection.Map(cats, func(c models.ProductCategory) CategoryNode {
		return CategoryNode{
			ID: c.ID, Name: c.Name, Slug: c.Slug,
			Types: collection.Map(typesByCat[c.ID], func(t models.ProductType) TypeNode {
				return TypeNode{
					ID: t.ID, Name: t.Name, Slug: t.Slug,
					Attributes: collection.Map(attrsByType[t.ID], func(a models.Attribute) AttributeNode {
						return AttributeNode{
							ID: a.ID, Name: a.Name, Required: a.Required,
							Values: collection.Map(valsByAttr[a.ID], func(v models.AttributeValue) ValueNode {
								return ValueNode{ID: v.ID, Value: v.Value}
							}),
						}
					}),
				}
			}),
		}
	}), nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, catalogCacheKey)
	}
}

// ── categories ──────────────────────────────────────────────────────────────

func (s *CatalogService) Categories(ctx context.Context) ([]models.ProductCategory, error) {
	return s.categories.Where(ctx, "name asc", "")
}

func (s *CatalogService) Category(ctx context.Context, id uint) (*models.ProductCategory, error) {
	c, err := s.categories.Find(ctx, id)
	return c, notFound(err, "category")
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*models.ProductCategory, error) {
	c := &models.ProductCategory{Name: strings.TrimSpace(in.Name), Slug: slugOr(in.Slug, in.Name)}
	if err := s.saveCategory(ctx, c, true); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, in CategoryInput) (*models.ProductCategory, error) {
	c, err := s.Category(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name, c.Slug = strings.TrimSpace(in.Name), slugOr(in.Slug, in.Name)
	if err := s.saveCategory(ctx, c, false); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) saveCategory(ctx context.Context, c *models.ProductCategory, create bool) error {
	if c.Slug == "" {
		return invalid("slug", "A slug could not be derived from the name.")
	}
	taken, err := s.categories.Exists(ctx, "slug = ? AND id <> ?", c.Slug, c.ID)
	if err != nil {
		return err
	}
	if taken {
		return conflictf("category slug %s already exists", c.Slug)
	}
	if create {
		err = s.categories.Create(ctx, c)
	} else {
		err = s.categories.Save(ctx, c)
	}
	if err == nil {
		s.invalidate(ctx)
	}
	return err
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	if _, err := s.Category(ctx, id); err != nil {
		return err
	}
	if has, err := s.types.Exists(ctx, "category_id = ?", id); err != nil {
		return err
	} else if has {
		return conflictf("category %d still has product types", id)
	}
	return s.deleted(ctx, s.categories.Delete(ctx, id), "category")
}

// ── product types ───────────────────────────────────────────────────────────

func (s *CatalogService) Types(ctx context.Context, categoryID uint) ([]models.ProductType, error) {
	if categoryID == 0 {
		return s.types.Where(ctx, "name asc", "")
	}
	return s.types.Where(ctx, "name asc", "category_id = ?", categoryID)
}

func (s *CatalogService) Type(ctx context.Context, id uint) (*models.ProductType, error) {
	t, err := s.types.Find(ctx, id)
	return t, notFound(err, "product type")
}

func (s *CatalogService) CreateType(ctx context.Context, in TypeInput) (*models.ProductType, error) {
	t := &models.ProductType{CategoryID: in.CategoryID, Name: strings.TrimSpace(in.Name), Slug: slugOr(in.Slug, in.Name)}
	if err := s.saveType(ctx, t, true); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *CatalogService) UpdateType(ctx context.Context, id uint, in TypeInput) (*models.ProductType, error) {
	t, err := s.Type(ctx, id)
	if err != nil {
		return nil, err
	}
	t.CategoryID, t.Name, t.Slug = in.CategoryID, strings.TrimSpace(in.Name), slugOr(in.Slug, in.Name)
	if err := s.saveType(ctx, t, false); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *CatalogService) saveType(ctx context.Context, t *models.ProductType, create bool) error {
	if ok, err := s.categories.Exists(ctx, "id = ?", t.CategoryID); err != nil {
		return err
	} else if !ok {
		return invalid("categoryId", "The selected category does not exist.")
	}
	if t.Slug == "" {
		return invalid("slug", "A slug could not be derived from the name.")
	}
	taken, err := s.types.Exists(ctx, "category_id = ? AND slug = ? AND id <> ?", t.CategoryID, t.Slug, t.ID)
	if err != nil {
		return err
	}
	if taken {
		return conflictf("product type slug %s already exists in this category", t.Slug)
	}
	if create {
		err = s.types.Create(ctx, t)
	} else {
		err = s.types.Save(ctx, t)
	}
	if err == nil {
		s.invalidate(ctx)
	}
	return err
}

func (s *CatalogService) DeleteType(ctx context.Context, id uint) error {
	if _, err := s.Type(ctx, id); err != nil {
		return err
	}
	if has, err := s.attributes.Exists(ctx, "product_type_id = ?", id); err != nil {
		return err
	} else if has {
		return conflictf("product type %d still has attributes", id)
	}
	var listings int64
	if err := s.types.DB(ctx).Model(&models.Listing{}).Where("product_type_id = ?", id).Count(&listings).Error; err != nil {
		return err
	}
	if listings > 0 {
		return conflictf("product type %d is used by %d listings", id, listings)
	}
	return s.deleted(ctx, s.types.Delete(ctx, id), "product type")
}

// ── attributes ──────────────────────────────────────────────────────────────

func (s *CatalogService) Attributes(ctx context.Context, typeID uint) ([]models.Attribute, error) {
	if typeID == 0 {
		return s.attributes.Where(ctx, "name asc", "")
	}
	return s.attributes.Where(ctx, "name asc", "product_type_id = ?", typeID)
}

func (s *CatalogService) Attribute(ctx context.Context, id uint) (*models.Attribute, error) {
	a, err := s.attributes.Find(ctx, id)
	return a, notFound(err, "attribute")
}

func (s *CatalogService) CreateAttribute(ctx context.Context, in AttributeInput) (*models.Attribute, error) {
	a := &models.Attribute{ProductTypeID: in.ProductTypeID, Name: strings.TrimSpace(in.Name), Required: in.Required}
	if err := s.saveAttribute(ctx, a, true); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *CatalogService) UpdateAttribute(ctx context.Context, id uint, in AttributeInput) (*models.Attribute, error) {
	a, err := s.Attribute(ctx, id)
	if err != nil {
		return nil, err
	}
	a.ProductTypeID, a.Name, a.Required = in.ProductTypeID, strings.TrimSpace(in.Name), in.Required
	if err := s.saveAttribute(ctx, a, false); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *CatalogService) saveAttribute(ctx context.Context, a *models.Attribute, create bool) error {
	if ok, err := s.types.Exists(ctx, "id = ?", a.ProductTypeID); err != nil {
		return err
	} else if !ok {
		return invalid("productTypeId", "The selected product type does not exist.")
	}
	taken, err := s.attributes.Exists(ctx, "product_type_id = ? AND name = ? AND id <> ?", a.ProductTypeID, a.Name, a.ID)
	if err != nil {
		return err
	}
	if taken {
		return conflictf("attribute %s already exists on this product type", a.Name)
	}
	if create {
		err = s.attributes.Create(ctx, a)
	} else {
		err = s.attributes.Save(ctx, a)
	}
	if err == nil {
		s.invalidate(ctx)
	}
	return err
}

func (s *CatalogService) DeleteAttribute(ctx context.Context, id uint) error {
	if _, err := s.Attribute(ctx, id); err != nil {
		return err
	}
	if has, err := s.values.Exists(ctx, "attribute_id = ?", id); err != nil {
		return err
	} else if has {
		return conflictf("attribute %d still has values", id)
	}
	return s.deleted(ctx, s.attributes.Delete(ctx, id), "attribute")
}

// ── attribute values ────────────────────────────────────────────────────────

func (s *CatalogService) Values(ctx context.Context, attributeID uint) ([]models.AttributeValue, error) {
	if attributeID == 0 {
		return s.values.Where(ctx, "value asc", "")
	}
	return s.values.Where(ctx, "value asc", "attribute_id = ?", attributeID)
}

func (s *CatalogService) Value(ctx context.Context, id uint) (*models.AttributeValue, error) {
	v, err := s.values.Find(ctx, id)
	return v, notFound(err, "attribute value")
}

func (s *CatalogService) CreateValue(ctx context.Context, in AttributeValueInput) (*models.AttributeValue, error) {
	v := &models.AttributeValue{AttributeID: in.AttributeID, Value: strings.TrimSpace(in.Value)}
	if err := s.saveValue(ctx, v, true); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *CatalogService) UpdateValue(ctx context.Context, id uint, in AttributeValueInput) (*models.AttributeValue, error) {
	v, err := s.Value(ctx, id)
	if err != nil {
		return nil, err
	}
	v.AttributeID, v.Value = in.AttributeID, strings.TrimSpace(in.Value)
	if err := s.saveValue(ctx, v, false); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *CatalogService) saveValue(ctx context.Context, v *models.AttributeValue, create bool) error {
	if ok, err := s.attributes.Exists(ctx, "id = ?", v.AttributeID); err != nil {
		return err
	} else if !ok {
		return invalid("attributeId", "The selected attribute does not exist.")
	}
	taken, err := s.values.Exists(ctx, "attribute_id = ? AND value = ? AND id <> ?", v.AttributeID, v.Value, v.ID)
	if err != nil {
		return err
	}
	if taken {
		return conflictf("value %s already exists on this attribute", v.Value)
	}
	if create {
		err = s.values.Create(ctx, v)
	} else {
		err = s.values.Save(ctx, v)
	}
	if err == nil {
		s.invalidate(ctx)
	}
	return err
}

func (s *CatalogService) DeleteValue(ctx context.Context, id uint) error {
	if _, err := s.Value(ctx, id); err != nil {
		return err
	}
	var used int64
	if err := s.values.DB(ctx).Table("listing_attribute_values").Where("attribute_value_id = ?", id).Count(&used).Error; err != nil {
		return err
	}
	if used > 0 {
		return conflictf("attribute value %d is used by %d listings", id, used)
	}
	return s.deleted(ctx, s.values.Delete(ctx, id), "attribute value")
}

func (s *CatalogService) deleted(ctx context.Context, err error, what string) error {
	if err != nil {
		return notFound(err, what)
	}
	s.invalidate(ctx)
	return nil
}
