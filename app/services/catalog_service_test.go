package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeNestsAndRefreshesAfterWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cf := f.catalog(t)

	tree, err := f.svc.Catalog.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "outerwear", tree[0].Slug)
	require.Len(t, tree[0].Types, 1)
	assert.Equal(t, "school-blazer", tree[0].Types[0].Slug)
	attrs := tree[0].Types[0].Attributes
	require.Len(t, attrs, 2)
	assert.Equal(t, "Colour", attrs[0].Name)
	assert.Equal(t, "Size", attrs[1].Name)
	assert.True(t, attrs[1].Required)
	assert.Len(t, attrs[1].Values, 2)

	_, err = f.svc.Catalog.CreateValue(ctx, AttributeValueInput{AttributeID: cf.colour.ID, Value: "Bottle Green"})
	require.NoError(t, err)
	tree, err = f.svc.Catalog.Tree(ctx)
	require.NoError(t, err)
	assert.Len(t, tree[0].Types[0].Attributes[0].Values, 2)
}

func TestCatalogUniqueness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cf := f.catalog(t)

	_, err := f.svc.Catalog.CreateCategory(ctx, CategoryInput{Name: "OUTERWEAR!"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.Catalog.CreateType(ctx, TypeInput{CategoryID: cf.category.ID, Name: "School blazer"})
	assert.ErrorIs(t, err, ErrConflict)

	other, err := f.svc.Catalog.CreateCategory(ctx, CategoryInput{Name: "Sports"})
	require.NoError(t, err)
	_, err = f.svc.Catalog.CreateType(ctx, TypeInput{CategoryID: other.ID, Name: "School blazer"})
	assert.NoError(t, err, "type slugs are unique per category")

	_, err = f.svc.Catalog.CreateValue(ctx, AttributeValueInput{AttributeID: cf.size.ID, Value: "Age 7-8"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.Catalog.CreateCategory(ctx, CategoryInput{Name: "!!!"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCatalogParentsMustExist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Catalog.CreateType(ctx, TypeInput{CategoryID: 42, Name: "Tie"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "categoryId")

	_, err = f.svc.Catalog.CreateAttribute(ctx, AttributeInput{ProductTypeID: 42, Name: "Size"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "productTypeId")

	_, err = f.svc.Catalog.CreateValue(ctx, AttributeValueInput{AttributeID: 42, Value: "S"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "attributeId")
}

func TestCatalogDeleteRefusesNonEmptyParents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cf := f.catalog(t)
	seller := f.user(t, "seller", "user")
	l := f.activeListing(t, seller, cf, 1500)

	assert.ErrorIs(t, f.svc.Catalog.DeleteCategory(ctx, cf.category.ID), ErrConflict)
	assert.ErrorIs(t, f.svc.Catalog.DeleteType(ctx, cf.blazer.ID), ErrConflict)
	assert.ErrorIs(t, f.svc.Catalog.DeleteAttribute(ctx, cf.size.ID), ErrConflict)
	assert.ErrorIs(t, f.svc.Catalog.DeleteValue(ctx, cf.age7.ID), ErrConflict, "value is on a listing")

	require.NoError(t, f.svc.Catalog.DeleteValue(ctx, cf.navy.ID))
	require.NoError(t, f.svc.Catalog.DeleteAttribute(ctx, cf.colour.ID))
	assert.ErrorIs(t, f.svc.Catalog.DeleteValue(ctx, cf.navy.ID), ErrNotFound)

	require.NoError(t, f.svc.Listings.Delete(ctx, seller, l.ID))
	require.NoError(t, f.svc.Catalog.DeleteValue(ctx, cf.age7.ID))
	require.NoError(t, f.svc.Catalog.DeleteValue(ctx, cf.age8.ID))
	require.NoError(t, f.svc.Catalog.DeleteAttribute(ctx, cf.size.ID))
	require.NoError(t, f.svc.Catalog.DeleteType(ctx, cf.blazer.ID))
	require.NoError(t, f.svc.Catalog.DeleteCategory(ctx, cf.category.ID))

	tree, err := f.svc.Catalog.Tree(ctx)
	require.NoError(t, err)
	assert.Empty(t, tree)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "st-mary-s-primary", Slugify("  St Mary's Primary "))
	assert.Equal(t, "age-7-8", Slugify("Age 7–8"))
	assert.Equal(t, "", Slugify("!!!"))
}
