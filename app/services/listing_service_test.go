package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/app/repositories"
	"github.com/shashiranjanraj/uniformhub/pkg/orm"
)

var firstPage = orm.PageRequest{Page: 1, PerPage: 20}

func TestDraftSkipsRequiredAttributesUntilPublish(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cf := f.catalog(t)
	seller := f.user(t, "seller", models.RoleUser)

	l, err := f.svc.Listings.Create(ctx, seller, ListingInput{
		Title: "Navy blazer", PriceCents: 2000, Condition: models.ConditionLikeNew,
		ProductTypeID: cf.blazer.ID, AttributeValueIDs: []uint{cf.navy.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ListingDraft, l.Status)

	_, err = f.svc.Listings.Publish(ctx, seller, l.ID)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields["attributeValueIds"], "Size")

	_, err = f.svc.Listings.Update(ctx, seller, l.ID, ListingUpdateInput{AttributeValueIDs: []uint{cf.navy.ID, cf.age8.ID}})
	require.NoError(t, err)
	got, err := f.svc.Listings.Publish(ctx, seller, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingActive, got.Status)

	_, err = f.svc.Listings.Publish(ctx, seller, l.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestActiveListingNeedsRequiredAttributes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cf := f.catalog(t)
	seller := f.user(t, "seller", models.RoleUser)

	_, err := f.svc.Listings.Create(ctx, seller, ListingInput{
		Title: "Blazer", Condition: models.ConditionGood, ProductTypeID: cf.blazer.ID,
		Status: models.ListingActive,
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestListingValueChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cf := f.catalog(t)
	seller := f.user(t, "seller", models.RoleUser)
	tie, err := f.svc.Catalog.CreateType(ctx, TypeInput{CategoryID: cf.category.ID, Name: "Tie"})
	require.NoError(t, err)

	cases := map[string]ListingInput{
		"two values for one attribute": {AttributeValueIDs: []uint{cf.age7.ID, cf.age8.ID}, ProductTypeID: cf.blazer.ID},
		"value of another type":        {AttributeValueIDs: []uint{cf.navy.ID}, ProductTypeID: tie.ID},
		"unknown product type":         {ProductTypeID: 999},
		"unknown school":               {ProductTypeID: cf.blazer.ID, SchoolID: ptr(uint(77))},
		"unknown image":                {ProductTypeID: cf.blazer.ID, ImageFileIDs: []uint{5}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			in.Title, in.Condition = "Item", models.ConditionFair
			_, err := f.svc.Listings.Create(ctx, seller, in)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestDraftsHiddenFromOthers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cf := f.catalog(t)
	seller := f.user(t, "seller", models.RoleUser)
	other := f.user(t, "other", models.RoleUser)
	admin := f.user(t, "admin", models.RoleAdmin)

	draft, err := f.svc.Listings.Create(ctx, seller, ListingInput{Title: "Draft", Condition: models.ConditionNew, ProductTypeID: cf.blazer.ID})
	require.NoError(t, err)
	f.activeListing(t, seller, cf, 900)

	_, err = f.svc.Listings.Get(ctx, nil, draft.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Listings.Get(ctx, other, draft.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Listings.Get(ctx, seller, draft.ID)
	assert.NoError(t, err)
	_, err = f.svc.Listings.Get(ctx, admin, draft.ID)
	assert.NoError(t, err)

	public, _, err := f.svc.Listings.Browse(ctx, repositories.ListingFilter{}, firstPage)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, models.ListingActive, public[0].Status)

	all, _, err := f.svc.Listings.Browse(ctx, repositories.ListingFilter{Status: "any"}, firstPage)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, _, err = f.svc.Listings.Browse(ctx, repositories.ListingFilter{Status: "gone"}, firstPage)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestBrowseFiltersByPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cf := f.catalog(t)
	seller := f.user(t, "seller", models.RoleUser)
	f.activeListing(t, seller, cf, 500)
	f.activeListing(t, seller, cf, 1500)
	f.activeListing(t, seller, cf, 2500)

	got, p, err := f.svc.Listings.Browse(ctx, repositories.ListingFilter{MinPrice: ptr(int64(1000)), MaxPrice: ptr(int64(2000))}, firstPage)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.EqualValues(t, 1500, got[0].PriceCents)
	assert.EqualValues(t, 1, p.Total)

	_, _, err = f.svc.Listings.Browse(ctx, repositories.ListingFilter{MinPrice: ptr(int64(3)), MaxPrice: ptr(int64(1))}, firstPage)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestOnlySellerOrManagerEdits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cf := f.catalog(t)
	seller := f.user(t, "seller", models.RoleUser)
	other := f.user(t, "other", models.RoleUser)
	admin := f.user(t, "admin", models.RoleAdmin)
	l := f.activeListing(t, seller, cf, 1000)

	_, err := f.svc.Listings.Update(ctx, other, l.ID, ListingUpdateInput{Title: ptr("Mine now")})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.svc.Listings.Delete(ctx, other, l.ID), ErrForbidden)

	got, err := f.svc.Listings.Update(ctx, admin, l.ID, ListingUpdateInput{PriceCents: ptr(int64(800))})
	require.NoError(t, err)
	assert.EqualValues(t, 800, got.PriceCents)
	require.Len(t, got.AttributeValues, 1, "values are kept when not sent")
}

func TestShopMustBelongToSeller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cf := f.catalog(t)
	owner := f.user(t, "owner", models.RoleUser)
	other := f.user(t, "other", models.RoleUser)
	shop, err := f.svc.Shops.Create(ctx, owner, ShopInput{Name: "Uniform Swap"})
	require.NoError(t, err)

	_, err = f.svc.Listings.Create(ctx, other, ListingInput{Title: "Tie", Condition: models.ConditionGood, ProductTypeID: cf.blazer.ID, ShopID: &shop.ID})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "shopId")

	_, err = f.svc.Listings.Create(ctx, owner, ListingInput{Title: "Tie", Condition: models.ConditionGood, ProductTypeID: cf.blazer.ID, ShopID: &shop.ID})
	assert.NoError(t, err)
}
