package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/app/repositories"
	"github.com/shashiranjanraj/uniformhub/pkg/auth"
	"github.com/shashiranjanraj/uniformhub/pkg/collection"
	"github.com/shashiranjanraj/uniformhub/pkg/orm"
)

type ListingInput struct {
	Title             string `json:"title" validate:"required,min=3,max=200"`
	Description       string `json:"description" validate:"max=5000"`
	PriceCents        int64  `json:"priceCents" validate:"gte=0,lte=100000000"`
	Condition         string `json:"condition" validate:"required,in=new,like_new,good,fair"`
	ProductTypeID     uint   `json:"productTypeId" validate:"required"`
	ShopID            *uint  `json:"shopId"`
	SchoolID          *uint  `json:"schoolId"`
	AttributeValueIDs []uint `json:"attributeValueIds"`
	ImageFileIDs      []uint `json:"imageFileIds"`
	Status            string `json:"status" validate:"nullable,in=draft,active"`
}

type ListingUpdateInput struct {
	Title             *string `json:"title" validate:"nullable,min=3,max=200"`
	Description       *string `json:"description" validate:"nullable,max=5000"`
	PriceCents        *int64  `json:"priceCents" validate:"nullable,gte=0,lte=100000000"`
	Condition         *string `json:"condition" validate:"nullable,in=new,like_new,good,fair"`
	ProductTypeID     *uint   `json:"productTypeId"`
	ShopID            *uint   `json:"shopId"`
	SchoolID          *uint   `json:"schoolId"`
	AttributeValueIDs []uint  `json:"attributeValueIds"`
	ImageFileIDs      []uint  `json:"imageFileIds"`
	Status            *string `json:"status" validate:"nullable,in=draft,active"`
}

type ListingService struct {
	listings *repositories.ListingRepository
	db       *gorm.DB
}

func NewListingService(db *gorm.DB) *ListingService {
	return &ListingService{listings: repositories.NewListingRepository(db), db: db}
}

var listingStatuses = []string{models.ListingDraft, models.ListingActive, models.ListingReserved, models.ListingSold}

// Browse lists listings. Status defaults to active; "any" lifts the filter.
func (s *ListingService) Browse(ctx context.Context, f repositories.ListingFilter, page orm.PageRequest) ([]models.Listing, orm.Pagination, error) {
	switch f.Status {
	case "":
		f.Status = models.ListingActive
	case "any":
		f.Status = ""
	default:
		if !contains(listingStatuses, f.Status) {
			return nil, orm.Pagination{}, invalid("status", "The status must be one of draft, active, reserved, sold, any.")
		}
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return nil, orm.Pagination{}, invalid("minPrice", "The minimum price must not exceed the maximum price.")
	}
	return s.listings.List(ctx, f, page)
}

// Get hides drafts from everyone but the seller and listing managers.
func (s *ListingService) Get(ctx context.Context, actor *auth.Principal, id uint) (*models.Listing, error) {
	l, err := s.listings.Load(ctx, id)
	if err != nil {
		return nil, notFound(err, "listing")
	}
	if l.Status == models.ListingDraft && (actor == nil || (actor.UserID != l.SellerID && !actor.Can(models.PermListingsManage))) {
		return nil, fmt.Errorf("listing: %w", ErrNotFound)
	}
	return l, nil
}

func (s *ListingService) Create(ctx context.Context, actor *auth.Principal, in ListingInput) (*models.Listing, error) {
	l := &models.Listing{
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		PriceCents:    in.PriceCents,
		Condition:     in.Condition,
		Status:        models.ListingDraft,
		SellerID:      actor.UserID,
		ShopID:        in.ShopID,
		SchoolID:      in.SchoolID,
		ProductTypeID: in.ProductTypeID,
	}
	if in.Status != "" {
		l.Status = in.Status
	}

	values, err := s.checkRefs(ctx, actor, l, in.AttributeValueIDs, in.ImageFileIDs)
	if err != nil {
		return nil, err
	}
	images := in.ImageFileIDs
	if images == nil {
		images = []uint{}
	}
	if err := s.listings.SaveWithRelations(ctx, l, values, images); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *ListingService) Update(ctx context.Context, actor *auth.Principal, id uint, in ListingUpdateInput) (*models.Listing, error) {
	l, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if l.Status == models.ListingReserved || l.Status == models.ListingSold {
		return nil, conflictf("listing %d is %s and can no longer be edited", id, l.Status)
	}

	if in.Title != nil {
		l.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		l.Description = *in.Description
	}
	if in.PriceCents != nil {
		l.PriceCents = *in.PriceCents
	}
	if in.Condition != nil {
		l.Condition = *in.Condition
	}
	if in.ShopID != nil {
		l.ShopID = in.ShopID
	}
	if in.SchoolID != nil {
		l.SchoolID = in.SchoolID
	}
	if in.Status != nil {
		l.Status = *in.Status
	}

	valueIDs := in.AttributeValueIDs
	if in.ProductTypeID != nil && *in.ProductTypeID != l.ProductTypeID {
		l.ProductTypeID = *in.ProductTypeID
		if valueIDs == nil {
			// the old values belong to the old type
			valueIDs = []uint{}
		}
	}
	if valueIDs == nil {
		valueIDs = collection.Map(l.AttributeValues, func(v models.AttributeValue) uint { return v.ID })
	}

	values, err := s.checkRefs(ctx, actor, l, valueIDs, in.ImageFileIDs)
	if err != nil {
		return nil, err
	}
	if err := s.listings.SaveWithRelations(ctx, l, values, in.ImageFileIDs); err != nil {
		return nil, err
	}
	return s.listings.Load(ctx, l.ID)
}

// Publish moves a draft to active after re-checking required attributes.
func (s *ListingService) Publish(ctx context.Context, actor *auth.Principal, id uint) (*models.Listing, error) {
	l, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if l.Status != models.ListingDraft {
		return nil, conflictf("listing %d is %s, not draft", id, l.Status)
	}
	ids := collection.Map(l.AttributeValues, func(v models.AttributeValue) uint { return v.ID })
	if _, err := s.checkAttributes(ctx, l.ProductTypeID, ids); err != nil {
		return nil, err
	}
	res := s.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ? AND status = ?", id, models.ListingDraft).
		Update("status", models.ListingActive)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, conflictf("listing %d changed state", id)
	}
	l.Status = models.ListingActive
	return l, nil
}

func (s *ListingService) Delete(ctx context.Context, actor *auth.Principal, id uint) error {
	l, err := s.editable(ctx, actor, id)
	if err != nil {
		return err
	}
	if l.Status == models.ListingReserved {
		return conflictf("listing %d has a pending transaction", id)
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Transaction{}).Where("listing_id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return conflictf("listing %d has transaction history", id)
	}
	return s.listings.Remove(ctx, l)
}

func (s *ListingService) editable(ctx context.Context, actor *auth.Principal, id uint) (*models.Listing, error) {
	l, err := s.listings.Load(ctx, id)
	if err != nil {
		return nil, notFound(err, "listing")
	}
	if l.SellerID != actor.UserID && !actor.Can(models.PermListingsManage) {
		return nil, forbiddenf("listing %d belongs to another seller", id)
	}
	return l, nil
}

// checkRefs validates every foreign reference on l and returns the
// attribute values to attach.
func (s *ListingService) checkRefs(ctx context.Context, actor *auth.Principal, l *models.Listing, valueIDs, imageIDs []uint) ([]models.AttributeValue, error) {
	db := s.db.WithContext(ctx)
	if err := mustExist(db, &models.ProductType{}, l.ProductTypeID, "productTypeId", "The selected product type does not exist."); err != nil {
		return nil, err
	}
	if l.SchoolID != nil {
		if err := mustExist(db, &models.School{}, *l.SchoolID, "schoolId", "The selected school does not exist."); err != nil {
			return nil, err
		}
	}
	if l.ShopID != nil {
		var shop models.Shop
		if err := db.First(&shop, *l.ShopID).Error; err != nil {
			return nil, invalid("shopId", "The selected shop does not exist.")
		}
		if shop.OwnerID != l.SellerID && !actor.Can(models.PermListingsManage) {
			return nil, invalid("shopId", "You can only list items in your own shop.")
		}
	}
	if len(imageIDs) > 0 {
		ids := collection.Unique(imageIDs)
		var n int64
		if err := db.Model(&models.FileRecord{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
			return nil, err
		}
		if int(n) != len(ids) {
			return nil, invalid("imageFileIds", "One or more image files do not exist.")
		}
	}
	if l.Status == models.ListingDraft {
		return s.checkValues(ctx, l.ProductTypeID, valueIDs)
	}
	return s.checkAttributes(ctx, l.ProductTypeID, valueIDs)
}

// checkValues ensures each value belongs to an attribute of typeID and no
// attribute gets two values.
func (s *ListingService) checkValues(ctx context.Context, typeID uint, valueIDs []uint) ([]models.AttributeValue, error) {
	valueIDs = collection.Unique(valueIDs)
	if len(valueIDs) == 0 {
		return []models.AttributeValue{}, nil
	}

	var values []models.AttributeValue
	err := s.db.WithContext(ctx).
		Joins("JOIN attributes ON attributes.id = attribute_values.attribute_id").
		Where("attribute_values.id IN ? AND attributes.product_type_id = ?", valueIDs, typeID).
		Find(&values).Error
	if err != nil {
		return nil, err
	}
	if len(values) != len(valueIDs) {
		return nil, invalid("attributeValueIds", "One or more attribute values do not belong to the selected product type.")
	}
	per := collection.GroupBy(values, func(v models.AttributeValue) uint { return v.AttributeID })
	for _, vs := range per {
		if len(vs) > 1 {
			return nil, invalid("attributeValueIds", "Only one value may be chosen per attribute.")
		}
	}
	return values, nil
}

// checkAttributes is checkValues plus every required attribute filled.
func (s *ListingService) checkAttributes(ctx context.Context, typeID uint, valueIDs []uint) ([]models.AttributeValue, error) {
	values, err := s.checkValues(ctx, typeID, valueIDs)
	if err != nil {
		return nil, err
	}
	var required []models.Attribute
	if err := s.db.WithContext(ctx).Where("product_type_id = ? AND required = ?", typeID, true).Find(&required).Error; err != nil {
		return nil, err
	}
	have := collection.KeyBy(values, func(v models.AttributeValue) uint { return v.AttributeID })
	var missing []string
	for _, a := range required {
		if _, ok := have[a.ID]; !ok {
			missing = append(missing, a.Name)
		}
	}
	if len(missing) > 0 {
		return nil, invalid("attributeValueIds", "Missing required attributes: "+strings.Join(missing, ", ")+".")
	}
	return values, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
