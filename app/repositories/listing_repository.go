package repositories

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/pkg/orm"
)

type ListingRepository struct {
	Repo[models.Listing]
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{Repo: NewRepo[models.Listing](db)}
}

// ListingFilter is the public browse query. Zero fields are ignored.
type ListingFilter struct {
	SchoolID      uint
	ShopID        uint
	ProductTypeID uint
	SellerID      uint
	Status        string
	MinPrice      *int64
	MaxPrice      *int64
	Search        string
}

func (r *ListingRepository) List(ctx context.Context, f ListingFilter, page orm.PageRequest) ([]models.Listing, orm.Pagination, error) {
	q := r.DB(ctx).Model(&models.Listing{})
	if f.SchoolID != 0 {
		q = q.Where("school_id = ?", f.SchoolID)
	}
	if f.ShopID != 0 {
		q = q.Where("shop_id = ?", f.ShopID)
	}
	if f.ProductTypeID != 0 {
		q = q.Where("product_type_id = ?", f.ProductTypeID)
	}
	if f.SellerID != 0 {
		q = q.Where("seller_id = ?", f.SellerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.MinPrice != nil {
		q = q.Where("price_cents >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price_cents <= ?", *f.MaxPrice)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := orm.Like(strings.ToLower(s))
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var out []models.Listing
	p, err := orm.Paginate(q.Preload("AttributeValues").Preload("Images").Order("created_at desc, id desc"), page, &out)
	return out, p, err
}

// Load returns a listing with its attribute values and images.
func (r *ListingRepository) Load(ctx context.Context, id uint) (*models.Listing, error) {
	var l models.Listing
	err := r.DB(ctx).
		Preload("AttributeValues").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		First(&l, id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// SaveWithRelations writes the listing row, replaces its attribute values
// and images in one transaction.
func (r *ListingRepository) SaveWithRelations(ctx context.Context, l *models.Listing, values []models.AttributeValue, fileIDs []uint) error {
	return orm.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Omit("AttributeValues", "Images").Save(l).Error; err != nil {
			return err
		}
		if values != nil {
			if err := tx.Model(l).Association("AttributeValues").Replace(values); err != nil {
				return err
			}
			l.AttributeValues = values
		}
		if fileIDs != nil {
			if err := tx.Where("listing_id = ?", l.ID).Delete(&models.ListingImage{}).Error; err != nil {
				return err
			}
			images := make([]models.ListingImage, 0, len(fileIDs))
			for i, id := range fileIDs {
				images = append(images, models.ListingImage{ListingID: l.ID, FileID: id, Position: i})
			}
			if len(images) > 0 {
				if err := tx.Create(&images).Error; err != nil {
					return err
				}
			}
			l.Images = images
		}
		return nil
	})
}

// Remove deletes a listing with its images and attribute links.
func (r *ListingRepository) Remove(ctx context.Context, l *models.Listing) error {
	return orm.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Model(l).Association("AttributeValues").Clear(); err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", l.ID).Delete(&models.ListingImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Listing{}, l.ID).Error
	})
}
