package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/app/repositories"
	"github.com/shashiranjanraj/uniformhub/pkg/auth"
	"github.com/shashiranjanraj/uniformhub/pkg/orm"
)

type ShopInput struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Slug        string `json:"slug" validate:"nullable,slug,max=120"`
	Description string `json:"description" validate:"max=5000"`
	SchoolID    *uint  `json:"schoolId"`
	LogoFileID  *uint  `json:"logoFileId"`
}

type ShopFilter struct {
	OwnerID  uint
	SchoolID uint
	Search   string
}

type ShopService struct {
	shops repositories.Repo[models.Shop]
}

func NewShopService(db *gorm.DB) *ShopService {
	return &ShopService{shops: repositories.NewRepo[models.Shop](db)}
}

func (s *ShopService) List(ctx context.Context, f ShopFilter, page orm.PageRequest) ([]models.Shop, orm.Pagination, error) {
	q := s.shops.DB(ctx).Model(&models.Shop{})
	if f.OwnerID != 0 {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if f.SchoolID != 0 {
		q = q.Where("school_id = ?", f.SchoolID)
	}
	if v := strings.TrimSpace(f.Search); v != "" {
		q = q.Where("LOWER(name) LIKE ?", orm.Like(strings.ToLower(v)))
	}
	var out []models.Shop
	p, err := orm.Paginate(q.Order("name asc"), page, &out)
	return out, p, err
}

func (s *ShopService) Get(ctx context.Context, id uint) (*models.Shop, error) {
	sh, err := s.shops.Find(ctx, id)
	return sh, notFound(err, "shop")
}

func (s *ShopService) Create(ctx context.Context, actor *auth.Principal, in ShopInput) (*models.Shop, error) {
	sh := &models.Shop{OwnerID: actor.UserID}
	if err := s.apply(ctx, sh, in); err != nil {
		return nil, err
	}
	if err := s.shops.Create(ctx, sh); err != nil {
		return nil, err
	}
	return sh, nil
}

func (s *ShopService) Update(ctx context.Context, actor *auth.Principal, id uint, in ShopInput) (*models.Shop, error) {
	sh, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, sh, in); err != nil {
		return nil, err
	}
	if err := s.shops.Save(ctx, sh); err != nil {
		return nil, err
	}
	return sh, nil
}

func (s *ShopService) Delete(ctx context.Context, actor *auth.Principal, id uint) error {
	if _, err := s.editable(ctx, actor, id); err != nil {
		return err
	}
	var n int64
	if err := s.shops.DB(ctx).Model(&models.Listing{}).Where("shop_id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return conflictf("shop %d still has %d listings", id, n)
	}
	return notFound(s.shops.Delete(ctx, id), "shop")
}

// editable loads the shop if actor owns it or holds shops.manage.
func (s *ShopService) editable(ctx context.Context, actor *auth.Principal, id uint) (*models.Shop, error) {
	sh, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sh.OwnerID != actor.UserID && !actor.Can(models.PermShopsManage) {
		return nil, forbiddenf("shop %d belongs to another user", id)
	}
	return sh, nil
}

func (s *ShopService) apply(ctx context.Context, sh *models.Shop, in ShopInput) error {
	slug := slugOr(in.Slug, in.Name)
	if slug == "" {
		return invalid("slug", "A slug could not be derived from the name.")
	}
	taken, err := s.shops.Exists(ctx, "slug = ? AND id <> ?", slug, sh.ID)
	if err != nil {
		return err
	}
	if taken {
		return conflictf("shop slug %s already exists", slug)
	}
	db := s.shops.DB(ctx)
	if in.SchoolID != nil {
		if err := mustExist(db, &models.School{}, *in.SchoolID, "schoolId", "The selected school does not exist."); err != nil {
			return err
		}
	}
	if in.LogoFileID != nil {
		if err := mustExist(db, &models.FileRecord{}, *in.LogoFileID, "logoFileId", "The selected logo file does not exist."); err != nil {
			return err
		}
	}
	sh.Name = strings.TrimSpace(in.Name)
	sh.Slug = slug
	sh.Description = in.Description
	sh.SchoolID = in.SchoolID
	sh.LogoFileID = in.LogoFileID
	return nil
}

// mustExist returns a field validation error when no row of model has id.
func mustExist(db *gorm.DB, model any, id uint, field, msg string) error {
	var n int64
	if err := db.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return invalid(field, msg)
	}
	return nil
}
