package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/app/repositories"
	"github.com/shashiranjanraj/uniformhub/pkg/orm"
)

type SchoolInput struct {
	Name       string `json:"name" validate:"required,max=255"`
	CountyID   uint   `json:"countyId" validate:"required"`
	LocalityID *uint  `json:"localityId"`
	Address    string `json:"address" validate:"max=500"`
	Website    string `json:"website" validate:"nullable,url,max=500"`
}

type SchoolService struct {
	schools  *repositories.SchoolRepository
	counties repositories.Repo[models.County]
	locs     repositories.Repo[models.Locality]
}

func NewSchoolService(db *gorm.DB) *SchoolService {
	return &SchoolService{
		schools:  repositories.NewSchoolRepository(db),
		counties: repositories.NewRepo[models.County](db),
		locs:     repositories.NewRepo[models.Locality](db),
	}
}

func (s *SchoolService) List(ctx context.Context, f repositories.SchoolFilter, page orm.PageRequest) ([]models.School, orm.Pagination, error) {
	return s.schools.List(ctx, f, page)
}

func (s *SchoolService) Get(ctx context.Context, id uint) (*models.School, error) {
	sc, err := s.schools.Find(ctx, id)
	return sc, notFound(err, "school")
}

func (s *SchoolService) Create(ctx context.Context, in SchoolInput) (*models.School, error) {
	sc := &models.School{}
	if err := s.apply(ctx, sc, in); err != nil {
		return nil, err
	}
	if err := s.schools.Create(ctx, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *SchoolService) Update(ctx context.Context, id uint, in SchoolInput) (*models.School, error) {
	sc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, sc, in); err != nil {
		return nil, err
	}
	if err := s.schools.Save(ctx, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *SchoolService) apply(ctx context.Context, sc *models.School, in SchoolInput) error {
	if ok, err := s.counties.Exists(ctx, "id = ?", in.CountyID); err != nil {
		return err
	} else if !ok {
		return invalid("countyId", "The selected county does not exist.")
	}
	if in.LocalityID != nil {
		loc, err := s.locs.Find(ctx, *in.LocalityID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid("localityId", "The selected locality does not exist.")
		}
		if err != nil {
			return err
		}
		if loc.CountyID != in.CountyID {
			return invalid("localityId", "The selected locality is not in the selected county.")
		}
	}
	sc.Name = strings.TrimSpace(in.Name)
	sc.CountyID = in.CountyID
	sc.LocalityID = in.LocalityID
	sc.Address = strings.TrimSpace(in.Address)
	sc.Website = strings.TrimSpace(in.Website)
	return nil
}

// Delete refuses while shops or listings point at the school.
func (s *SchoolService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	db := s.schools.DB(ctx)
	for _, m := range []any{&models.Shop{}, &models.Listing{}} {
		var n int64
		if err := db.Model(m).Where("school_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return conflictf("school %d is still referenced", id)
		}
	}
	return notFound(s.schools.Delete(ctx, id), "school")
}

func (s *SchoolService) Counties(ctx context.Context, search string) ([]models.County, error) {
	return s.schools.Counties(ctx, search)
}

func (s *SchoolService) Localities(ctx context.Context, countyID uint, search string) ([]models.Locality, error) {
	return s.schools.Localities(ctx, countyID, search)
}
