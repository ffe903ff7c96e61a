package repositories

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/pkg/orm"
)

type SchoolRepository struct {
	Repo[models.School]
}

func NewSchoolRepository(db *gorm.DB) *SchoolRepository {
	return &SchoolRepository{Repo: NewRepo[models.School](db)}
}

type SchoolFilter struct {
	CountyID   uint
	LocalityID uint
	Search     string
}

func (r *SchoolRepository) List(ctx context.Context, f SchoolFilter, page orm.PageRequest) ([]models.School, orm.Pagination, error) {
	q := r.DB(ctx).Model(&models.School{})
	if f.CountyID != 0 {
		q = q.Where("county_id = ?", f.CountyID)
	}
	if f.LocalityID != 0 {
		q = q.Where("locality_id = ?", f.LocalityID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q = q.Where("LOWER(name) LIKE ?", orm.Like(strings.ToLower(s)))
	}
	var out []models.School
	p, err := orm.Paginate(q.Order("name asc"), page, &out)
	return out, p, err
}

// UpsertCounties inserts or renames counties keyed by OSM id.
func (r *SchoolRepository) UpsertCounties(ctx context.Context, rows []models.County) error {
	if len(rows) == 0 {
		return nil
	}
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "osm_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "country", "updated_at"}),
	}).CreateInBatches(&rows, 200).Error
}

func (r *SchoolRepository) UpsertLocalities(ctx context.Context, rows []models.Locality) error {
	if len(rows) == 0 {
		return nil
	}
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "osm_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "county_id", "place", "updated_at"}),
	}).CreateInBatches(&rows, 200).Error
}

func (r *SchoolRepository) UpsertSchools(ctx context.Context, rows []models.School) error {
	if len(rows) == 0 {
		return nil
	}
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "osm_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "county_id", "locality_id", "address", "website", "updated_at"}),
	}).CreateInBatches(&rows, 200).Error
}

func (r *SchoolRepository) Counties(ctx context.Context, search string) ([]models.County, error) {
	q := r.DB(ctx).Order("name asc")
	if s := strings.TrimSpace(search); s != "" {
		q = q.Where("LOWER(name) LIKE ?", orm.Like(strings.ToLower(s)))
	}
	var out []models.County
	err := q.Find(&out).Error
	return out, err
}

func (r *SchoolRepository) Localities(ctx context.Context, countyID uint, search string) ([]models.Locality, error) {
	q := r.DB(ctx).Order("name asc")
	if countyID != 0 {
		q = q.Where("county_id = ?", countyID)
	}
	if s := strings.TrimSpace(search); s != "" {
		q = q.Where("LOWER(name) LIKE ?", orm.Like(strings.ToLower(s)))
	}
	var out []models.Locality
	err := q.Find(&out).Error
	return out, err
}

func (r *SchoolRepository) CountyByOSM(ctx context.Context, osmID int64) (*models.County, error) {
	var c models.County
	if err := r.DB(ctx).Where("osm_id = ?", osmID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// LocalitiesByOSM maps OSM id to row id for the county's localities.
func (r *SchoolRepository) LocalitiesByOSM(ctx context.Context, countyID uint) (map[int64]uint, error) {
	var rows []models.Locality
	if err := r.DB(ctx).Where("county_id = ?", countyID).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[int64]uint, len(rows))
	for _, l := range rows {
		out[l.OSMID] = l.ID
	}
	return out, nil
}
