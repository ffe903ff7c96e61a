package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/app/repositories"
	"github.com/shashiranjanraj/uniformhub/pkg/collection"
	"github.com/shashiranjanraj/uniformhub/pkg/logger"
	"github.com/shashiranjanraj/uniformhub/pkg/metrics"
	"github.com/shashiranjanraj/uniformhub/pkg/overpass"
)

// GeoSource is the subset of the Overpass client the importer needs.
type GeoSource interface {
	Counties(ctx context.Context, country string) ([]overpass.Element, error)
	Localities(ctx context.Context, countyOSMID int64) ([]overpass.Element, error)
	Schools(ctx context.Context, countyOSMID int64) ([]overpass.Element, error)
}

type ImportInput struct {
	Country     string `json:"country" validate:"required,min=2,max=2"`
	CountyOSMID int64  `json:"countyOsmId" validate:"required"`
}

type ImportResult struct {
	Counties   int `json:"counties"`
	Localities int `json:"localities"`
	Schools    int `json:"schools"`
}

type GeoImporter struct {
	source  GeoSource
	schools *repositories.SchoolRepository
}

func NewGeoImporter(db *gorm.DB, source GeoSource) *GeoImporter {
	return &GeoImporter{source: source, schools: repositories.NewSchoolRepository(db)}
}

// Import upserts the country's counties, then localities and schools for
// one county (countyOSMID != 0) or every county.
func (g *GeoImporter) Import(ctx context.Context, country string, countyOSMID int64) (ImportResult, error) {
	var res ImportResult
	country = strings.ToUpper(strings.TrimSpace(country))
	log := logger.WithCtx(ctx).With("country", country)

	els, err := g.source.Counties(ctx, country)
	if err != nil {
		return res, err
	}
	counties := collection.Map(
		collection.Filter(els, func(e overpass.Element) bool { return e.Name() != "" }),
		func(e overpass.Element) models.County {
			return models.County{Name: e.Name(), OSMID: e.ID, Country: country}
		},
	)
	if err := g.schools.UpsertCounties(ctx, counties); err != nil {
		return res, fmt.Errorf("upsert counties: %w", err)
	}
	res.Counties = len(counties)
	metrics.GeoImported.WithLabelValues("county").Add(float64(len(counties)))
	log.Info("geo import: counties", "count", len(counties))

	targets := counties
	if countyOSMID != 0 {
		targets = collection.Filter(counties, func(c models.County) bool { return c.OSMID == countyOSMID })
		if len(targets) == 0 {
			return res, fmt.Errorf("county %d in %s: %w", countyOSMID, country, ErrNotFound)
		}
	}

	for _, c := range targets {
		county, err := g.schools.CountyByOSM(ctx, c.OSMID)
		if err != nil {
			return res, err
		}
		nl, ns, err := g.importCounty(ctx, county)
		res.Localities += nl
		res.Schools += ns
		if err != nil {
			return res, fmt.Errorf("county %s: %w", county.Name, err)
		}
		log.Info("geo import: county done", "county", county.Name, "localities", nl, "schools", ns)
	}
	return res, nil
}

func (g *GeoImporter) importCounty(ctx context.Context, county *models.County) (int, int, error) {
	locEls, err := g.source.Localities(ctx, county.OSMID)
	if err != nil {
		return 0, 0, err
	}
	locs := collection.Map(
		collection.Filter(locEls, func(e overpass.Element) bool { return e.Name() != "" }),
		func(e overpass.Element) models.Locality {
			return models.Locality{Name: e.Name(), CountyID: county.ID, OSMID: e.ID, Place: e.Tags["place"]}
		},
	)
	if err := g.schools.UpsertLocalities(ctx, locs); err != nil {
		return 0, 0, fmt.Errorf("upsert localities: %w", err)
	}
	metrics.GeoImported.WithLabelValues("locality").Add(float64(len(locs)))

	idsByOSM, err := g.schools.LocalitiesByOSM(ctx, county.ID)
	if err != nil {
		return len(locs), 0, err
	}
	byName := make(map[string]uint, len(locs))
	for _, l := range locs {
		byName[strings.ToLower(l.Name)] = idsByOSM[l.OSMID]
	}

	schoolEls, err := g.source.Schools(ctx, county.OSMID)
	if err != nil {
		return len(locs), 0, err
	}
	schools := collection.Map(
		collection.Filter(schoolEls, func(e overpass.Element) bool { return e.Name() != "" }),
		func(e overpass.Element) models.School {
			key := schoolOSMKey(e)
			sc := models.School{
				Name:     e.Name(),
				CountyID: county.ID,
				OSMID:    &key,
				Address:  e.Address(),
				Website:  e.Website(),
			}
			if id, ok := byName[strings.ToLower(strings.TrimSpace(e.Tags["addr:city"]))]; ok && id != 0 {
				sc.LocalityID = &id
			}
			return sc
		},
	)
	if err := g.schools.UpsertSchools(ctx, schools); err != nil {
		return len(locs), 0, fmt.Errorf("upsert schools: %w", err)
	}
	metrics.GeoImported.WithLabelValues("school").Add(float64(len(schools)))
	return len(locs), len(schools), nil
}

// schoolOSMKey folds the element type into the id: schools come back as
// nodes, ways and relations whose numeric ids overlap.
func schoolOSMKey(e overpass.Element) int64 {
	switch e.Type {
	case "way":
		return e.ID*10 + 2
	case "relation":
		return e.ID*10 + 3
	default:
		return e.ID*10 + 1
	}
}
