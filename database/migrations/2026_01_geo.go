package migrations

import (
	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/pkg/migration"
)

func init() {
	migration.Register("2026_01_02_000001_create_geo_tables",
		create(&models.County{}, &models.Locality{}, &models.School{}))
}
