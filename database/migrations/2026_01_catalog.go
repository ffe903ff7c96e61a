package migrations

import (
	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/pkg/migration"
)

func init() {
	migration.Register("2026_01_03_000001_create_catalog_tables", create(
		&models.ProductCategory{}, &models.ProductType{},
		&models.Attribute{}, &models.AttributeValue{},
	))
}
