package migrations

import (
	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/pkg/migration"
)

func init() {
	migration.Register("2026_01_04_000001_create_storage_tables",
		create(&models.StorageProvider{}, &models.FileRecord{}))
}
