package migrations

import (
	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/pkg/migration"
)

func init() {
	migration.Register("2026_01_05_000001_create_shops_table", create(&models.Shop{}))

	listings := create(&models.Listing{}, &models.ListingImage{})
	listings.extra = []string{"listing_attribute_values"}
	migration.Register("2026_01_05_000002_create_listings_tables", listings)

	migration.Register("2026_01_05_000003_create_transactions_tables",
		create(&models.Transaction{}, &models.TransactionMessage{}))
}
