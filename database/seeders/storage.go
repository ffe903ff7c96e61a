package seeders

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/app/services"
	"github.com/shashiranjanraj/uniformhub/config"
	"github.com/shashiranjanraj/uniformhub/pkg/storage"
)

func init() { Register("storage", seedStorage) }

// seedStorage adds and activates a local disk when no provider exists.
func seedStorage(ctx context.Context, db *gorm.DB) error {
	var n int64
	if err := db.WithContext(ctx).Model(&models.StorageProvider{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	svc := services.NewStorageService(db)
	p, err := svc.CreateProvider(ctx, services.ProviderInput{
		Name:   "local",
		Driver: storage.DriverLocal,
		Config: storage.ProviderConfig{
			Root:    config.StorageLocalRoot(),
			BaseURL: config.StorageURL(),
		},
	})
	if err != nil {
		return err
	}
	_, err = svc.Activate(ctx, p.ID)
	return err
}
