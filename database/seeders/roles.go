package seeders

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/uniformhub/app/services"
)

func init() { Register("roles", seedRoles) }

func seedRoles(ctx context.Context, db *gorm.DB) error {
	_, err := services.NewRoleService(db).Seed(ctx)
	return err
}
