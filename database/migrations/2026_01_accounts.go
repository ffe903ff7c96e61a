package migrations

import (
	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/pkg/migration"
)

func init() {
	migration.Register("2026_01_01_000001_create_roles_table", create(&models.Role{}))
	migration.Register("2026_01_01_000002_create_users_table", create(&models.User{}))
	migration.Register("2026_01_01_000003_create_sessions_table", create(&models.Session{}))
	migration.Register("2026_01_01_000004_create_settings_table", create(&models.Setting{}))
}
