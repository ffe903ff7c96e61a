package migrations

import (
	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/pkg/migration"
	"github.com/shashiranjanraj/uniformhub/pkg/queue"
)

func init() {
	migration.Register("2026_01_06_000001_create_email_tables",
		create(&models.EmailTemplate{}, &models.EmailFragment{}, &models.EmailLog{}))
	migration.Register("2026_01_06_000002_create_failed_jobs_table", create(&queue.FailedJobRecord{}))
}
