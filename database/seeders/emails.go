package seeders

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/app/services"
)

func init() { Register("email-templates", seedEmailTemplates) }

const footer = `<p style="color:#888;font-size:12px">UniformHub · school uniform, passed on.</p>`

var defaultFragments = []models.EmailFragment{
	{Name: "footer", Body: footer},
}

var defaultTemplates = []models.EmailTemplate{
	{
		Name:        services.GenericTemplate,
		Subject:     "{{.subject}}",
		Body:        `<p>Hi {{.name}},</p><p>{{.message}}</p>{{fragment "footer"}}`,
		Description: "Fallback for any template that does not exist.",
	},
	{
		Name:        "user-approved",
		Subject:     "Welcome to UniformHub",
		Body:        `<p>Hi {{.name}},</p><p>Your account has been approved. You can now sign in and start listing.</p>{{fragment "footer"}}`,
		Description: "Sent when an admin approves a pending signup.",
	},
	{
		Name:        "user-rejected",
		Subject:     "Your UniformHub account request",
		Body:        `<p>Hi {{.name}},</p><p>Unfortunately your account request was not approved.</p>{{fragment "footer"}}`,
		Description: "Sent when an admin rejects a pending signup.",
	},
}

// seedEmailTemplates creates missing rows by name and never overwrites
// edits made through the admin API.
func seedEmailTemplates(ctx context.Context, db *gorm.DB) error {
	tx := db.WithContext(ctx)
	for _, f := range defaultFragments {
		if err := tx.Where(models.EmailFragment{Name: f.Name}).FirstOrCreate(&f).Error; err != nil {
			return err
		}
	}
	for _, t := range defaultTemplates {
		if err := tx.Where(models.EmailTemplate{Name: t.Name}).FirstOrCreate(&t).Error; err != nil {
			return err
		}
	}
	return nil
}
