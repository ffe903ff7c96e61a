// Package migrations holds the schema history. Each file registers its
// steps from init; cmd/uniformhub imports the package for the side effect.
package migrations

import "gorm.io/gorm"

// tables creates its models with AutoMigrate and drops them in reverse.
// Join tables gorm derives from many2many tags go in extra.
type tables struct {
	models []any
	extra  []string
}

func create(models ...any) tables { return tables{models: models} }

func (t tables) Up(db *gorm.DB) error {
	return db.AutoMigrate(t.models...)
}

func (t tables) Down(db *gorm.DB) error {
	m := db.Migrator()
	for _, name := range t.extra {
		if err := m.DropTable(name); err != nil {
			return err
		}
	}
	for i := len(t.models) - 1; i >= 0; i-- {
		if err := m.DropTable(t.models[i]); err != nil {
			return err
		}
	}
	return nil
}
