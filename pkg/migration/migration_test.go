package migration

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID   uint
	Name string
}

type createWidgets struct{}

func (createWidgets) Up(db *gorm.DB) error   { return db.AutoMigrate(&widget{}) }
func (createWidgets) Down(db *gorm.DB) error { return db.Migrator().DropTable(&widget{}) }

func TestRunRollbackStatus(t *testing.T) {
	Register("9999_01_01_000000_create_widgets_test_table", createWidgets{})
	t.Cleanup(func() {
		regMu.Lock()
		delete(registry, "9999_01_01_000000_create_widgets_test_table")
		regMu.Unlock()
	})

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	var out bytes.Buffer
	r := New(db, &out)

	n, err := r.Run()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)
	assert.True(t, db.Migrator().HasTable(&widget{}))
	assert.Contains(t, out.String(), "Migrating: 9999_01_01_000000_create_widgets_test_table")

	n, err = r.Run()
	require.NoError(t, err)
	assert.Zero(t, n)

	st, err := r.Status()
	require.NoError(t, err)
	require.NotEmpty(t, st)
	last := st[len(st)-1]
	assert.True(t, last.Ran)
	assert.Equal(t, 1, last.Batch)

	_, err = r.Rollback()
	require.NoError(t, err)
	assert.False(t, db.Migrator().HasTable(&widget{}))
}

func TestDuplicateRegisterPanics(t *testing.T) {
	Register("9999_01_01_000001_dup", createWidgets{})
	t.Cleanup(func() {
		regMu.Lock()
		delete(registry, "9999_01_01_000001_dup")
		regMu.Unlock()
	})
	assert.Panics(t, func() { Register("9999_01_01_000001_dup", createWidgets{}) })
}
