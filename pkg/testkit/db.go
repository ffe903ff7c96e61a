// Package testkit holds the shared test harness: a migrated in-memory
// database, an HTTP client that decodes the JSON envelope and a mock
// transport for outbound calls.
package testkit

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/uniformhub/pkg/database"
	"github.com/shashiranjanraj/uniformhub/pkg/migration"
)

var dsnName = strings.NewReplacer("/", "_", " ", "_", "#", "_", "?", "_", "&", "_")

// DB opens an in-memory sqlite database private to t and applies every
// registered migration. Callers blank-import database/migrations.
func DB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", dsnName.Replace(t.Name())))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// the shared-cache database lives as long as one connection does
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	_, err = migration.New(db, nil).Run()
	require.NoError(t, err)
	return db
}
