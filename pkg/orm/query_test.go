package orm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type row struct {
	ID   uint
	Kind string
}

func testDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&row{}))
	return db
}

func TestParsePageClamps(t *testing.T) {
	assert.Equal(t, PageRequest{Page: 1, PerPage: DefaultPerPage}, ParsePage("", "x"))
	assert.Equal(t, PageRequest{Page: 3, PerPage: MaxPerPage}, ParsePage("3", "1000"))
	assert.Equal(t, 40, NewPageRequest(3, 20).Offset())
}

func TestPaginate(t *testing.T) {
	db := testDB(t)
	for i := 0; i < 7; i++ {
		kind := "a"
		if i%2 == 1 {
			kind = "b"
		}
		require.NoError(t, db.Create(&row{Kind: kind}).Error)
	}

	var out []row
	p, err := Paginate(db.Model(&row{}).Where("kind = ?", "a").Order("id"), NewPageRequest(2, 3), &out)
	require.NoError(t, err)

	assert.Equal(t, int64(4), p.Total)
	assert.Equal(t, 2, p.LastPage)
	assert.Len(t, out, 1)
}

func TestTransactionRollsBack(t *testing.T) {
	db := testDB(t)
	err := Transaction(context.Background(), db, func(tx *gorm.DB) error {
		require.NoError(t, tx.Create(&row{Kind: "tmp"}).Error)
		return errors.New("abort")
	})
	assert.Error(t, err)

	var n int64
	db.Model(&row{}).Count(&n)
	assert.Zero(t, n)
}
