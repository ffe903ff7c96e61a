package presenters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/pkg/resource"
	"github.com/shashiranjanraj/uniformhub/pkg/storage"
)

func TestUserStatus(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	cases := map[string]models.User{
		"active":   {},
		"pending":  {Banned: true, BanReason: models.BanPendingApproval},
		"rejected": {Banned: true, BanReason: models.BanRejected},
		"banned":   {Banned: true, BanReason: "spam"},
	}
	for want, u := range cases {
		assert.Equal(t, want, UserStatus(u), want)
	}
	assert.Equal(t, "active", UserStatus(models.User{Banned: true, BanReason: "spam", BanExpires: &past}))
}

func TestUserOmitsPassword(t *testing.T) {
	m := User(models.User{ID: 3, Email: "a@b.co", Password: "hash"})
	assert.NotContains(t, m, "password")
	assert.Equal(t, "a@b.co", m["email"])
}

func TestProviderMasksSecret(t *testing.T) {
	m := Provider(models.StorageProvider{
		Driver: storage.DriverS3,
		Config: `{"bucket":"b","region":"eu-west-2","accessKey":"AK","secretKey":"enc:abc"}`,
	})
	cfg := m["config"].(storage.ProviderConfig)
	assert.Equal(t, "********", cfg.SecretKey)
	assert.Equal(t, "AK", cfg.AccessKey)
}

func TestListingNeverRendersNullLists(t *testing.T) {
	m := Listing(models.Listing{ID: 1})
	assert.Equal(t, []resource.Map{}, m["images"])
	assert.Equal(t, []resource.Map{}, m["attributeValues"])
}
