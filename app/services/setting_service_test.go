package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/uniformhub/app/models"
)

func TestRequireApprovalDefaultsOff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	on, err := f.svc.Settings.RequireApproval(ctx)
	require.NoError(t, err)
	assert.False(t, on)

	require.NoError(t, f.svc.Settings.SetRequireApproval(ctx, true))
	on, err = f.svc.Settings.RequireApproval(ctx)
	require.NoError(t, err)
	assert.True(t, on, "the cache is dropped on write")

	require.NoError(t, f.svc.Settings.SetRequireApproval(ctx, false))
	var rows []models.Setting
	require.NoError(t, f.db.Where(&models.Setting{Key: SettingRequireApproval}).Find(&rows).Error)
	require.Len(t, rows, 1, "upsert keeps one row per key")
	assert.Equal(t, "false", rows[0].Value)
}

func TestBrandingDefaultsAndUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.Settings.Branding(ctx)
	require.NoError(t, err)
	assert.Equal(t, "UniformHub", b.SiteName)
	assert.Nil(t, b.LogoFileID)

	_, err = f.svc.Settings.UpdateBranding(ctx, BrandingInput{LogoFileID: ptr(uint(404))})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	u := f.user(t, "brand", models.RoleAdmin)
	file := &models.FileRecord{Key: "logo.png", Size: 3, ProviderID: 1, UploadedByID: u.UserID}
	require.NoError(t, f.db.Create(file).Error)

	b, err = f.svc.Settings.UpdateBranding(ctx, BrandingInput{
		SiteName:     ptr(" St Anne's Swap "),
		PrimaryColor: ptr("#FF0000"),
		LogoFileID:   &file.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "St Anne's Swap", b.SiteName)
	assert.Equal(t, "#ff0000", b.PrimaryColor)
	require.NotNil(t, b.LogoFileID)
	assert.Equal(t, file.ID, *b.LogoFileID)

	b, err = f.svc.Settings.UpdateBranding(ctx, BrandingInput{ClearLogo: true})
	require.NoError(t, err)
	assert.Nil(t, b.LogoFileID)
	assert.Equal(t, "St Anne's Swap", b.SiteName)
}
