package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/pkg/cache"
)

const (
	SettingRequireApproval = "requireAdminApproval"

	settingSiteName     = "branding.siteName"
	settingPrimaryColor = "branding.primaryColor"
	settingLogoFileID   = "branding.logoFileId"
	settingSupportEmail = "branding.supportEmail"

	settingsCacheKey = "uniformhub:settings"
	settingsCacheTTL = 10 * time.Minute
)

type SettingService struct {
	db    *gorm.DB
	cache cache.Store
}

func NewSettingService(db *gorm.DB, store cache.Store) *SettingService {
	return &SettingService{db: db, cache: store}
}

func (s *SettingService) all(ctx context.Context) (map[string]string, error) {
	return cache.Remember(ctx, s.cache, settingsCacheKey, settingsCacheTTL, func() (map[string]string, error) {
		var rows []models.Setting
		if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make(map[string]string, len(rows))
		for _, r := range rows {
			out[r.Key] = r.Value
		}
		return out, nil
	})
}

// Get returns the stored value or fallback when the key is unset.
func (s *SettingService) Get(ctx context.Context, key, fallback string) (string, error) {
	all, err := s.all(ctx)
	if err != nil {
		return "", err
	}
	if v, ok := all[key]; ok {
		return v, nil
	}
	return fallback, nil
}

// SetMany upserts every pair in one transaction and drops the cache.
func (s *SettingService) SetMany(ctx context.Context, pairs map[string]string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for k, v := range pairs {
			row := models.Setting{Key: k, Value: v}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, settingsCacheKey)
	}
	return nil
}

func (s *SettingService) RequireApproval(ctx context.Context) (bool, error) {
	v, err := s.Get(ctx, SettingRequireApproval, "false")
	if err != nil {
		return false, err
	}
	on, _ := strconv.ParseBool(v)
	return on, nil
}

func (s *SettingService) SetRequireApproval(ctx context.Context, on bool) error {
	return s.SetMany(ctx, map[string]string{SettingRequireApproval: strconv.FormatBool(on)})
}

type Branding struct {
	SiteName     string `json:"siteName"`
	PrimaryColor string `json:"primaryColor"`
	LogoFileID   *uint  `json:"logoFileId"`
	SupportEmail string `json:"supportEmail"`
}

type BrandingInput struct {
	SiteName     *string `json:"siteName" validate:"nullable,min=1,max=120"`
	PrimaryColor *string `json:"primaryColor" validate:"nullable,hexcolor"`
	LogoFileID   *uint   `json:"logoFileId"`
	SupportEmail *string `json:"supportEmail" validate:"nullable,email"`
	// ClearLogo removes the logo; LogoFileID cannot express that alone.
	ClearLogo bool `json:"clearLogo"`
}

func (s *SettingService) Branding(ctx context.Context) (Branding, error) {
	all, err := s.all(ctx)
	if err != nil {
		return Branding{}, err
	}
	b := Branding{
		SiteName:     "UniformHub",
		PrimaryColor: "#1e3a8a",
		SupportEmail: all[settingSupportEmail],
	}
	if v := all[settingSiteName]; v != "" {
		b.SiteName = v
	}
	if v := all[settingPrimaryColor]; v != "" {
		b.PrimaryColor = v
	}
	if n, err := strconv.ParseUint(all[settingLogoFileID], 10, 64); err == nil && n > 0 {
		id := uint(n)
		b.LogoFileID = &id
	}
	return b, nil
}

func (s *SettingService) UpdateBranding(ctx context.Context, in BrandingInput) (Branding, error) {
	pairs := map[string]string{}
	if in.SiteName != nil {
		pairs[settingSiteName] = strings.TrimSpace(*in.SiteName)
	}
	if in.PrimaryColor != nil {
		pairs[settingPrimaryColor] = strings.ToLower(*in.PrimaryColor)
	}
	if in.SupportEmail != nil {
		pairs[settingSupportEmail] = strings.ToLower(strings.TrimSpace(*in.SupportEmail))
	}
	switch {
	case in.ClearLogo:
		pairs[settingLogoFileID] = ""
	case in.LogoFileID != nil:
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.FileRecord{}).Where("id = ?", *in.LogoFileID).Count(&n).Error; err != nil {
			return Branding{}, err
		}
		if n == 0 {
			return Branding{}, invalid("logoFileId", "The selected logo file does not exist.")
		}
		pairs[settingLogoFileID] = strconv.FormatUint(uint64(*in.LogoFileID), 10)
	}
	if len(pairs) > 0 {
		if err := s.SetMany(ctx, pairs); err != nil {
			return Branding{}, err
		}
	}
	return s.Branding(ctx)
}
