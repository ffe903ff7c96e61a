package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/app/repositories"
	"github.com/shashiranjanraj/uniformhub/pkg/auth"
	"github.com/shashiranjanraj/uniformhub/pkg/crypt"
	"github.com/shashiranjanraj/uniformhub/pkg/logger"
	"github.com/shashiranjanraj/uniformhub/pkg/metrics"
	"github.com/shashiranjanraj/uniformhub/pkg/orm"
	"github.com/shashiranjanraj/uniformhub/pkg/storage"
)

// MaxUploadSize caps a single upload at 10MB.
const MaxUploadSize = 10 << 20

type ProviderInput struct {
	Name   string                 `json:"name" validate:"required,min=2,max=120"`
	Driver string                 `json:"driver" validate:"required,in=local,s3"`
	Config storage.ProviderConfig `json:"config"`
}

// Upload describes one incoming file.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type StorageService struct {
	providers repositories.Repo[models.StorageProvider]
	files     repositories.Repo[models.FileRecord]
	db        *gorm.DB

	mu    sync.Mutex
	disks map[uint]cachedDisk
}

type cachedDisk struct {
	disk    storage.Disk
	version time.Time
}

func NewStorageService(db *gorm.DB) *StorageService {
	return &StorageService{
		providers: repositories.NewRepo[models.StorageProvider](db),
		files:     repositories.NewRepo[models.FileRecord](db),
		db:        db,
		disks:     map[uint]cachedDisk{},
	}
}

// ── Providers ────────────────────────────────────────────────────────────────

func (s *StorageService) Providers(ctx context.Context) ([]models.StorageProvider, error) {
	return s.providers.Where(ctx, "name asc", "")
}

func (s *StorageService) Provider(ctx context.Context, id uint) (*models.StorageProvider, error) {
	p, err := s.providers.Find(ctx, id)
	return p, notFound(err, "storage provider")
}

// ProviderConfig decodes p's config with the secret decrypted.
func (s *StorageService) ProviderConfig(p *models.StorageProvider) (storage.ProviderConfig, error) {
	var cfg storage.ProviderConfig
	if p.Config != "" {
		if err := json.Unmarshal([]byte(p.Config), &cfg); err != nil {
			return cfg, fmt.Errorf("provider %d config: %w", p.ID, err)
		}
	}
	secret, err := crypt.Decrypt(cfg.SecretKey)
	if err != nil {
		return cfg, fmt.Errorf("provider %d secret: %w", p.ID, err)
	}
	cfg.SecretKey = secret
	return cfg, nil
}

func (s *StorageService) CreateProvider(ctx context.Context, in ProviderInput) (*models.StorageProvider, error) {
	p := &models.StorageProvider{}
	if err := s.applyProvider(ctx, p, in, ""); err != nil {
		return nil, err
	}
	if err := s.providers.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProvider replaces the config. An empty secretKey keeps the stored one.
func (s *StorageService) UpdateProvider(ctx context.Context, id uint, in ProviderInput) (*models.StorageProvider, error) {
	p, err := s.Provider(ctx, id)
	if err != nil {
		return nil, err
	}
	old, err := s.ProviderConfig(p)
	if err != nil {
		return nil, err
	}
	if err := s.applyProvider(ctx, p, in, old.SecretKey); err != nil {
		return nil, err
	}
	if err := s.providers.Save(ctx, p); err != nil {
		return nil, err
	}
	s.forget(p.ID)
	return p, nil
}

func (s *StorageService) applyProvider(ctx context.Context, p *models.StorageProvider, in ProviderInput, oldSecret string) error {
	name := strings.TrimSpace(in.Name)
	taken, err := s.providers.Exists(ctx, "name = ? AND id <> ?", name, p.ID)
	if err != nil {
		return err
	}
	if taken {
		return conflictf("storage provider %s already exists", name)
	}

	cfg := in.Config
	if cfg.SecretKey == "" && in.Driver == storage.DriverS3 && cfg.AccessKey != "" {
		cfg.SecretKey = oldSecret
	}
	if errs := cfg.Validate(in.Driver); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	if in.Driver == storage.DriverLocal {
		cfg = storage.ProviderConfig{Root: cfg.Root, BaseURL: cfg.BaseURL}
	}
	enc, err := crypt.Encrypt(cfg.SecretKey)
	if err != nil {
		return err
	}
	cfg.SecretKey = enc
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	p.Name = name
	p.Driver = in.Driver
	p.Config = string(raw)
	return nil
}

func (s *StorageService) DeleteProvider(ctx context.Context, id uint) error {
	p, err := s.Provider(ctx, id)
	if err != nil {
		return err
	}
	if p.Active {
		return conflictf("storage provider %s is active", p.Name)
	}
	n, err := s.files.Count(ctx, "provider_id = ?", id)
	if err != nil {
		return err
	}
	if n > 0 {
		return conflictf("storage provider %s still holds %d files", p.Name, n)
	}
	s.forget(id)
	return notFound(s.providers.Delete(ctx, id), "storage provider")
}

// Activate makes id the only active provider.
func (s *StorageService) Activate(ctx context.Context, id uint) (*models.StorageProvider, error) {
	p, err := s.Provider(ctx, id)
	if err != nil {
		return nil, err
	}
	cfg, err := s.ProviderConfig(p)
	if err != nil {
		return nil, err
	}
	if _, err := storage.New(ctx, p.Driver, cfg); err != nil {
		return nil, invalid("config", "The provider could not be initialised: "+err.Error())
	}
	err = orm.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Model(&models.StorageProvider{}).Where("active = ?", true).Update("active", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.StorageProvider{}).Where("id = ?", id).Update("active", true).Error
	})
	if err != nil {
		return nil, err
	}
	p.Active = true
	logger.WithCtx(ctx).Info("storage provider activated", "provider", p.Name, "driver", p.Driver)
	return p, nil
}

// ActiveDisk returns the active provider and its disk, or ErrNoActiveDisk.
func (s *StorageService) ActiveDisk(ctx context.Context) (*models.StorageProvider, storage.Disk, error) {
	p, err := s.providers.FindBy(ctx, "active = ?", true)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrNoActiveDisk
	}
	if err != nil {
		return nil, nil, err
	}
	d, err := s.disk(ctx, p)
	return p, d, err
}

func (s *StorageService) disk(ctx context.Context, p *models.StorageProvider) (storage.Disk, error) {
	s.mu.Lock()
	c, ok := s.disks[p.ID]
	s.mu.Unlock()
	if ok && c.version.Equal(p.UpdatedAt) {
		return c.disk, nil
	}

	cfg, err := s.ProviderConfig(p)
	if err != nil {
		return nil, err
	}
	d, err := storage.New(ctx, p.Driver, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s disk: %w", p.Driver, err)
	}
	s.mu.Lock()
	s.disks[p.ID] = cachedDisk{disk: d, version: p.UpdatedAt}
	s.mu.Unlock()
	return d, nil
}

func (s *StorageService) forget(id uint) {
	s.mu.Lock()
	delete(s.disks, id)
	s.mu.Unlock()
}

// ── Files ────────────────────────────────────────────────────────────────────

// Upload stores the object on the active disk and records it.
func (s *StorageService) Upload(ctx context.Context, actor *auth.Principal, up Upload) (*models.FileRecord, error) {
	if up.Size <= 0 {
		return nil, invalid("file", "The file is empty.")
	}
	if up.Size > MaxUploadSize {
		return nil, invalid("file", "The file may not be greater than 10MB.")
	}
	p, d, err := s.ActiveDisk(ctx)
	if err != nil {
		return nil, err
	}

	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	now := time.Now().UTC()
	key := fmt.Sprintf("%04d/%02d/%s%s", now.Year(), int(now.Month()), uuid.NewString(), strings.ToLower(path.Ext(up.Name)))

	if err := d.Put(ctx, key, up.Body, up.Size, contentType); err != nil {
		metrics.Uploads.WithLabelValues(p.Driver, "error").Inc()
		return nil, fmt.Errorf("store %s: %w", key, err)
	}

	f := &models.FileRecord{
		Key:          key,
		OriginalName: path.Base(up.Name),
		MimeType:     contentType,
		Size:         up.Size,
		ProviderID:   p.ID,
		UploadedByID: actor.UserID,
		URL:          d.URL(key),
	}
	if err := s.files.Create(ctx, f); err != nil {
		if derr := d.Delete(ctx, key); derr != nil {
			logger.WithCtx(ctx).Warn("orphaned upload", "key", key, "error", derr)
		}
		metrics.Uploads.WithLabelValues(p.Driver, "error").Inc()
		return nil, err
	}
	metrics.Uploads.WithLabelValues(p.Driver, "ok").Inc()
	return f, nil
}

func (s *StorageService) GetFile(ctx context.Context, id uint) (*models.FileRecord, error) {
	f, err := s.files.Find(ctx, id)
	return f, notFound(err, "file")
}

// OpenFile streams a file from the provider that stored it.
func (s *StorageService) OpenFile(ctx context.Context, id uint) (*models.FileRecord, io.ReadCloser, error) {
	f, err := s.GetFile(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.Provider(ctx, f.ProviderID)
	if err != nil {
		return nil, nil, err
	}
	d, err := s.disk(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	rc, err := d.Open(ctx, f.Key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("file %d content: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, nil, err
	}
	return f, rc, nil
}

// DeleteFile removes the object and its record. Images and logos pointing
// at it are detached.
func (s *StorageService) DeleteFile(ctx context.Context, actor *auth.Principal, id uint) error {
	f, err := s.GetFile(ctx, id)
	if err != nil {
		return err
	}
	if f.UploadedByID != actor.UserID && !actor.Can(models.PermStorageManage) {
		return forbiddenf("file %d", id)
	}

	p, err := s.Provider(ctx, f.ProviderID)
	if err != nil {
		return err
	}
	d, err := s.disk(ctx, p)
	if err != nil {
		return err
	}
	if err := d.Delete(ctx, f.Key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("delete %s: %w", f.Key, err)
	}

	return orm.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Where("file_id = ?", id).Delete(&models.ListingImage{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Shop{}).Where("logo_file_id = ?", id).Update("logo_file_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.FileRecord{}, id).Error
	})
}
