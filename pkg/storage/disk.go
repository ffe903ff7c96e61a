// Package storage implements the file backends a StorageProvider row can
// point at: a local directory or an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// ErrNotFound is returned by Open for keys that do not exist.
var ErrNotFound = errors.New("storage: object not found")

// Disk is one configured backend.
type Disk interface {
	// Put stores r under key. size may be -1 when unknown.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes key; a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) bool
	URL(key string) string
}

// ProviderConfig is the JSON stored on a StorageProvider row. Local disks
// use Root and BaseURL; S3 disks use the rest.
type ProviderConfig struct {
	Root      string `json:"root,omitempty"`
	BaseURL   string `json:"baseUrl,omitempty"`
	Bucket    string `json:"bucket,omitempty"`
	Region    string `json:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
	AccessKey string `json:"accessKey,omitempty"`
	SecretKey string `json:"secretKey,omitempty"`
	PublicURL string `json:"publicUrl,omitempty"`
}

// Validate returns per-field errors for driver, keyed like the JSON
// fields under "config.".
func (c ProviderConfig) Validate(driver string) map[string]string {
	errs := map[string]string{}
	need := func(field, v string) {
		if strings.TrimSpace(v) == "" {
			errs["config."+field] = fmt.Sprintf("The %s field is required for the %s driver.", field, driver)
		}
	}
	switch driver {
	case DriverLocal:
		need("root", c.Root)
		need("baseUrl", c.BaseURL)
	case DriverS3:
		need("bucket", c.Bucket)
		need("region", c.Region)
		if (c.AccessKey == "") != (c.SecretKey == "") {
			errs["config.secretKey"] = "accessKey and secretKey must be given together."
		}
	default:
		errs["driver"] = "The selected driver is invalid."
	}
	return errs
}

// New builds the disk for driver.
func New(ctx context.Context, driver string, cfg ProviderConfig) (Disk, error) {
	switch driver {
	case DriverLocal:
		return NewLocal(cfg.Root, cfg.BaseURL)
	case DriverS3:
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", driver)
	}
}

// cleanKey normalises an object key and rejects traversal.
func cleanKey(key string) (string, error) {
	raw := strings.ReplaceAll(key, "\\", "/")
	for _, seg := range strings.Split(raw, "/") {
		if seg == ".." {
			return "", fmt.Errorf("storage: invalid key %q", key)
		}
	}
	k := strings.TrimPrefix(path.Clean("/"+raw), "/")
	if k == "" || k == "." {
		return "", fmt.Errorf("storage: invalid key %q", key)
	}
	return k, nil
}
