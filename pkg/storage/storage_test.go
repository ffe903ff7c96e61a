package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDiskLifecycle(t *testing.T) {
	ctx := context.Background()
	d, err := NewLocal(t.TempDir(), "http://cdn.test/files/")
	require.NoError(t, err)

	require.NoError(t, d.Put(ctx, "2024/01/photo.jpg", strings.NewReader("jpeg-bytes"), 10, "image/jpeg"))
	assert.True(t, d.Exists(ctx, "2024/01/photo.jpg"))
	assert.Equal(t, "http://cdn.test/files/2024/01/photo.jpg", d.URL("2024/01/photo.jpg"))

	rc, err := d.Open(ctx, "2024/01/photo.jpg")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "jpeg-bytes", string(body))

	require.NoError(t, d.Delete(ctx, "2024/01/photo.jpg"))
	require.NoError(t, d.Delete(ctx, "2024/01/photo.jpg"))
	_, err = d.Open(ctx, "2024/01/photo.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalDiskRejectsTraversal(t *testing.T) {
	d, err := NewLocal(t.TempDir(), "")
	require.NoError(t, err)
	for _, key := range []string{"../../etc/passwd", "2024/../../escape.jpg", `..\win.jpg`, "", "/"} {
		err = d.Put(context.Background(), key, strings.NewReader("x"), 1, "")
		assert.Error(t, err, key)
	}
	require.NoError(t, d.Put(context.Background(), "/2024//./photo.jpg", strings.NewReader("x"), 1, ""))
	assert.True(t, d.Exists(context.Background(), "2024/photo.jpg"))
}

func TestProviderConfigValidate(t *testing.T) {
	assert.Empty(t, ProviderConfig{Root: "storage", BaseURL: "http://x"}.Validate(DriverLocal))
	assert.Contains(t, ProviderConfig{}.Validate(DriverLocal), "config.root")

	errs := ProviderConfig{Bucket: "b"}.Validate(DriverS3)
	assert.Contains(t, errs, "config.region")

	errs = ProviderConfig{Bucket: "b", Region: "eu-west-2", AccessKey: "AK"}.Validate(DriverS3)
	assert.Contains(t, errs, "config.secretKey")

	assert.Contains(t, ProviderConfig{}.Validate("ftp"), "driver")
}

func TestNewS3BuildsURLs(t *testing.T) {
	d, err := NewS3(context.Background(), ProviderConfig{
		Bucket: "uniforms", Region: "eu-west-2", Endpoint: "http://minio:9000",
		AccessKey: "k", SecretKey: "s",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/uniforms/a/b.png", d.URL("a/b.png"))

	d, err = NewS3(context.Background(), ProviderConfig{Bucket: "uniforms", Region: "eu-west-2", PublicURL: "https://cdn.test/"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/k", d.URL("k"))
}
