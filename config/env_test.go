package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nDB_DRIVER=postgres\nmail_host = 'smtp.local'\nbroken\n"), 0o644))

	out := defaultValues()
	require.NoError(t, mergeDotEnv(path, out))

	assert.Equal(t, "postgres", out["DB_DRIVER"])
	assert.Equal(t, "smtp.local", out["MAIL_HOST"])
	_, ok := out["BROKEN"]
	assert.False(t, ok)
}

func TestMergeJSONConfigSkipsNonStrings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"app_port":"9000","debug":true}`), 0o644))

	out := defaultValues()
	require.NoError(t, mergeJSONConfig(path, out))

	assert.Equal(t, "9000", out["APP_PORT"])
	_, ok := out["DEBUG"]
	assert.False(t, ok)
}

func TestIsAppKey(t *testing.T) {
	assert.True(t, isAppKey("MAIL_HOST"))
	assert.True(t, isAppKey("ADMIN_EMAIL"))
	assert.False(t, isAppKey("HOME"))
}

func TestSetAndTypedAccessors(t *testing.T) {
	Set("ADMIN_EMAIL", "Boss@Example.com")
	Set("SESSION_TTL", "2h")
	t.Cleanup(func() {
		Set("ADMIN_EMAIL", "")
		Set("SESSION_TTL", "")
	})

	assert.Equal(t, "boss@example.com", AdminEmail())
	assert.Equal(t, 2*time.Hour, SessionTTL())

	Set("SESSION_TTL", "nonsense")
	assert.Equal(t, defaultSessionTTL, SessionTTL())
}

func TestBackgroundWorkDefaults(t *testing.T) {
	Set("QUEUE_WORKERS", "0")
	Set("EMAIL_LOG_RETENTION", "48h")
	t.Cleanup(func() {
		Set("QUEUE_WORKERS", "")
		Set("EMAIL_LOG_RETENTION", "")
	})

	assert.Equal(t, defaultQueueWorkers, QueueWorkers())
	assert.Equal(t, 48*time.Hour, EmailLogRetention())
}
