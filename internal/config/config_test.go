package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospitalcore/internal/blob"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.StorageDriver)
	assert.Equal(t, "hospitalcore.db", cfg.SQLitePath)
	assert.Equal(t, 30*time.Minute, cfg.SchedulerSlot)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, blob.Config{Driver: blob.DriverFilesystem, FSRoot: "./archive", S3: blob.S3Config{Region: "us-east-1"}}, cfg.Blob())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("HOSPITAL_ENV", "production")
	t.Setenv("HOSPITAL_STORAGE_DRIVER", "postgres")
	t.Setenv("HOSPITAL_POSTGRES_DSN", "postgres://hospital@localhost/hospital")
	t.Setenv("HOSPITAL_BLOB_DRIVER", "s3")
	t.Setenv("HOSPITAL_BLOB_S3_BUCKET", "snapshots")
	t.Setenv("HOSPITAL_BLOB_S3_PATH_STYLE", "true")
	t.Setenv("HOSPITAL_SCHEDULER_SLOT", "45m")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, "postgres://hospital@localhost/hospital", cfg.PostgresDSN)
	assert.Equal(t, 45*time.Minute, cfg.SchedulerSlot)
	b := cfg.Blob()
	assert.Equal(t, blob.DriverS3, b.Driver)
	assert.Equal(t, "snapshots", b.S3.Bucket)
	assert.True(t, b.S3.PathStyle)
}

func TestLoadFileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hospital.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage_driver: memory\nlog_level: debug\nblob_fs_root: /srv/archive\n"), 0o600))
	t.Setenv("HOSPITAL_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "/srv/archive", cfg.BlobFSRoot)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	t.Setenv("HOSPITAL_STORAGE_DRIVER", "postgres")
	t.Setenv("HOSPITAL_BLOB_DRIVER", "ftp")
	t.Setenv("HOSPITAL_LOG_LEVEL", "loud")

	_, err := Load("")
	require.Error(t, err)
	assert.ErrorContains(t, err, "postgres_dsn is required")
	assert.ErrorContains(t, err, `unknown blob_driver "ftp"`)
	assert.ErrorContains(t, err, "log_level")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorContains(t, err, "read config")
}
