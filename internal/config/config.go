// Package config loads hospitalcore settings from HOSPITAL_* environment
// variables and an optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"hospitalcore/internal/blob"
)

// EnvPrefix is prepended to every environment key, e.g. HOSPITAL_STORAGE_DRIVER.
const EnvPrefix = "HOSPITAL"

type Config struct {
	Env              string        `mapstructure:"env"`
	LogLevel         string        `mapstructure:"log_level"`
	StorageDriver    string        `mapstructure:"storage_driver"`
	SQLitePath       string        `mapstructure:"sqlite_path"`
	PostgresDSN      string        `mapstructure:"postgres_dsn"`
	BlobDriver       string        `mapstructure:"blob_driver"`
	BlobFSRoot       string        `mapstructure:"blob_fs_root"`
	BlobS3Bucket     string        `mapstructure:"blob_s3_bucket"`
	BlobS3Region     string        `mapstructure:"blob_s3_region"`
	BlobS3Endpoint   string        `mapstructure:"blob_s3_endpoint"`
	BlobS3PathStyle  bool          `mapstructure:"blob_s3_path_style"`
	MetricsNamespace string        `mapstructure:"metrics_namespace"`
	SchedulerSlot    time.Duration `mapstructure:"scheduler_slot"`
}

var defaults = map[string]any{
	"env":                "development",
	"log_level":          "info",
	"storage_driver":     "sqlite",
	"sqlite_path":        "hospitalcore.db",
	"postgres_dsn":       "",
	"blob_driver":        "fs",
	"blob_fs_root":       "./archive",
	"blob_s3_bucket":     "",
	"blob_s3_region":     "us-east-1",
	"blob_s3_endpoint":   "",
	"blob_s3_path_style": false,
	"metrics_namespace":  "hospitalcore",
	"scheduler_slot":     "30m",
}

// Load reads defaults, then the file at path when non-empty, then the
// environment. Later sources win.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.StorageDriver {
	case "memory", "sqlite":
	case "postgres":
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("postgres_dsn is required when storage_driver is postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage_driver %q", c.StorageDriver))
	}
	switch blob.Driver(c.BlobDriver) {
	case blob.DriverFilesystem, blob.DriverMemory:
	case blob.DriverS3:
		if c.BlobS3Bucket == "" {
			errs = append(errs, errors.New("blob_s3_bucket is required when blob_driver is s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown blob_driver %q", c.BlobDriver))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.SchedulerSlot <= 0 {
		errs = append(errs, fmt.Errorf("scheduler_slot must be positive, got %s", c.SchedulerSlot))
	}
	return errors.Join(errs...)
}

// IsDev reports whether the process runs in the development environment,
// which switches logging to the console writer.
func (c *Config) IsDev() bool { return c.Env == "development" }

// Blob maps the archive settings onto a blob.Config.
func (c *Config) Blob() blob.Config {
	return blob.Config{
		Driver: blob.Driver(c.BlobDriver),
		FSRoot: c.BlobFSRoot,
		S3: blob.S3Config{
			Bucket:    c.BlobS3Bucket,
			Region:    c.BlobS3Region,
			Endpoint:  c.BlobS3Endpoint,
			PathStyle: c.BlobS3PathStyle,
		},
	}
}
