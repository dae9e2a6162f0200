// Package config loads the client configuration: a YAML file, then YAPS_*
// environment overrides, then validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"yaps/pkg/fixtures"
)

// ConfigPath is read when no --config flag is given. A missing file at the
// default path is not an error.
const ConfigPath = "yaps.yaml"

const (
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"

	SourceEmbedded = "embedded"
	SourceDir      = "dir"
	SourceMinio    = "minio"
)

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	LogLevel      string        `yaml:"logLevel"`
	LogFormat     string        `yaml:"logFormat"`
	Backend       string        `yaml:"backend"`
	DataPath      string        `yaml:"dataPath"`
	RedisAddr     string        `yaml:"redisAddr"`
	RedisPassword string        `yaml:"redisPassword"`
	RedisPrefix   string        `yaml:"redisPrefix"`
	RedisTimeout  string        `yaml:"redisTimeout"`
	DatabaseURL   string        `yaml:"databaseURL"`
	Fixtures      FixtureConfig `yaml:"fixtures"`
}

// FixtureConfig selects where a fresh store is seeded from.
type FixtureConfig struct {
	Source         string `yaml:"source"`
	Dir            string `yaml:"dir"`
	MinioEndpoint  string `yaml:"minioEndpoint"`
	MinioAccessKey string `yaml:"minioAccessKey"`
	MinioSecretKey string `yaml:"minioSecretKey"`
	MinioBucket    string `yaml:"minioBucket"`
	MinioPrefix    string `yaml:"minioPrefix"`
	MinioUseSSL    bool   `yaml:"minioUseSSL"`
}

// Default returns the settings used when nothing is configured.
func Default() FileConfig {
	return FileConfig{
		LogLevel:    "warn",
		LogFormat:   "json",
		Backend:     BackendSQLite,
		DataPath:    "yaps.db",
		RedisPrefix: "yaps:",
		Fixtures:    FixtureConfig{Source: SourceEmbedded},
	}
}

// Load reads config from path on top of Default. An empty path skips the
// file, and so does a missing file at ConfigPath.
func Load(path string) (FileConfig, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist) && path == ConfigPath:
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides cfg with YAPS_* environment variables.
func applyEnv(cfg *FileConfig) {
	if v := os.Getenv("YAPS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("YAPS_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("YAPS_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("YAPS_DATA_PATH"); v != "" {
		cfg.DataPath = v
	}
	if v := os.Getenv("YAPS_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("YAPS_REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("YAPS_REDIS_PREFIX"); v != "" {
		cfg.RedisPrefix = v
	}
	if v := os.Getenv("YAPS_REDIS_TIMEOUT"); v != "" {
		cfg.RedisTimeout = v
	}
	if v := os.Getenv("YAPS_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("YAPS_FIXTURES_SOURCE"); v != "" {
		cfg.Fixtures.Source = v
	}
	if v := os.Getenv("YAPS_FIXTURES_DIR"); v != "" {
		cfg.Fixtures.Dir = v
	}
	if v := os.Getenv("YAPS_MINIO_ENDPOINT"); v != "" {
		cfg.Fixtures.MinioEndpoint = v
	}
	if v := os.Getenv("YAPS_MINIO_ACCESS_KEY"); v != "" {
		cfg.Fixtures.MinioAccessKey = v
	}
	if v := os.Getenv("YAPS_MINIO_SECRET_KEY"); v != "" {
		cfg.Fixtures.MinioSecretKey = v
	}
	if v := os.Getenv("YAPS_MINIO_BUCKET"); v != "" {
		cfg.Fixtures.MinioBucket = v
	}
	if v := os.Getenv("YAPS_MINIO_PREFIX"); v != "" {
		cfg.Fixtures.MinioPrefix = v
	}
	if v := os.Getenv("YAPS_MINIO_USE_SSL"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Fixtures.MinioUseSSL = enabled
		}
	}
}

func validateConfig(cfg FileConfig) error {
	switch cfg.Backend {
	case BackendSQLite:
		if strings.TrimSpace(cfg.DataPath) == "" {
			return errors.New("config: dataPath is required for the sqlite backend (set in config or YAPS_DATA_PATH)")
		}
	case BackendMemory:
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return errors.New("config: redisAddr is required for the redis backend (set in config or YAPS_REDIS_ADDR)")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return errors.New("config: databaseURL is required for the postgres backend (set in config or YAPS_DATABASE_URL)")
		}
	default:
		return fmt.Errorf("config: unknown backend %q (want sqlite, memory, redis or postgres)", cfg.Backend)
	}
	if _, err := ParseRedisTimeout(cfg.RedisTimeout); err != nil {
		return err
	}
	switch cfg.Fixtures.Source {
	case SourceEmbedded:
	case SourceDir:
		if strings.TrimSpace(cfg.Fixtures.Dir) == "" {
			return errors.New("config: fixtures.dir is required when fixtures.source=dir")
		}
	case SourceMinio:
		if cfg.Fixtures.MinioEndpoint == "" || cfg.Fixtures.MinioBucket == "" {
			return errors.New("config: fixtures.minioEndpoint and fixtures.minioBucket are required when fixtures.source=minio")
		}
	default:
		return fmt.Errorf("config: unknown fixtures.source %q (want embedded, dir or minio)", cfg.Fixtures.Source)
	}
	return nil
}

// ParseRedisTimeout parses the optional per-call redis timeout.
func ParseRedisTimeout(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid redisTimeout duration: %w", err)
	}
	if dur < 0 {
		return 0, errors.New("config: redisTimeout must be >= 0")
	}
	return dur, nil
}

// FixtureSource builds the configured seed source.
func (c FileConfig) FixtureSource() (fixtures.Source, error) {
	switch c.Fixtures.Source {
	case SourceDir:
		return fixtures.Dir(c.Fixtures.Dir), nil
	case SourceMinio:
		src, err := fixtures.NewMinioSource(fixtures.MinioConfig{
			Endpoint:  c.Fixtures.MinioEndpoint,
			AccessKey: c.Fixtures.MinioAccessKey,
			SecretKey: c.Fixtures.MinioSecretKey,
			Bucket:    c.Fixtures.MinioBucket,
			Prefix:    c.Fixtures.MinioPrefix,
			UseSSL:    c.Fixtures.MinioUseSSL,
		})
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return fixtures.Embedded(), nil
	}
}
