package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	Web     WebConfig     `toml:"web"`
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`

	// Optional JSON document used instead of the built-in seed on first boot.
	SeedPath string `toml:"seed_path"`
}

type WebConfig struct {
	Host         string `toml:"host"`
	Port         string `toml:"port"`
	TemplatesDir string `toml:"templates_dir"`
}

type StorageConfig struct {
	Driver string `toml:"driver"` // sqlite, redis, s3 or memory
	Key    string `toml:"key"`

	SQLitePath string `toml:"sqlite_path"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	S3Bucket    string `toml:"s3_bucket"`
	S3Region    string `toml:"s3_region"`
	S3Endpoint  string `toml:"s3_endpoint"`
	S3PathStyle bool   `toml:"s3_path_style"`
	S3Prefix    string `toml:"s3_prefix"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func defaults() *Config {
	return &Config{
		Web: WebConfig{Host: "0.0.0.0", Port: "8080", TemplatesDir: "./internal/web/templates"},
		Storage: StorageConfig{
			Driver:     "sqlite",
			Key:        "network-asset-manager-data-v7",
			SQLitePath: "/tmp/portmap.db",
			RedisAddr:  "localhost:6379",
			S3Region:   "us-east-1",
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// getEnv fetches environment variable or returns fallback
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load builds the configuration from defaults, then the TOML file named by
// CONFIG_FILE (if any), then environment variables (.env included).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	cfg.Web.Host = getEnv("WEB_HOST", cfg.Web.Host)
	cfg.Web.Port = getEnv("WEB_PORT", cfg.Web.Port)
	cfg.Web.TemplatesDir = getEnv("TEMPLATES_DIR", cfg.Web.TemplatesDir)

	s := &cfg.Storage
	s.Driver = getEnv("STORAGE_DRIVER", s.Driver)
	s.Key = getEnv("STORAGE_KEY", s.Key)
	s.SQLitePath = getEnv("DB_PATH", s.SQLitePath)
	s.RedisAddr = getEnv("REDIS_ADDR", s.RedisAddr)
	s.RedisPassword = getEnv("REDIS_PASSWORD", s.RedisPassword)
	s.S3Bucket = getEnv("S3_BUCKET", s.S3Bucket)
	s.S3Region = getEnv("S3_REGION", s.S3Region)
	s.S3Endpoint = getEnv("S3_ENDPOINT", s.S3Endpoint)
	s.S3Prefix = getEnv("S3_PREFIX", s.S3Prefix)

	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("REDIS_DB: %w", err)
		}
		s.RedisDB = n
	}
	if v := os.Getenv("S3_PATH_STYLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("S3_PATH_STYLE: %w", err)
		}
		s.S3PathStyle = b
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
	cfg.SeedPath = getEnv("SEED_PATH", cfg.SeedPath)
	return cfg, nil
}

// Addr is the listen address of the web server.
func (c *Config) Addr() string {
	return c.Web.Host + ":" + c.Web.Port
}
