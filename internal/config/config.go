package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the complete service configuration.
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Redis         RedisConfig         `toml:"redis"`
	Minio         MinioConfig         `toml:"minio"`
	Notifications NotificationsConfig `toml:"notifications"`
}

type ServerConfig struct {
	Port      int    `toml:"port"`
	JWTSecret string `toml:"jwt_secret"`
}

type DatabaseConfig struct {
	URL string `toml:"url"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type MinioConfig struct {
	Endpoint      string `toml:"endpoint"`
	AccessKey     string `toml:"access_key"`
	SecretKey     string `toml:"secret_key"`
	UseSSL        bool   `toml:"use_ssl"`
	ReceiptBucket string `toml:"receipt_bucket"`
}

type NotificationsConfig struct {
	// SubjectPrefix is prepended to every notification subject line. The
	// notification service falls back to its built-in default when empty.
	SubjectPrefix string `toml:"subject_prefix"`
}

// Load reads configuration from a TOML file, then applies environment
// overrides and defaults.
func Load(filename string) (*Config, error) {
	cfg := &Config{}
	if filename != "" {
		if _, err := toml.DecodeFile(filename, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Server.JWTSecret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		c.Minio.Endpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		c.Minio.AccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		c.Minio.SecretKey = v
	}
	if os.Getenv("MINIO_USE_SSL") == "true" {
		c.Minio.UseSSL = true
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Minio.Endpoint == "" {
		c.Minio.Endpoint = "localhost:9000"
	}
	if c.Minio.AccessKey == "" {
		c.Minio.AccessKey = "minioadmin"
	}
	if c.Minio.SecretKey == "" {
		c.Minio.SecretKey = "minioadmin"
	}
	if c.Minio.ReceiptBucket == "" {
		c.Minio.ReceiptBucket = "receipts"
	}
}
