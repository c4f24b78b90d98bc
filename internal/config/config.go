package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port         int           `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"readTimeout"`
		WriteTimeout time.Duration `yaml:"writeTimeout"`
		IdleTimeout  time.Duration `yaml:"idleTimeout"`
	} `yaml:"server"`

	// Storage holds the raw uploads and, with the blob records driver,
	// the analysis documents.
	Storage struct {
		Driver      string `yaml:"driver"` // local | minio | memory
		UploadDir   string `yaml:"uploadDir"`
		AnalysisDir string `yaml:"analysisDir"`
	} `yaml:"storage"`

	Records struct {
		Driver     string `yaml:"driver"` // blob | mysql | postgres | sqlite
		SQLitePath string `yaml:"sqlitePath"`
	} `yaml:"records"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Limits struct {
		MaxUploadMB       int `yaml:"maxUploadMB"` // 0 disables the cap
		RateLimitCapacity int `yaml:"rateLimitCapacity"`
		RateLimitRefill   int `yaml:"rateLimitRefill"` // tokens per second
	} `yaml:"limits"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"cors"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	var c Config
	c.Server.Port = 8080
	c.Server.ReadTimeout = 15 * time.Second
	c.Server.WriteTimeout = 15 * time.Second
	c.Server.IdleTimeout = 60 * time.Second
	c.Storage.Driver = "local"
	c.Storage.UploadDir = "/tmp/audible_uploads"
	c.Storage.AnalysisDir = "/tmp/audible_analysis"
	c.Records.Driver = "blob"
	c.Records.SQLitePath = "data/booklens.db"
	c.Database.SSLMode = "disable"
	c.Minio.BucketName = "booklens"
	c.Limits.MaxUploadMB = 32
	c.Limits.RateLimitCapacity = 20
	c.Limits.RateLimitRefill = 1
	c.CORS.AllowedOrigins = []string{"*"}
	return &c
}

// Load baca .env (kalau ada), lalu file config.yaml di atas default,
// lalu override dari environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Printf("config file %s not found, using defaults", path)
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	setString("BOOKLENS_STORAGE_DRIVER", &c.Storage.Driver)
	setString("BOOKLENS_UPLOAD_DIR", &c.Storage.UploadDir)
	setString("BOOKLENS_ANALYSIS_DIR", &c.Storage.AnalysisDir)
	setString("BOOKLENS_RECORDS_DRIVER", &c.Records.Driver)
	setString("BOOKLENS_SQLITE_PATH", &c.Records.SQLitePath)
	if err := setInt("BOOKLENS_PORT", &c.Server.Port); err != nil {
		return err
	}
	return setInt("BOOKLENS_MAX_UPLOAD_MB", &c.Limits.MaxUploadMB)
}

// Validate checks driver names and required fields for the chosen drivers
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "local":
		if c.Storage.UploadDir == "" || c.Storage.AnalysisDir == "" {
			return fmt.Errorf("storage: uploadDir and analysisDir are required for the local driver")
		}
	case "minio":
		if c.Minio.Endpoint == "" || c.Minio.BucketName == "" {
			return fmt.Errorf("minio: endpoint and bucketName are required")
		}
	case "memory":
	default:
		return fmt.Errorf("storage: unknown driver %q", c.Storage.Driver)
	}

	switch c.Records.Driver {
	case "blob":
	case "sqlite":
		if c.Records.SQLitePath == "" {
			return fmt.Errorf("records: sqlitePath is required for the sqlite driver")
		}
	case "mysql", "postgres":
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("database: host and name are required for the %s driver", c.Records.Driver)
		}
	default:
		return fmt.Errorf("records: unknown driver %q", c.Records.Driver)
	}

	if c.Limits.MaxUploadMB < 0 {
		return fmt.Errorf("limits: maxUploadMB must not be negative")
	}
	return nil
}

// MaxUploadBytes is the request body cap, 0 when uncapped
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Limits.MaxUploadMB) << 20
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// Helper untuk build DSN Postgres
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
