package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the photo service.
// It is loaded once at process start and never re-read.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"photo-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"PHOTO_API_PORT" envDefault:"8080"`
	LogLevel        string        `env:"PHOTO_LOG_LEVEL" envDefault:"info"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database (required, no default)
	DatabaseURL string `env:"DATABASE_URL,notEmpty"`

	// Database Connection Pool
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Storage Backend Selection. Options: "s3", "minio", "cloudinary", "local".
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"cloudinary"`

	// AWS S3 Configuration
	S3Region       string `env:"AWS_S3_REGION" envDefault:"us-east-1"`
	S3Bucket       string `env:"AWS_S3_BUCKET"`
	S3AccessKeyID  string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretKey    string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Endpoint     string `env:"AWS_S3_ENDPOINT"` // optional, for S3-compatible providers
	S3UsePathStyle bool   `env:"AWS_S3_USE_PATH_STYLE" envDefault:"false"`

	// MinIO Configuration
	MinioEndpoint      string `env:"MINIO_ENDPOINT"`
	MinioAccessKey     string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey     string `env:"MINIO_SECRET_KEY"`
	MinioBucket        string `env:"MINIO_BUCKET" envDefault:"wedding-photos"`
	MinioUseSSL        bool   `env:"MINIO_USE_SSL" envDefault:"true"`
	MinioPublicBaseURL string `env:"MINIO_PUBLIC_BASE_URL"` // e.g. CDN origin in front of the bucket

	// Cloudinary Configuration
	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`

	// Local Storage Configuration (development fallback)
	LocalStoragePath    string `env:"LOCAL_STORAGE_PATH"`
	LocalStorageBaseURL string `env:"LOCAL_STORAGE_BASE_URL" envDefault:"http://localhost:8080/files"`

	// Upload limits
	MaxUploadBytes int64 `env:"PHOTO_MAX_UPLOAD_BYTES" envDefault:"20971520"`

	// Access token defaults
	DefaultTokenValidityHours int `env:"ACCESS_TOKEN_VALIDITY_HOURS" envDefault:"48"`
}

// Load parses environment variables into Config and validates the
// credentials of the selected storage backend.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20 * 1024 * 1024
	}
	if cfg.DefaultTokenValidityHours <= 0 {
		cfg.DefaultTokenValidityHours = 48
	}

	switch cfg.Backend() {
	case "s3":
		if cfg.S3Bucket == "" || cfg.S3AccessKeyID == "" || cfg.S3SecretKey == "" {
			return nil, fmt.Errorf("AWS_S3_BUCKET, AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are required for the s3 backend")
		}
	case "minio":
		if cfg.MinioEndpoint == "" || cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" {
			return nil, fmt.Errorf("MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio backend")
		}
	case "cloudinary":
		if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
			return nil, fmt.Errorf("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required for the cloudinary backend")
		}
	case "local":
		if cfg.LocalStoragePath == "" {
			return nil, fmt.Errorf("LOCAL_STORAGE_PATH is required for the local backend")
		}
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	return cfg, nil
}

// Backend returns the normalized storage backend identifier.
func (c *Config) Backend() string {
	backend := strings.ToLower(strings.TrimSpace(c.StorageBackend))
	if backend == "" {
		return "cloudinary"
	}
	return backend
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
