package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/wedding-gallery/photo-api/internal/config"
	"github.com/wedding-gallery/photo-api/internal/infrastructure/metrics"
	"github.com/wedding-gallery/photo-api/utils/photokey"
)

// MinioBackend stores photos in a MinIO (or any S3-compatible) bucket.
type MinioBackend struct {
	client     *minio.Client
	bucket     string
	publicBase string
	log        zerolog.Logger
}

func NewMinioBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*MinioBackend, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	logger := log.With().Str("component", "minio-storage").Logger()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.MinioBucket, err)
		}
		logger.Info().Str("bucket", cfg.MinioBucket).Msg("created bucket")
	}

	publicBase := strings.TrimRight(cfg.MinioPublicBaseURL, "/")
	if publicBase == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		publicBase = fmt.Sprintf("%s://%s", scheme, cfg.MinioEndpoint)
	}

	return &MinioBackend{
		client:     client,
		bucket:     cfg.MinioBucket,
		publicBase: publicBase,
		log:        logger,
	}, nil
}

func (b *MinioBackend) UploadImage(ctx context.Context, image io.ReadCloser, filename string) (string, error) {
	data, err := drain(image)
	if err != nil {
		b.log.Error().Err(err).Str("filename", filename).Msg("failed to read image stream")
		return "", fmt.Errorf("read image stream: %w", err)
	}

	key := ObjectPrefix + photokey.New() + "." + objectExtension(filename)
	contentType := mimetype.Detect(data).String()

	start := time.Now()
	_, err = b.client.PutObject(ctx, b.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	metrics.RecordStorageOperation("minio", "upload", statusLabel(err == nil), time.Since(start).Seconds())
	if err != nil {
		b.log.Error().Err(err).Str("filename", filename).Str("key", key).Msg("failed to upload image to MinIO")
		return "", fmt.Errorf("put object %q: %w", key, err)
	}

	url := fmt.Sprintf("%s/%s/%s", b.publicBase, b.bucket, key)
	b.log.Info().Str("filename", filename).Str("key", key).Str("url", url).Msg("uploaded image to MinIO")
	return url, nil
}

func (b *MinioBackend) DeleteImage(ctx context.Context, identifier string) bool {
	start := time.Now()

	// RemoveObject succeeds on absent keys, so probe first to report
	// already-absent as false rather than a silent no-op.
	_, err := b.client.StatObject(ctx, b.bucket, identifier, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			b.log.Warn().Str("key", identifier).Msg("image not found in MinIO")
		} else {
			b.log.Error().Err(err).Str("key", identifier).Msg("failed to stat image in MinIO")
		}
		metrics.RecordStorageOperation("minio", "delete", "failure", time.Since(start).Seconds())
		return false
	}

	err = b.client.RemoveObject(ctx, b.bucket, identifier, minio.RemoveObjectOptions{})
	metrics.RecordStorageOperation("minio", "delete", statusLabel(err == nil), time.Since(start).Seconds())
	if err != nil {
		b.log.Error().Err(err).Str("key", identifier).Msg("failed to delete image from MinIO")
		return false
	}
	b.log.Info().Str("key", identifier).Msg("deleted image from MinIO")
	return true
}

func (b *MinioBackend) ExtractKeyFromURL(url string) (string, bool) {
	marker := "/" + b.bucket + "/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return "", false
	}
	key := url[idx+len(marker):]
	if key == "" {
		return "", false
	}
	return key, true
}
