package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/wedding-gallery/photo-api/internal/config"
	"github.com/wedding-gallery/photo-api/internal/infrastructure/metrics"
	"github.com/wedding-gallery/photo-api/utils/photokey"
)

// s3KeyPattern matches the object key embedded in a virtual-hosted S3 URL,
// e.g. https://bucket.s3.us-east-1.amazonaws.com/wedding_photos/abc.jpg
var s3KeyPattern = regexp.MustCompile(`amazonaws\.com/(.+)$`)

// S3Backend stores photos in an AWS S3 bucket, or an S3-compatible store
// when a custom endpoint is configured.
type S3Backend struct {
	bucket     string
	publicBase string
	client     *s3.Client
	log        zerolog.Logger
}

func NewS3Backend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*S3Backend, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.S3Endpoint != "" {
			return aws.Endpoint{
				URL:           cfg.S3Endpoint,
				PartitionID:   "aws",
				SigningRegion: cfg.S3Region,
			}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretKey, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
	})

	// With a custom endpoint the AWS URL template would not resolve, so
	// public URLs become path-style under that endpoint instead.
	publicBase := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	if cfg.S3Endpoint != "" {
		publicBase = strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
	}

	return &S3Backend{
		bucket:     cfg.S3Bucket,
		publicBase: publicBase,
		client:     client,
		log:        log.With().Str("component", "s3-storage").Logger(),
	}, nil
}

func (b *S3Backend) UploadImage(ctx context.Context, image io.ReadCloser, filename string) (string, error) {
	data, err := drain(image)
	if err != nil {
		b.log.Error().Err(err).Str("filename", filename).Msg("failed to read image stream")
		return "", fmt.Errorf("read image stream: %w", err)
	}

	key := ObjectPrefix + photokey.New() + "." + objectExtension(filename)
	contentType := mimetype.Detect(data).String()

	start := time.Now()
	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	metrics.RecordStorageOperation("s3", "upload", statusLabel(err == nil), time.Since(start).Seconds())
	if err != nil {
		b.log.Error().Err(err).Str("filename", filename).Str("key", key).Msg("failed to upload image to S3")
		return "", fmt.Errorf("put object %q: %w", key, err)
	}

	url := b.publicBase + "/" + key
	b.log.Info().Str("filename", filename).Str("key", key).Str("url", url).Msg("uploaded image to S3")
	return url, nil
}

func (b *S3Backend) DeleteImage(ctx context.Context, identifier string) bool {
	start := time.Now()
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(identifier),
	})
	metrics.RecordStorageOperation("s3", "delete", statusLabel(err == nil), time.Since(start).Seconds())
	if err != nil {
		b.log.Error().Err(err).Str("key", identifier).Msg("failed to delete image from S3")
		return false
	}
	b.log.Info().Str("key", identifier).Msg("deleted image from S3")
	return true
}

func (b *S3Backend) ExtractKeyFromURL(url string) (string, bool) {
	if key, ok := strings.CutPrefix(url, b.publicBase+"/"); ok && key != "" {
		return key, true
	}
	// URLs stored under the AWS template before an endpoint change.
	match := s3KeyPattern.FindStringSubmatch(url)
	if match == nil {
		return "", false
	}
	return match[1], true
}

func statusLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
