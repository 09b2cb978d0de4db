package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"

	"github.com/wedding-gallery/photo-api/internal/config"
	"github.com/wedding-gallery/photo-api/internal/infrastructure/metrics"
	"github.com/wedding-gallery/photo-api/utils/photokey"
)

// cloudinaryPublicIDPattern matches the versioned public id in a delivery
// URL, e.g. https://res.cloudinary.com/demo/image/upload/v1234/wedding_photos/abc.jpg
// captures "wedding_photos/abc".
var cloudinaryPublicIDPattern = regexp.MustCompile(`/v\d+/(.+?)\.[^.]+$`)

// CloudinaryBackend stores photos in the Cloudinary media CDN.
type CloudinaryBackend struct {
	cld *cloudinary.Cloudinary
	log zerolog.Logger
}

func NewCloudinaryBackend(cfg *config.Config, log zerolog.Logger) (*CloudinaryBackend, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("create cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true

	return &CloudinaryBackend{
		cld: cld,
		log: log.With().Str("component", "cloudinary-storage").Logger(),
	}, nil
}

func (b *CloudinaryBackend) UploadImage(ctx context.Context, image io.ReadCloser, filename string) (string, error) {
	data, err := drain(image)
	if err != nil {
		b.log.Error().Err(err).Str("filename", filename).Msg("failed to read image stream")
		return "", fmt.Errorf("read image stream: %w", err)
	}

	// The folder plus an explicit random public id keeps keys namespaced
	// and collision-free regardless of the advisory filename.
	publicID := photokey.New()

	start := time.Now()
	resp, err := b.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       "wedding_photos",
		PublicID:     publicID,
		ResourceType: "image",
	})
	metrics.RecordStorageOperation("cloudinary", "upload", statusLabel(err == nil), time.Since(start).Seconds())
	if err != nil {
		b.log.Error().Err(err).Str("filename", filename).Msg("failed to upload image to Cloudinary")
		return "", fmt.Errorf("upload %q: %w", filename, err)
	}
	if resp.Error.Message != "" {
		b.log.Error().Str("filename", filename).Str("reason", resp.Error.Message).Msg("cloudinary rejected upload")
		return "", fmt.Errorf("upload %q: %s", filename, resp.Error.Message)
	}

	b.log.Info().Str("filename", filename).Str("public_id", resp.PublicID).Str("url", resp.SecureURL).Msg("uploaded image to Cloudinary")
	return resp.SecureURL, nil
}

func (b *CloudinaryBackend) DeleteImage(ctx context.Context, identifier string) bool {
	start := time.Now()
	resp, err := b.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: identifier})
	ok := err == nil && resp != nil && strings.EqualFold(resp.Result, "ok")
	metrics.RecordStorageOperation("cloudinary", "delete", statusLabel(ok), time.Since(start).Seconds())
	if err != nil {
		b.log.Error().Err(err).Str("public_id", identifier).Msg("failed to delete image from Cloudinary")
		return false
	}
	if !ok {
		// "not found" for absent ids, per the destroy API.
		b.log.Warn().Str("public_id", identifier).Str("result", resp.Result).Msg("cloudinary did not delete image")
		return false
	}
	b.log.Info().Str("public_id", identifier).Msg("deleted image from Cloudinary")
	return true
}

func (b *CloudinaryBackend) ExtractKeyFromURL(url string) (string, bool) {
	match := cloudinaryPublicIDPattern.FindStringSubmatch(url)
	if match == nil {
		return "", false
	}
	return match[1], true
}
