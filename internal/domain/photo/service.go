package photo

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/wedding-gallery/photo-api/internal/config"
	"github.com/wedding-gallery/photo-api/internal/infrastructure/metrics"
	"github.com/wedding-gallery/photo-api/internal/infrastructure/storage"
	"github.com/wedding-gallery/photo-api/internal/utils/platformerrors"
)

var allowedMIMEs = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
	"image/bmp":  {},
	"image/tiff": {},
	"image/heic": {},
}

// Repository defines persistence operations needed by the service.
type Repository interface {
	Create(ctx context.Context, imageURL, uploaderID string, uploadedAt time.Time) (*Photo, error)
	GetByID(ctx context.Context, photoID int) (*Photo, error)
	List(ctx context.Context, uploaderID string, page, limit int) ([]Photo, error)
	Count(ctx context.Context, uploaderID string) (int64, error)
	Delete(ctx context.Context, photoID int, uploaderID string) (bool, error)
}

// Service orchestrates photo uploads, listing and deletion. The storage
// write always precedes the metadata insert, so metadata never points at an
// object that was not confirmed written.
type Service struct {
	cfg     *config.Config
	repo    Repository
	storage storage.Backend
	log     zerolog.Logger
	now     func() time.Time
}

func NewService(cfg *config.Config, repo Repository, backend storage.Backend, log zerolog.Logger) *Service {
	return &Service{
		cfg:     cfg,
		repo:    repo,
		storage: backend,
		log:     log.With().Str("component", "photo-service").Logger(),
		now:     time.Now,
	}
}

// Upload validates the image, writes it to the storage backend and records
// the metadata. On a metadata failure the already-written object is removed
// best-effort so nothing is left behind.
func (s *Service) Upload(ctx context.Context, image io.Reader, filename, uploaderID string) (*Photo, error) {
	if uploaderID == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"uploader_id is required", nil, "4f0f2a1d-93b6-47e2-9c41-8a5a0d6f1b20")
	}

	data, err := io.ReadAll(io.LimitReader(image, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"failed to read uploaded image", err, "b27c9d44-0f1e-4f6a-95d3-7e2c8a90f4e1")
	}
	if len(data) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"image file is empty", nil, "8d1a6f3c-2e4b-49d7-8f50-6b3c1e9a2d74")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"image exceeds maximum upload size", nil, "e95b7c20-6d18-4a3f-b1e4-0c7f92a45d36")
	}

	contentType := mimetype.Detect(data).String()
	if _, ok := allowedMIMEs[contentType]; !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"unsupported image type "+contentType, nil, "1c8e5a92-7b40-4d6f-a3e1-9f2d60c4b8a7")
	}

	url, err := s.storage.UploadImage(ctx, io.NopCloser(bytes.NewReader(data)), filename)
	if err != nil {
		metrics.RecordUpload(contentType, "failure", 0)
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
			"failed to upload image to cloud storage", err, "72d4e9b1-5a3c-4f80-96e2-c1b8f0a73d52")
	}

	created, err := s.repo.Create(ctx, url, uploaderID, s.now())
	if err != nil {
		metrics.RecordUpload(contentType, "failure", 0)
		s.compensateOrphan(ctx, url)
		return nil, err
	}

	metrics.RecordUpload(contentType, "success", int64(len(data)))
	s.log.Info().Int("photo_id", created.PhotoID).Str("uploader_id", uploaderID).Str("url", url).Msg("photo uploaded")
	return created, nil
}

// compensateOrphan removes an object whose metadata insert failed.
func (s *Service) compensateOrphan(ctx context.Context, url string) {
	key, ok := s.storage.ExtractKeyFromURL(url)
	if !ok {
		s.log.Warn().Str("url", url).Msg("could not extract key to clean up orphaned object")
		return
	}
	if !s.storage.DeleteImage(ctx, key) {
		s.log.Warn().Str("key", key).Msg("orphaned object left in storage after failed metadata insert")
	}
}

// List returns one page of photos, newest first, plus the total count.
func (s *Service) List(ctx context.Context, uploaderID string, page, limit int) ([]Photo, int64, error) {
	photos, err := s.repo.List(ctx, uploaderID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, uploaderID)
	if err != nil {
		return nil, 0, err
	}
	return photos, total, nil
}

// Get returns a photo by id.
func (s *Service) Get(ctx context.Context, photoID int) (*Photo, error) {
	p, err := s.repo.GetByID(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"photo not found", nil, "3a7d1f58-9c2e-4b60-8a4f-e6d0b5c19327")
	}
	return p, nil
}

// Delete removes the photo metadata and then, best-effort, the backing
// object. When uploaderID is non-empty it must match the photo's owner;
// when empty, ownership verification is skipped.
func (s *Service) Delete(ctx context.Context, photoID int, uploaderID string) error {
	p, err := s.repo.GetByID(ctx, photoID)
	if err != nil {
		return err
	}
	if p == nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"photo not found", nil, "6e2b8c40-1d5f-4a93-b7e6-058fc3a21d94")
	}

	if uploaderID != "" && p.UploaderID != uploaderID {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
			"you don't have permission to delete this photo", nil, "90f5d7a2-4c81-4e3b-a6d9-7b20e1c8f465")
	}

	deleted, err := s.repo.Delete(ctx, photoID, uploaderID)
	if err != nil {
		return err
	}
	if !deleted {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"failed to delete photo from database", nil, "c48a2e16-0b7d-4f52-91c3-5e6a8d0f3b79")
	}

	// Metadata is gone; a storage failure from here on is only a warning.
	key, ok := s.storage.ExtractKeyFromURL(p.ImageURL)
	if !ok {
		s.log.Warn().Str("url", p.ImageURL).Msg("could not extract storage key from image URL")
		return nil
	}
	if !s.storage.DeleteImage(ctx, key) {
		s.log.Warn().Str("key", key).Int("photo_id", photoID).Msg("failed to delete image from storage, object orphaned")
	}
	return nil
}
