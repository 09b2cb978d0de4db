package photo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/wedding-gallery/photo-api/internal/domain/photo"
	"github.com/wedding-gallery/photo-api/internal/infrastructure/database/entities"
	"github.com/wedding-gallery/photo-api/internal/utils/platformerrors"
)

// Repository handles photo metadata persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, imageURL, uploaderID string, uploadedAt time.Time) (*domain.Photo, error) {
	entity := entities.Photo{
		ImageURL:   imageURL,
		UploaderID: uploaderID,
		UploadedAt: uploadedAt,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create photo record",
			err,
			"a1f4c8d2-3e7b-4906-8c5a-f02d6b91e437",
		)
	}
	p := mapEntity(entity)
	return &p, nil
}

func (r *Repository) GetByID(ctx context.Context, photoID int) (*domain.Photo, error) {
	var entity entities.Photo
	err := r.db.WithContext(ctx).Where("photo_id = ?", photoID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to get photo by id",
			err,
			"5b9e2d70-6a4f-41c8-93b1-e8d07f52c6a4",
		)
	}
	p := mapEntity(entity)
	return &p, nil
}

// List returns one page of photos ordered by upload time descending.
// Display order is always derived from uploaded_at, never insertion order.
func (r *Repository) List(ctx context.Context, uploaderID string, page, limit int) ([]domain.Photo, error) {
	query := r.db.WithContext(ctx).Model(&entities.Photo{})
	if uploaderID != "" {
		query = query.Where("uploader_id = ?", uploaderID)
	}

	var rows []entities.Photo
	err := query.
		Order("uploaded_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list photos",
			err,
			"d06f3a81-9c2e-45b7-a4d8-1b5e7c09f263",
		)
	}

	photos := make([]domain.Photo, 0, len(rows))
	for _, row := range rows {
		photos = append(photos, mapEntity(row))
	}
	return photos, nil
}

func (r *Repository) Count(ctx context.Context, uploaderID string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Photo{})
	if uploaderID != "" {
		query = query.Where("uploader_id = ?", uploaderID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to count photos",
			err,
			"2e8b5f94-7d10-4c6a-b3e9-a4f81d27c056",
		)
	}
	return count, nil
}

// Delete removes the photo row. When uploaderID is non-empty the delete is
// conditional on ownership, all in one statement.
func (r *Repository) Delete(ctx context.Context, photoID int, uploaderID string) (bool, error) {
	query := r.db.WithContext(ctx).Where("photo_id = ?", photoID)
	if uploaderID != "" {
		query = query.Where("uploader_id = ?", uploaderID)
	}

	result := query.Delete(&entities.Photo{})
	if result.Error != nil {
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete photo",
			result.Error,
			"7c1d9e35-4b82-4f60-a8c7-50e3b6d1f928",
		)
	}
	return result.RowsAffected > 0, nil
}

func mapEntity(entity entities.Photo) domain.Photo {
	return domain.Photo{
		PhotoID:    entity.PhotoID,
		ImageURL:   entity.ImageURL,
		UploaderID: entity.UploaderID,
		UploadedAt: entity.UploadedAt,
	}
}
