package accesstoken

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/wedding-gallery/photo-api/internal/domain/accesstoken"
	"github.com/wedding-gallery/photo-api/internal/infrastructure/database/entities"
	"github.com/wedding-gallery/photo-api/internal/utils/platformerrors"
)

// Repository handles access token persistence. Tokens are never deleted,
// only deactivated.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, token *domain.AccessToken) error {
	entity := entities.AccessToken{
		Token:       token.Token,
		Description: token.Description,
		CreatedAt:   token.CreatedAt,
		ExpiresAt:   token.ExpiresAt,
		IsActive:    token.IsActive,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create access token",
			err,
			"9d4b7e21-5c8f-4a30-b6d2-e17f0a93c584",
		)
	}
	token.ID = entity.ID
	return nil
}

// FindByToken looks a token up by its unique secret. Returns nil without
// error when absent; the caller treats absence like invalidity.
func (r *Repository) FindByToken(ctx context.Context, token string) (*domain.AccessToken, error) {
	var entity entities.AccessToken
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find access token",
			err,
			"0e6a3c95-8f1d-47b2-a5e0-d29c4b78f613",
		)
	}
	t := mapEntity(entity)
	return &t, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.AccessToken, error) {
	var rows []entities.AccessToken
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list access tokens",
			err,
			"c72f8d10-3b5e-49a6-8e4d-61a0b9f5c327",
		)
	}

	tokens := make([]domain.AccessToken, 0, len(rows))
	for _, row := range rows {
		tokens = append(tokens, mapEntity(row))
	}
	return tokens, nil
}

// Deactivate sets is_active=false in one statement. The update touches the
// row whether or not it was already inactive, so the operation is
// idempotent-true for any existing id.
func (r *Repository) Deactivate(ctx context.Context, id int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.AccessToken{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to deactivate access token",
			result.Error,
			"4a9c1e67-0d3b-42f8-b7a5-92e6d04c8f15",
		)
	}
	return result.RowsAffected > 0, nil
}

// DeactivateExpired flips every still-active expired token inactive in a
// single conditional update and returns the rows touched. Tokens already
// inactive are excluded from the predicate, so they are never re-counted.
func (r *Repository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.AccessToken{}).
		Where("expires_at < ? AND is_active = ?", now, true).
		Update("is_active", false)
	if result.Error != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to deactivate expired access tokens",
			result.Error,
			"68d5f2b3-1a7c-4e90-8d6b-0c4e9a21f738",
		)
	}
	return result.RowsAffected, nil
}

func mapEntity(entity entities.AccessToken) domain.AccessToken {
	return domain.AccessToken{
		ID:          entity.ID,
		Token:       entity.Token,
		Description: entity.Description,
		CreatedAt:   entity.CreatedAt,
		ExpiresAt:   entity.ExpiresAt,
		IsActive:    entity.IsActive,
	}
}
