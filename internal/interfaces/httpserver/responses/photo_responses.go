package responses

import (
	domain "github.com/wedding-gallery/photo-api/internal/domain/photo"
)

// PaginatedPhotos wraps one page of the gallery.
type PaginatedPhotos struct {
	Data  []domain.Photo `json:"data"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Total int64          `json:"total"`
	Pages int64          `json:"pages"`
}

// NewPaginatedPhotos computes the page count as ceil(total/limit).
func NewPaginatedPhotos(photos []domain.Photo, page, limit int, total int64) PaginatedPhotos {
	pages := (total + int64(limit) - 1) / int64(limit)
	return PaginatedPhotos{
		Data:  photos,
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: pages,
	}
}
