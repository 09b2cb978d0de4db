package entities

import "time"

// Photo represents the persisted photo metadata. The row is created once on
// a successful upload and never updated.
type Photo struct {
	PhotoID    int       `gorm:"column:photo_id;primaryKey;autoIncrement"`
	ImageURL   string    `gorm:"column:image_url;type:text;not null"`
	UploaderID string    `gorm:"column:uploader_id;type:text;not null;index"`
	UploadedAt time.Time `gorm:"column:uploaded_at;not null;index"`
}

func (Photo) TableName() string {
	return "photos"
}
