package photo

import "time"

// Photo represents a shared gallery photo.
type Photo struct {
	PhotoID    int       `json:"photoId"`
	ImageURL   string    `json:"imageUrl"`
	UploaderID string    `json:"uploaderId"`
	UploadedAt time.Time `json:"uploadedAt"`
}
