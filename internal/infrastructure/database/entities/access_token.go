package entities

import "time"

// AccessToken represents a persisted gallery access token. Tokens are never
// deleted, only deactivated, so the table doubles as an audit trail.
type AccessToken struct {
	ID          int       `gorm:"column:id;primaryKey;autoIncrement"`
	Token       string    `gorm:"column:token;type:varchar(255);uniqueIndex;not null"`
	Description *string   `gorm:"column:description;type:varchar(500)"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
	ExpiresAt   time.Time `gorm:"column:expires_at;not null;index"`
	// No gorm default tag: gorm would drop an explicit false on insert and
	// let the column default win. The migration still carries DEFAULT TRUE.
	IsActive bool `gorm:"column:is_active;not null"`
}

func (AccessToken) TableName() string {
	return "access_tokens"
}
