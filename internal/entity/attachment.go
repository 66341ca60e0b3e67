package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attachment records an uploaded image until a listing references it.
// Rows whose URL no listing uses are purged by the cleanup job.
type Attachment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	FileURL   string    `gorm:"type:text;not null;uniqueIndex" json:"file_url"`
	FileType  string    `gorm:"size:50" json:"file_type"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (a *Attachment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}
