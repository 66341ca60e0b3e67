package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Favorite is unique per (user, listing); the index rejects duplicates.
type Favorite struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_listing,priority:1" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ListingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_listing,priority:2;index" json:"listing_id"`
	Listing   Listing   `json:"listing"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (f *Favorite) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID, err = uuid.NewV7()
	}
	return
}
