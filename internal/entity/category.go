package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is a flat row with an optional parent. Children are found by
// parent_id lookup; nothing is stored on the parent side.
type Category struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string     `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Slug          string     `gorm:"size:60;uniqueIndex;not null" json:"slug"`
	Description   string     `gorm:"type:text" json:"description"`
	Icon          string     `gorm:"size:50;default:'tag'" json:"icon"`
	Color         string     `gorm:"size:50;default:'from-blue-500 to-blue-600'" json:"color"`
	Image         *string    `gorm:"type:text" json:"image,omitempty"`
	ParentID      *uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
	Parent        *Category  `gorm:"foreignKey:ParentID;constraint:OnDelete:RESTRICT" json:"-"`
	Subcategories []Category `gorm:"foreignKey:ParentID" json:"subcategories,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

func (c *Category) IsTopLevel() bool {
	return c.ParentID == nil
}
