package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ListingStatusActive  = "active"
	ListingStatusSold    = "sold"
	ListingStatusExpired = "expired"
	ListingStatusPending = "pending"
	ListingStatusDraft   = "draft"
)

const (
	PriceTypeFixed      = "fixed"
	PriceTypeNegotiable = "negotiable"
	PriceTypeFree       = "free"
	PriceTypeContact    = "contact"
)

// ListingLifetime is how long a listing stays up before it expires.
const ListingLifetime = 30 * 24 * time.Hour

var ListingConditions = []string{"new", "like-new", "excellent", "good", "fair", "poor"}

var ListingStatuses = []string{
	ListingStatusActive,
	ListingStatusSold,
	ListingStatusExpired,
	ListingStatusPending,
	ListingStatusDraft,
}

type Specifications map[string]string

type Listing struct {
	ID             uuid.UUID                          `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string                             `gorm:"size:100;not null" json:"title"`
	Slug           string                             `gorm:"size:130;uniqueIndex;not null" json:"slug"`
	Description    string                             `gorm:"type:text;not null" json:"description"`
	Price          float64                            `gorm:"type:numeric(14,2);not null;default:0;check:chk_listings_price,price >= 0" json:"price"`
	PriceType      string                             `gorm:"size:20;not null;default:'fixed'" json:"price_type"`
	Condition      string                             `gorm:"size:20;not null;index" json:"condition"`
	Status         string                             `gorm:"size:20;not null;default:'active';index" json:"status"`
	Featured       bool                               `gorm:"not null;default:false;index" json:"featured"`
	Images         pq.StringArray                     `gorm:"type:text[];not null" json:"images"`
	CategoryID     uuid.UUID                          `gorm:"type:uuid;not null;index" json:"category_id"`
	Category       Category                           `gorm:"constraint:OnDelete:RESTRICT" json:"category"`
	SubcategoryID  *uuid.UUID                         `gorm:"type:uuid;index" json:"subcategory_id,omitempty"`
	Subcategory    *Category                          `gorm:"foreignKey:SubcategoryID;constraint:OnDelete:RESTRICT" json:"subcategory,omitempty"`
	Location       string                             `gorm:"size:100;not null" json:"location"`
	Specifications datatypes.JSONType[Specifications] `gorm:"type:jsonb;not null;default:'{}'" json:"specifications"`
	Views          int64                              `gorm:"not null;default:0" json:"views"`
	UserID         uuid.UUID                          `gorm:"type:uuid;not null;index" json:"user_id"`
	User           User                               `json:"user"`
	ExpiresAt      time.Time                          `gorm:"index" json:"expires_at"`
	CreatedAt      time.Time                          `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time                          `gorm:"autoUpdateTime" json:"updated_at"`
}

func (l *Listing) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID, err = uuid.NewV7()
		if err != nil {
			return
		}
	}
	if l.ExpiresAt.IsZero() {
		l.ExpiresAt = time.Now().Add(ListingLifetime)
	}
	if l.Status == "" {
		l.Status = ListingStatusActive
	}
	if l.PriceType == "" {
		l.PriceType = PriceTypeFixed
	}
	return
}

func (l *Listing) OwnedBy(userID uuid.UUID) bool {
	return l.UserID == userID
}

func IsListingStatus(s string) bool {
	for _, v := range ListingStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func IsListingCondition(s string) bool {
	for _, v := range ListingConditions {
		if v == s {
			return true
		}
	}
	return false
}

func NewSpecifications(values Specifications) datatypes.JSONType[Specifications] {
	if values == nil {
		values = Specifications{}
	}
	return datatypes.NewJSONType(values)
}
