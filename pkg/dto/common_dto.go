package dto

import (
	"math"
	"time"

	"anoa.com/tradesphere/internal/entity"
	"github.com/google/uuid"
)

type PaginationMeta struct {
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// NewPaginationMeta computes pages as ceil(total/limit).
func NewPaginationMeta(total int64, page, limit int) PaginationMeta {
	pages := 0
	if limit > 0 {
		pages = int(total) / limit
		if int(total)%limit != 0 {
			pages++
		}
	}
	return PaginationMeta{
		Total: total,
		Pages: pages,
		Page:  page,
		Limit: limit,
	}
}

type PageRequest struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

// Normalize applies defaults and caps limit at max.
func (p PageRequest) Normalize(defaultLimit, max int) (page, limit int) {
	page, limit = p.Page, p.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > max {
		limit = max
	}
	// keeps (page-1)*limit well inside int range
	if limit > 0 && page > math.MaxInt32/limit {
		page = math.MaxInt32 / limit
	}
	return page, limit
}

type OwnerResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Avatar   *string   `json:"avatar"`
	Location *string   `json:"location,omitempty"`
}

type CategoryRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
	Icon string    `json:"icon,omitempty"`
}

// ListingSummary is the projection embedded in favorites and conversations.
type ListingSummary struct {
	ID        uuid.UUID      `json:"id"`
	Title     string         `json:"title"`
	Slug      string         `json:"slug"`
	Price     float64        `json:"price"`
	Images    []string       `json:"images"`
	Condition string         `json:"condition,omitempty"`
	Location  string         `json:"location,omitempty"`
	Status    string         `json:"status"`
	Owner     *OwnerResponse `json:"user,omitempty"`
}

func NewOwnerResponse(u *entity.User) *OwnerResponse {
	if u == nil || u.ID == uuid.Nil {
		return nil
	}
	return &OwnerResponse{ID: u.ID, Name: u.Name, Avatar: u.Avatar, Location: u.Location}
}

// NewListingSummary returns nil for a listing that was not loaded.
func NewListingSummary(l *entity.Listing) *ListingSummary {
	if l == nil || l.ID == uuid.Nil {
		return nil
	}
	images := []string(l.Images)
	if images == nil {
		images = []string{}
	}
	return &ListingSummary{
		ID:        l.ID,
		Title:     l.Title,
		Slug:      l.Slug,
		Price:     l.Price,
		Images:    images,
		Condition: l.Condition,
		Location:  l.Location,
		Status:    l.Status,
		Owner:     NewOwnerResponse(&l.User),
	}
}

type Timestamps struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
