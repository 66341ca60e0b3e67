package dto

import (
	"time"

	"anoa.com/tradesphere/internal/entity"
	commonDto "anoa.com/tradesphere/pkg/dto"
	"github.com/google/uuid"
)

type CreateListingRequest struct {
	Title          string            `json:"title" binding:"required,min=5,max=100"`
	Description    string            `json:"description" binding:"required,min=20,max=2000"`
	Price          *float64          `json:"price" binding:"required,gte=0"`
	PriceType      string            `json:"priceType" binding:"omitempty,oneof=fixed negotiable free contact"`
	Condition      string            `json:"condition" binding:"required,oneof=new like-new excellent good fair poor"`
	Images         []string          `json:"images" binding:"required,min=1,max=8,dive,url"`
	Category       string            `json:"category" binding:"required"`
	Subcategory    string            `json:"subcategory"`
	Location       string            `json:"location" binding:"required,max=100"`
	Specifications map[string]string `json:"specifications"`
	Status         string            `json:"status" binding:"omitempty,oneof=active draft"`
}

// UpdateListingRequest is a patch; owner and view count are not part of it.
type UpdateListingRequest struct {
	Title          *string            `json:"title" binding:"omitempty,min=5,max=100"`
	Description    *string            `json:"description" binding:"omitempty,min=20,max=2000"`
	Price          *float64           `json:"price" binding:"omitempty,gte=0"`
	PriceType      *string            `json:"priceType" binding:"omitempty,oneof=fixed negotiable free contact"`
	Condition      *string            `json:"condition" binding:"omitempty,oneof=new like-new excellent good fair poor"`
	Images         []string           `json:"images" binding:"omitempty,min=1,max=8,dive,url"`
	Category       *string            `json:"category"`
	Subcategory    *string            `json:"subcategory"`
	Location       *string            `json:"location" binding:"omitempty,max=100"`
	Specifications *map[string]string `json:"specifications"`
	Status         *string            `json:"status" binding:"omitempty,oneof=active sold expired pending draft"`
}

type ListingResponse struct {
	ID             uuid.UUID                `json:"id"`
	Title          string                   `json:"title"`
	Slug           string                   `json:"slug"`
	Description    string                   `json:"description"`
	Price          float64                  `json:"price"`
	PriceType      string                   `json:"priceType"`
	Condition      string                   `json:"condition"`
	Status         string                   `json:"status"`
	Featured       bool                     `json:"featured"`
	Images         []string                 `json:"images"`
	Category       *commonDto.CategoryRef   `json:"category"`
	Subcategory    *commonDto.CategoryRef   `json:"subcategory,omitempty"`
	Location       string                   `json:"location"`
	Specifications map[string]string        `json:"specifications"`
	Views          int64                    `json:"views"`
	User           *commonDto.OwnerResponse `json:"user"`
	ExpiresAt      time.Time                `json:"expiresAt"`
	CreatedAt      time.Time                `json:"createdAt"`
	UpdatedAt      time.Time                `json:"updatedAt"`
}

type ListingDetailResponse struct {
	Listing         ListingResponse   `json:"listing"`
	RelatedListings []ListingResponse `json:"relatedListings"`
	OwnerListings   []ListingResponse `json:"ownerListings"`
}

type PaginatedListingResponse struct {
	Data       []ListingResponse        `json:"data"`
	Pagination commonDto.PaginationMeta `json:"pagination"`
}

func categoryRef(c *entity.Category) *commonDto.CategoryRef {
	if c == nil || c.ID == uuid.Nil {
		return nil
	}
	return &commonDto.CategoryRef{ID: c.ID, Name: c.Name, Slug: c.Slug, Icon: c.Icon}
}

func NewListingResponse(l *entity.Listing) ListingResponse {
	specs := l.Specifications.Data()
	if specs == nil {
		specs = entity.Specifications{}
	}
	images := []string(l.Images)
	if images == nil {
		images = []string{}
	}

	resp := ListingResponse{
		ID:             l.ID,
		Title:          l.Title,
		Slug:           l.Slug,
		Description:    l.Description,
		Price:          l.Price,
		PriceType:      l.PriceType,
		Condition:      l.Condition,
		Status:         l.Status,
		Featured:       l.Featured,
		Images:         images,
		Category:       categoryRef(&l.Category),
		Subcategory:    categoryRef(l.Subcategory),
		Location:       l.Location,
		Specifications: specs,
		Views:          l.Views,
		ExpiresAt:      l.ExpiresAt,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
	if l.User.ID != uuid.Nil {
		resp.User = &commonDto.OwnerResponse{
			ID:       l.User.ID,
			Name:     l.User.Name,
			Avatar:   l.User.Avatar,
			Location: l.User.Location,
		}
	}
	return resp
}

func NewListingResponses(listings []*entity.Listing) []ListingResponse {
	out := make([]ListingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, NewListingResponse(l))
	}
	return out
}
