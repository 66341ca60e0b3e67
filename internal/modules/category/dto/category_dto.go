package dto

import (
	"time"

	"anoa.com/tradesphere/internal/entity"
	"anoa.com/tradesphere/internal/modules/listing/specs"
	"github.com/google/uuid"
)

type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required,max=50"`
	Description string  `json:"description" binding:"max=500"`
	Icon        string  `json:"icon" binding:"max=50"`
	Color       string  `json:"color" binding:"max=50"`
	Image       *string `json:"image" binding:"omitempty,url"`
	ParentID    *string `json:"parentId" binding:"omitempty,uuid"`
}

// UpdateCategoryRequest is a patch; ClearParent promotes a subcategory to
// top level.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=50"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	Icon        *string `json:"icon" binding:"omitempty,max=50"`
	Color       *string `json:"color" binding:"omitempty,max=50"`
	Image       *string `json:"image" binding:"omitempty,url"`
	ParentID    *string `json:"parentId" binding:"omitempty,uuid"`
	ClearParent bool    `json:"clearParent"`
}

type ListCategoriesRequest struct {
	ParentOnly bool `form:"parentOnly"`
}

type CategoryResponse struct {
	ID            uuid.UUID          `json:"id"`
	Name          string             `json:"name"`
	Slug          string             `json:"slug"`
	Description   string             `json:"description"`
	Icon          string             `json:"icon"`
	Color         string             `json:"color"`
	Image         *string            `json:"image,omitempty"`
	ParentID      *uuid.UUID         `json:"parentId"`
	Subcategories []CategoryResponse `json:"subcategories,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
}

type CategoryDetailResponse struct {
	Category       CategoryResponse  `json:"category"`
	ParentCategory *CategoryResponse `json:"parentCategory"`
	Fields         []specs.Field     `json:"fields"`
}

// NewCategoryResponse maps c and whatever subcategories were loaded with it.
func NewCategoryResponse(c *entity.Category) CategoryResponse {
	resp := CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Icon:        c.Icon,
		Color:       c.Color,
		Image:       c.Image,
		ParentID:    c.ParentID,
		CreatedAt:   c.CreatedAt,
	}
	for i := range c.Subcategories {
		resp.Subcategories = append(resp.Subcategories, NewCategoryResponse(&c.Subcategories[i]))
	}
	return resp
}
