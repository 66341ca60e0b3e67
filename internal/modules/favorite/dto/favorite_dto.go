package dto

import (
	"time"

	"anoa.com/tradesphere/internal/entity"
	commonDto "anoa.com/tradesphere/pkg/dto"
	"github.com/google/uuid"
)

type AddFavoriteRequest struct {
	ListingID uuid.UUID `json:"listingId" binding:"required"`
}

type FavoriteResponse struct {
	ID        uuid.UUID                 `json:"id"`
	ListingID uuid.UUID                 `json:"listingId"`
	Listing   *commonDto.ListingSummary `json:"listing,omitempty"`
	CreatedAt time.Time                 `json:"createdAt"`
}

type FavoriteStatusResponse struct {
	IsFavorite bool `json:"isFavorite"`
}

func NewFavoriteResponse(f *entity.Favorite) FavoriteResponse {
	return FavoriteResponse{
		ID:        f.ID,
		ListingID: f.ListingID,
		Listing:   commonDto.NewListingSummary(&f.Listing),
		CreatedAt: f.CreatedAt,
	}
}
