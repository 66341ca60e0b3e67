package favorite

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/tradesphere/internal/entity"
	"anoa.com/tradesphere/internal/modules/favorite/dto"
	favoriteRepo "anoa.com/tradesphere/internal/modules/favorite/repository"
	listingRepo "anoa.com/tradesphere/internal/modules/listing/repository"
	"anoa.com/tradesphere/pkg/apperror"
	commonDto "anoa.com/tradesphere/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultFavoriteLimit = 12
	maxFavoriteLimit     = 50
)

type FavoriteService interface {
	AddFavorite(ctx context.Context, userID, listingID uuid.UUID) (*dto.FavoriteResponse, error)
	RemoveFavorite(ctx context.Context, userID, listingID uuid.UUID) error
	IsFavorite(ctx context.Context, userID, listingID uuid.UUID) (bool, error)
	GetFavorites(ctx context.Context, userID uuid.UUID, page commonDto.PageRequest) ([]dto.FavoriteResponse, commonDto.PaginationMeta, error)
}

type favoriteService struct {
	favoriteRepo favoriteRepo.FavoriteRepository
	listingRepo  listingRepo.Repository
}

func NewFavoriteService(favoriteRepo favoriteRepo.FavoriteRepository, listingRepo listingRepo.Repository) FavoriteService {
	return &favoriteService{
		favoriteRepo: favoriteRepo,
		listingRepo:  listingRepo,
	}
}

func (s *favoriteService) AddFavorite(ctx context.Context, userID, listingID uuid.UUID) (*dto.FavoriteResponse, error) {
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("listing not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	favorite := &entity.Favorite{UserID: userID, ListingID: listing.ID}
	if err := s.favoriteRepo.Create(ctx, favorite); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("listing already in favorites: %w", apperror.ErrConflict)
		}
		return nil, err
	}

	favorite.Listing = *listing
	resp := dto.NewFavoriteResponse(favorite)
	return &resp, nil
}

func (s *favoriteService) RemoveFavorite(ctx context.Context, userID, listingID uuid.UUID) error {
	removed, err := s.favoriteRepo.Delete(ctx, userID, listingID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return fmt.Errorf("favorite not found: %w", apperror.ErrNotFound)
	}
	return nil
}

func (s *favoriteService) IsFavorite(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	return s.favoriteRepo.Exists(ctx, userID, listingID)
}

func (s *favoriteService) GetFavorites(ctx context.Context, userID uuid.UUID, req commonDto.PageRequest) ([]dto.FavoriteResponse, commonDto.PaginationMeta, error) {
	page, limit := req.Normalize(defaultFavoriteLimit, maxFavoriteLimit)

	favorites, total, err := s.favoriteRepo.FindByUser(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, commonDto.PaginationMeta{}, err
	}

	out := make([]dto.FavoriteResponse, 0, len(favorites))
	for _, f := range favorites {
		out = append(out, dto.NewFavoriteResponse(f))
	}
	return out, commonDto.NewPaginationMeta(total, page, limit), nil
}
