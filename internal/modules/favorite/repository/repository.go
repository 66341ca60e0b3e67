package repository

import (
	"context"

	"anoa.com/tradesphere/internal/entity"
	"anoa.com/tradesphere/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FavoriteRepository interface {
	Create(ctx context.Context, favorite *entity.Favorite) error
	// Delete reports how many relations were removed.
	Delete(ctx context.Context, userID, listingID uuid.UUID) (int64, error)
	Exists(ctx context.Context, userID, listingID uuid.UUID) (bool, error)
	// FindByUser skips favorites whose listing no longer exists, and the
	// total counts the same joined rows.
	FindByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*entity.Favorite, int64, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Create(ctx context.Context, favorite *entity.Favorite) error {
	return r.db.WithContext(ctx).Omit("User", "Listing").Create(favorite).Error
}

func (r *favoriteRepository) Delete(ctx context.Context, userID, listingID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Delete(&entity.Favorite{})
	return result.RowsAffected, result.Error
}

func (r *favoriteRepository) Exists(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Favorite{}).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Count(&count).Error
	return count > 0, err
}

func (r *favoriteRepository) FindByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*entity.Favorite, int64, error) {
	var (
		favorites []*entity.Favorite
		total     int64
	)

	base := r.db.WithContext(ctx).Model(&entity.Favorite{}).
		Joins("JOIN listings ON listings.id = favorites.listing_id").
		Where("favorites.user_id = ?", userID).
		Session(&gorm.Session{})

	err := database.Read(ctx, func() error {
		favorites = nil
		if err := base.Count(&total).Error; err != nil {
			return err
		}
		return base.
			Preload("Listing").
			Preload("Listing.User").
			Order("favorites.created_at DESC").
			Order("favorites.id DESC").
			Offset(offset).
			Limit(limit).
			Find(&favorites).Error
	})
	if err != nil {
		return nil, 0, err
	}

	return favorites, total, nil
}
