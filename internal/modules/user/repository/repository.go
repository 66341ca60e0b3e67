package repository

import (
	"context"

	"anoa.com/tradesphere/internal/entity"
	"anoa.com/tradesphere/internal/modules/listing/query"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindRoleByName(ctx context.Context, name string) (*entity.Role, error)
	Update(ctx context.Context, user *entity.User) error
	FindAll(ctx context.Context, search string, offset, limit int) ([]*entity.User, int64, error)
	CountActiveListings(ctx context.Context, userID uuid.UUID) (int64, error)
	// Delete removes the user together with their listings and everything
	// that references those listings. It returns the removed listing ids.
	Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Preload("Role").
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Preload("Role").
		Where("LOWER(email) = LOWER(?)", email).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindRoleByName(ctx context.Context, name string) (*entity.Role, error) {
	var role entity.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Omit("Role").Save(user).Error
}

func (r *userRepository) FindAll(ctx context.Context, search string, offset, limit int) ([]*entity.User, int64, error) {
	var users []*entity.User
	var total int64

	base := r.db.WithContext(ctx).Model(&entity.User{})
	if search != "" {
		pattern := "%" + query.EscapeLike(search) + "%"
		base = base.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := base.Preload("Role").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) CountActiveListings(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Listing{}).
		Where("user_id = ? AND status = ?", userID, entity.ListingStatusActive).
		Count(&count).Error
	return count, err
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	var listingIDs []uuid.UUID

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Listing{}).Where("user_id = ?", id).Pluck("id", &listingIDs).Error; err != nil {
			return err
		}

		if len(listingIDs) > 0 {
			if err := tx.Where("listing_id IN ?", listingIDs).Delete(&entity.Favorite{}).Error; err != nil {
				return err
			}
			if err := tx.Where("listing_id IN ?", listingIDs).Delete(&entity.Message{}).Error; err != nil {
				return err
			}
			if err := tx.Where("listing_id IN ?", listingIDs).Delete(&entity.Conversation{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", listingIDs).Delete(&entity.Listing{}).Error; err != nil {
				return err
			}
		}

		// Rows on other people's listings cascade through their foreign keys.
		result := tx.Delete(&entity.User{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return listingIDs, nil
}
