package repository

import (
	"context"
	"time"

	"anoa.com/tradesphere/internal/entity"
	"anoa.com/tradesphere/internal/modules/listing/query"
	"anoa.com/tradesphere/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, listing *entity.Listing) error
	Update(ctx context.Context, listing *entity.Listing) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error)
	FindBySlug(ctx context.Context, slug string) (*entity.Listing, error)
	// FindAll runs q's page and a COUNT(*) over the same conditions.
	FindAll(ctx context.Context, q *query.Query) ([]*entity.Listing, int64, error)
	FindRelated(ctx context.Context, listing *entity.Listing, limit int) ([]*entity.Listing, error)
	FindOtherByOwner(ctx context.Context, ownerID, excludeID uuid.UUID, limit int) ([]*entity.Listing, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error
	ExpireOverdue(ctx context.Context, now time.Time) ([]uuid.UUID, error)
	// Delete removes the listing with its favorites, messages and
	// conversations in one transaction.
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Category").
		Preload("Subcategory").
		Preload("User")
}

func (r *repository) Create(ctx context.Context, listing *entity.Listing) error {
	return r.db.WithContext(ctx).Omit("Category", "Subcategory", "User").Create(listing).Error
}

func (r *repository) Update(ctx context.Context, listing *entity.Listing) error {
	return r.db.WithContext(ctx).Omit("Category", "Subcategory", "User", "UserID", "Views").Save(listing).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error) {
	var listing entity.Listing
	err := database.Read(ctx, func() error {
		return r.withRelations(r.db.WithContext(ctx)).
			Where("id = ?", id).
			First(&listing).Error
	})
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*entity.Listing, error) {
	var listing entity.Listing
	err := database.Read(ctx, func() error {
		return r.withRelations(r.db.WithContext(ctx)).
			Where("slug = ?", slug).
			First(&listing).Error
	})
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repository) FindAll(ctx context.Context, q *query.Query) ([]*entity.Listing, int64, error) {
	var listings []*entity.Listing
	var total int64

	base := r.db.WithContext(ctx).Model(&entity.Listing{})
	for _, c := range q.Conditions {
		base = base.Where(c.SQL, c.Args...)
	}
	base = base.Session(&gorm.Session{})

	err := database.Read(ctx, func() error {
		listings = nil
		if err := base.Count(&total).Error; err != nil {
			return err
		}

		page := r.withRelations(base)
		for _, o := range q.Order {
			page = page.Order(o)
		}
		return page.Offset(q.Offset).Limit(q.Limit).Find(&listings).Error
	})
	if err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

func (r *repository) FindRelated(ctx context.Context, listing *entity.Listing, limit int) ([]*entity.Listing, error) {
	var listings []*entity.Listing
	err := r.withRelations(r.db.WithContext(ctx)).
		Where("category_id = ? AND id <> ? AND status = ?", listing.CategoryID, listing.ID, entity.ListingStatusActive).
		Order("created_at DESC").
		Limit(limit).
		Find(&listings).Error
	return listings, err
}

func (r *repository) FindOtherByOwner(ctx context.Context, ownerID, excludeID uuid.UUID, limit int) ([]*entity.Listing, error) {
	var listings []*entity.Listing
	err := r.withRelations(r.db.WithContext(ctx)).
		Where("user_id = ? AND id <> ? AND status = ?", ownerID, excludeID, entity.ListingStatusActive).
		Order("created_at DESC").
		Limit(limit).
		Find(&listings).Error
	return listings, err
}

func (r *repository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Listing{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error {
	return r.db.WithContext(ctx).
		Model(&entity.Listing{}).
		Where("id = ?", id).
		Update("featured", featured).Error
}

func (r *repository) ExpireOverdue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Listing{}).
			Where("status = ? AND expires_at < ?", entity.ListingStatusActive, now).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Model(&entity.Listing{}).
			Where("id IN ?", ids).
			Update("status", entity.ListingStatusExpired).Error
	})
	return ids, err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", id).Delete(&entity.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", id).Delete(&entity.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", id).Delete(&entity.Conversation{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&entity.Listing{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
