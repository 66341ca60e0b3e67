package repository

import (
	"context"

	"anoa.com/tradesphere/internal/entity"
	"anoa.com/tradesphere/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	Update(ctx context.Context, category *entity.Category) error
	FindBySlug(ctx context.Context, slug string) (*entity.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	FindByName(ctx context.Context, name string) (*entity.Category, error)
	// FindAll returns categories ordered by name with their direct children.
	FindAll(ctx context.Context, parentOnly bool) ([]*entity.Category, error)
	CountChildren(ctx context.Context, id uuid.UUID) (int64, error)
	CountListings(ctx context.Context, id uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	return r.db.WithContext(ctx).Omit("Parent", "Subcategories").Create(category).Error
}

func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	return r.db.WithContext(ctx).Omit("Parent", "Subcategories").Save(category).Error
}

func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	var category entity.Category
	err := database.Read(ctx, func() error {
		return r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	var category entity.Category
	err := database.Read(ctx, func() error {
		return r.db.WithContext(ctx).First(&category, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindByName(ctx context.Context, name string) (*entity.Category, error) {
	var category entity.Category
	err := database.Read(ctx, func() error {
		return r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&category).Error
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindAll(ctx context.Context, parentOnly bool) ([]*entity.Category, error) {
	var categories []*entity.Category
	err := database.Read(ctx, func() error {
		categories = nil
		query := r.db.WithContext(ctx).
			Preload("Subcategories", func(db *gorm.DB) *gorm.DB {
				return db.Order("name ASC")
			})
		if parentOnly {
			query = query.Where("parent_id IS NULL")
		}
		return query.Order("name ASC").Find(&categories).Error
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) CountChildren(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Category{}).Where("parent_id = ?", id).Count(&count).Error
	return count, err
}

func (r *categoryRepository) CountListings(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Listing{}).
		Where("category_id = ? OR subcategory_id = ?", id, id).
		Count(&count).Error
	return count, err
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Category{}, "id = ?", id).Error
}
