package repository

import (
	"context"
	"time"

	"anoa.com/tradesphere/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *entity.Attachment) error
	FindByURL(ctx context.Context, fileURL string) (*entity.Attachment, error)
	// InUse reports whether any listing still lists fileURL among its images.
	InUse(ctx context.Context, fileURL string) (bool, error)
	// FindOrphans returns uploads older than cutoff that no listing references.
	FindOrphans(ctx context.Context, cutoff time.Time) ([]entity.Attachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *entity.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *attachmentRepository) FindByURL(ctx context.Context, fileURL string) (*entity.Attachment, error) {
	var attachment entity.Attachment
	if err := r.db.WithContext(ctx).Where("file_url = ?", fileURL).First(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepository) InUse(ctx context.Context, fileURL string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Listing{}).
		Where("? = ANY(images)", fileURL).
		Count(&count).Error
	return count > 0, err
}

func (r *attachmentRepository) FindOrphans(ctx context.Context, cutoff time.Time) ([]entity.Attachment, error) {
	var attachments []entity.Attachment
	err := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Where("NOT EXISTS (SELECT 1 FROM listings WHERE attachments.file_url = ANY(listings.images))").
		Find(&attachments).Error
	return attachments, err
}

func (r *attachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Attachment{}, "id = ?", id).Error
}
