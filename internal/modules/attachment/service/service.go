package attachment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"anoa.com/tradesphere/internal/entity"
	"anoa.com/tradesphere/internal/modules/attachment/dto"
	"anoa.com/tradesphere/internal/modules/attachment/repository"
	"anoa.com/tradesphere/pkg/apperror"
	"anoa.com/tradesphere/pkg/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	uploadFolder = "listings"
	orphanMaxAge = 24 * time.Hour
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

type AttachmentService interface {
	UploadImages(ctx context.Context, userID uuid.UUID, files []*multipart.FileHeader) ([]dto.AttachmentResponse, error)
	DeleteImage(ctx context.Context, userID uuid.UUID, fileURL string) error
	// CleanupOrphanAttachments purges uploads no listing picked up within a day.
	CleanupOrphanAttachments(ctx context.Context) (int, error)
}

type attachmentService struct {
	attachmentRepo repository.AttachmentRepository
	fileStorage    storage.ImageStorage
}

func NewAttachmentService(attachmentRepo repository.AttachmentRepository, fileStorage storage.ImageStorage) AttachmentService {
	return &attachmentService{
		attachmentRepo: attachmentRepo,
		fileStorage:    fileStorage,
	}
}

// sniff reads the file fully so the detected type comes from its bytes, not
// the client supplied header.
func sniff(file *multipart.FileHeader) ([]byte, string, error) {
	f, err := file.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, dto.MaxFileSize+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) > dto.MaxFileSize {
		return nil, "", fmt.Errorf("must be at most %d MB", dto.MaxFileSize>>20)
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return nil, "", fmt.Errorf("unsupported file type %s", mtype.String())
	}
	return data, mtype.String(), nil
}

func (s *attachmentService) UploadImages(ctx context.Context, userID uuid.UUID, files []*multipart.FileHeader) ([]dto.AttachmentResponse, error) {
	if len(files) == 0 {
		return nil, apperror.NewValidationError("images", "at least one image is required")
	}
	if len(files) > dto.MaxFilesPerUpload {
		return nil, apperror.NewValidationError("images", fmt.Sprintf("at most %d images per upload", dto.MaxFilesPerUpload))
	}
	if s.fileStorage == nil {
		return nil, apperror.New(http.StatusServiceUnavailable, "image storage is not configured", nil)
	}

	type checked struct {
		name     string
		data     []byte
		mimeType string
	}
	valid := make([]checked, 0, len(files))
	verr := &apperror.ValidationError{}
	for i, file := range files {
		data, mimeType, err := sniff(file)
		if err != nil {
			verr.Add(fmt.Sprintf("images[%d]", i), err.Error())
			continue
		}
		valid = append(valid, checked{name: file.Filename, data: data, mimeType: mimeType})
	}
	if verr.HasErrors() {
		return nil, verr
	}

	out := make([]dto.AttachmentResponse, 0, len(valid))
	for _, f := range valid {
		url, err := s.fileStorage.UploadImage(ctx, bytes.NewReader(f.data), uploadFolder, f.name)
		if err != nil {
			return out, fmt.Errorf("failed to upload %s: %w", f.name, err)
		}

		attachment := &entity.Attachment{
			UserID:   userID,
			FileURL:  url,
			FileType: f.mimeType,
			Size:     int64(len(f.data)),
		}
		if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
			return out, err
		}
		out = append(out, dto.NewAttachmentResponse(attachment))
	}
	return out, nil
}

func (s *attachmentService) DeleteImage(ctx context.Context, userID uuid.UUID, fileURL string) error {
	attachment, err := s.attachmentRepo.FindByURL(ctx, fileURL)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("upload not found: %w", apperror.ErrNotFound)
		}
		return err
	}
	if attachment.UserID != userID {
		return fmt.Errorf("not the owner of this upload: %w", apperror.ErrForbidden)
	}

	inUse, err := s.attachmentRepo.InUse(ctx, fileURL)
	if err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("image is used by a listing: %w", apperror.ErrConflict)
	}

	if s.fileStorage != nil {
		if err := s.fileStorage.DeleteImage(ctx, fileURL); err != nil {
			return err
		}
	}
	return s.attachmentRepo.Delete(ctx, attachment.ID)
}

func (s *attachmentService) CleanupOrphanAttachments(ctx context.Context) (int, error) {
	orphans, err := s.attachmentRepo.FindOrphans(ctx, time.Now().Add(-orphanMaxAge))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, orphan := range orphans {
		if s.fileStorage != nil {
			if err := s.fileStorage.DeleteImage(ctx, orphan.FileURL); err != nil {
				log.Printf("Failed to delete orphan image %s: %v", orphan.FileURL, err)
				continue
			}
		}
		// a failed row delete is picked up again on the next run
		if err := s.attachmentRepo.Delete(ctx, orphan.ID); err != nil {
			log.Printf("Failed to delete orphan attachment %s: %v", orphan.ID, err)
			continue
		}
		removed++
	}
	return removed, nil
}
