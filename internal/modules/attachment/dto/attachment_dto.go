package dto

import (
	"time"

	"anoa.com/tradesphere/internal/entity"
	"github.com/google/uuid"
)

const (
	MaxFilesPerUpload = 10
	MaxFileSize       = 5 << 20
)

type AttachmentResponse struct {
	ID        uuid.UUID `json:"id"`
	FileURL   string    `json:"url"`
	FileType  string    `json:"fileType"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

type DeleteAttachmentRequest struct {
	URL string `json:"url" binding:"required,url"`
}

func NewAttachmentResponse(a *entity.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:        a.ID,
		FileURL:   a.FileURL,
		FileType:  a.FileType,
		Size:      a.Size,
		CreatedAt: a.CreatedAt,
	}
}
