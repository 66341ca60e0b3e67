package attachment_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/tradesphere/internal/entity"
	"anoa.com/tradesphere/internal/mocks"
	attachment "anoa.com/tradesphere/internal/modules/attachment/service"
	"anoa.com/tradesphere/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// 1x1 transparent PNG
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

type upload struct {
	name string
	data []byte
}

func fileHeaders(t *testing.T, files ...upload) []*multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, f := range files {
		part, err := w.CreateFormFile("images", f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["images"]
}

func TestUploadImagesStoresEachFile(t *testing.T) {
	repo := new(mocks.AttachmentRepositoryMock)
	store := new(mocks.ImageStorageMock)
	svc := attachment.NewAttachmentService(repo, store)
	userID := uuid.New()

	store.On("UploadImage", mock.Anything, mock.Anything, "listings", "a.png").Return("https://res.example.com/a.webp", nil).Once()
	store.On("UploadImage", mock.Anything, mock.Anything, "listings", "b.png").Return("https://res.example.com/b.webp", nil).Once()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Attachment")).Return(nil).Twice()

	out, err := svc.UploadImages(context.Background(), userID, fileHeaders(t, upload{"a.png", pngBytes}, upload{"b.png", pngBytes}))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "image/png", out[0].FileType)
	assert.Equal(t, "https://res.example.com/b.webp", out[1].FileURL)

	saved := repo.Calls[0].Arguments.Get(1).(*entity.Attachment)
	assert.Equal(t, userID, saved.UserID)
	store.AssertExpectations(t)
}

func TestUploadImagesRejectsNonImages(t *testing.T) {
	repo := new(mocks.AttachmentRepositoryMock)
	store := new(mocks.ImageStorageMock)
	svc := attachment.NewAttachmentService(repo, store)

	_, err := svc.UploadImages(context.Background(), uuid.New(), fileHeaders(t, upload{"evil.png", []byte("#!/bin/sh\necho hi\n")}))

	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "images[0]")
	store.AssertNotCalled(t, "UploadImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadImagesLimits(t *testing.T) {
	svc := attachment.NewAttachmentService(new(mocks.AttachmentRepositoryMock), new(mocks.ImageStorageMock))

	_, err := svc.UploadImages(context.Background(), uuid.New(), nil)
	require.ErrorIs(t, err, apperror.ErrInvalidInput)

	files := make([]upload, 11)
	for i := range files {
		files[i] = upload{"x.png", pngBytes}
	}
	_, err = svc.UploadImages(context.Background(), uuid.New(), fileHeaders(t, files...))
	require.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestDeleteImage(t *testing.T) {
	owner := uuid.New()
	url := "https://res.example.com/a.webp"
	row := &entity.Attachment{ID: uuid.New(), UserID: owner, FileURL: url}

	t.Run("owner", func(t *testing.T) {
		repo := new(mocks.AttachmentRepositoryMock)
		store := new(mocks.ImageStorageMock)
		svc := attachment.NewAttachmentService(repo, store)

		repo.On("FindByURL", mock.Anything, url).Return(row, nil).Once()
		repo.On("InUse", mock.Anything, url).Return(false, nil).Once()
		store.On("DeleteImage", mock.Anything, url).Return(nil).Once()
		repo.On("Delete", mock.Anything, row.ID).Return(nil).Once()

		require.NoError(t, svc.DeleteImage(context.Background(), owner, url))
		repo.AssertExpectations(t)
	})

	t.Run("someone else", func(t *testing.T) {
		repo := new(mocks.AttachmentRepositoryMock)
		svc := attachment.NewAttachmentService(repo, new(mocks.ImageStorageMock))

		repo.On("FindByURL", mock.Anything, url).Return(row, nil).Once()

		require.ErrorIs(t, svc.DeleteImage(context.Background(), uuid.New(), url), apperror.ErrForbidden)
	})

	t.Run("still used by a listing", func(t *testing.T) {
		repo := new(mocks.AttachmentRepositoryMock)
		svc := attachment.NewAttachmentService(repo, new(mocks.ImageStorageMock))

		repo.On("FindByURL", mock.Anything, url).Return(row, nil).Once()
		repo.On("InUse", mock.Anything, url).Return(true, nil).Once()

		require.ErrorIs(t, svc.DeleteImage(context.Background(), owner, url), apperror.ErrConflict)
	})

	t.Run("unknown", func(t *testing.T) {
		repo := new(mocks.AttachmentRepositoryMock)
		svc := attachment.NewAttachmentService(repo, new(mocks.ImageStorageMock))

		repo.On("FindByURL", mock.Anything, url).Return(nil, gorm.ErrRecordNotFound).Once()

		require.ErrorIs(t, svc.DeleteImage(context.Background(), owner, url), apperror.ErrNotFound)
	})
}

func TestCleanupOrphanAttachmentsSkipsStorageFailures(t *testing.T) {
	repo := new(mocks.AttachmentRepositoryMock)
	store := new(mocks.ImageStorageMock)
	svc := attachment.NewAttachmentService(repo, store)

	good := entity.Attachment{ID: uuid.New(), FileURL: "https://res.example.com/good.webp"}
	bad := entity.Attachment{ID: uuid.New(), FileURL: "https://res.example.com/bad.webp"}

	repo.On("FindOrphans", mock.Anything, mock.AnythingOfType("time.Time")).Return([]entity.Attachment{good, bad}, nil).Once()
	store.On("DeleteImage", mock.Anything, good.FileURL).Return(nil).Once()
	store.On("DeleteImage", mock.Anything, bad.FileURL).Return(assert.AnError).Once()
	repo.On("Delete", mock.Anything, good.ID).Return(nil).Once()

	n, err := svc.CleanupOrphanAttachments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	repo.AssertNotCalled(t, "Delete", mock.Anything, bad.ID)
}
