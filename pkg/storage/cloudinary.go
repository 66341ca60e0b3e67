package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ImageStorage is the contract the listing and upload modules consume.
type ImageStorage interface {
	// UploadImage stores r under folder and returns the public https URL.
	UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	DeleteImage(ctx context.Context, fileURL string) error
}

type cloudinaryStorage struct {
	cld        *cloudinary.Cloudinary
	rootFolder string
}

// NewCloudinaryStorage reads CLOUDINARY_URL (or the split CLOUDINARY_CLOUD_NAME /
// CLOUDINARY_API_KEY / CLOUDINARY_API_SECRET variables). Every upload lands
// under rootFolder.
func NewCloudinaryStorage(rootFolder string) (ImageStorage, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)

	if os.Getenv("CLOUDINARY_URL") != "" {
		cld, err = cloudinary.New()
	} else {
		cld, err = cloudinary.NewFromParams(
			os.Getenv("CLOUDINARY_CLOUD_NAME"),
			os.Getenv("CLOUDINARY_API_KEY"),
			os.Getenv("CLOUDINARY_API_SECRET"),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	cld.Config.URL.Secure = true

	return &cloudinaryStorage{cld: cld, rootFolder: rootFolder}, nil
}

func (s *cloudinaryStorage) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	if s == nil || s.cld == nil {
		return "", fmt.Errorf("cloudinary storage is not initialized")
	}

	base := strings.TrimSuffix(path.Base(fileName), path.Ext(fileName))
	params := uploader.UploadParams{
		Folder:         path.Join(s.rootFolder, folder),
		PublicID:       fmt.Sprintf("%d-%s", time.Now().UnixNano(), base),
		UniqueFilename: api.Bool(true),
		Overwrite:      api.Bool(false),
		ResourceType:   "image",
		Format:         "webp",
		Transformation: "c_limit,w_1600/q_auto",
	}

	resp, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload image to cloudinary: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected upload: %s", resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload succeeded but secure URL is empty")
	}

	return resp.SecureURL, nil
}

func (s *cloudinaryStorage) DeleteImage(ctx context.Context, fileURL string) error {
	if s == nil || s.cld == nil {
		return fmt.Errorf("cloudinary storage is not initialized")
	}

	publicID := PublicID(fileURL)
	if publicID == "" {
		return fmt.Errorf("could not extract public ID from URL: %s", fileURL)
	}

	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:   publicID,
		Invalidate: api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image from cloudinary: %w", err)
	}

	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy api returned result: %s", resp.Result)
	}

	return nil
}

// PublicID turns a delivery URL back into the asset's public ID:
// https://res.cloudinary.com/demo/image/upload/v123/market/listings/a.webp -> market/listings/a
func PublicID(fileURL string) string {
	u, err := url.Parse(fileURL)
	if err != nil {
		return ""
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	uploadIndex := -1
	for i, p := range parts {
		if p == "upload" {
			uploadIndex = i
			break
		}
	}
	if uploadIndex == -1 || uploadIndex+1 >= len(parts) {
		return ""
	}

	rest := parts[uploadIndex+1:]
	if isVersionSegment(rest[0]) {
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return ""
	}

	joined := strings.Join(rest, "/")
	return strings.TrimSuffix(joined, path.Ext(joined))
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
