package storage

import (
	"context"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
)

// StorageService defines methods for hosted media (avatars).
type StorageService interface {
	// UploadFile uploads a file into the destination folder and returns
	// its permanent identifier.
	UploadFile(ctx context.Context, localFilePath, destFolder string) (string, error)
	// DeleteFile deletes a file given its public ID.
	DeleteFile(ctx context.Context, publicID string) error
	// GetDownloadURL constructs a public URL for an image.
	GetDownloadURL(ctx context.Context, publicID string, expires time.Duration) (string, error)
}

// StorageServiceImpl is the Cloudinary-backed implementation.
type StorageServiceImpl struct {
	cld       *cloudinary.Cloudinary
	cloudName string
}
