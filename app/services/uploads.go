package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

// MaxImageBytes caps a single product image upload.
const MaxImageBytes = 5 << 20

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Upload is a stored file.
type Upload struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// UploadService stores product images on a storage disk.
type UploadService struct {
	disk storage.Disk
}

func NewUploadService(disk storage.Disk) *UploadService {
	return &UploadService{disk: disk}
}

// StoreImage sniffs the content type, rejects anything that is not an
// image, and writes the file under products/ with a random name.
func (s *UploadService) StoreImage(ctx context.Context, r io.ReadSeeker, size int64) (Upload, error) {
	if size > MaxImageBytes {
		return Upload{}, Invalid("image", fmt.Sprintf("The image must not be greater than %d kilobytes.", MaxImageBytes>>10))
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Upload{}, fmt.Errorf("uploads: read: %w", err)
	}
	contentType := http.DetectContentType(head[:n])
	contentType, _, _ = strings.Cut(contentType, ";")
	ext, ok := imageTypes[contentType]
	if !ok {
		return Upload{}, Invalid("image", "The image must be a file of type: jpeg, png, webp, gif.")
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Upload{}, fmt.Errorf("uploads: rewind: %w", err)
	}

	p := path.Join("products", uuid.NewString()+ext)
	if err := s.disk.Put(ctx, p, r, contentType); err != nil {
		return Upload{}, err
	}

	logger.WithCtx(ctx).Info("image stored", "path", p, "type", contentType, "bytes", size)
	return Upload{Path: p, URL: s.disk.URL(p)}, nil
}
