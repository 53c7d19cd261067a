package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// ImageService stores uploaded product images on a disk.
type ImageService struct {
	disk storage.Disk
}

func NewImageService(disk storage.Disk) *ImageService {
	return &ImageService{disk: disk}
}

const imageDir = "products/"

// Store writes the upload under products/ with a random name and returns
// its public URL.
func (s *ImageService) Store(ctx context.Context, filename string, content io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !imageExtensions[ext] {
		return "", invalid(validate.Violations{{
			Field:   "image",
			Message: "The image must be a file of type: png, jpg, jpeg, gif, webp.",
		}})
	}

	path := imageDir + uuid.NewString() + ext
	if err := s.disk.Put(ctx, path, content); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return s.disk.URL(path), nil
}

// Delete removes a stored image by the file name Store generated. Names
// outside products/ or with an unknown extension never match.
func (s *ImageService) Delete(ctx context.Context, name string) error {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) ||
		!imageExtensions[strings.ToLower(filepath.Ext(name))] {
		return notFound("Image not found")
	}

	path := imageDir + name
	ok, err := s.disk.Exists(ctx, path)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if !ok {
		return notFound("Image not found")
	}
	if err := s.disk.Delete(ctx, path); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}
