// Package storage keeps uploaded product images on an interchangeable disk.
//
// Two drivers are available:
//   - "local"  a directory served by the HTTP kernel under /storage (default)
//   - "s3"     an S3-compatible bucket (AWS S3, MinIO, R2, Spaces)
//
//	disks := storage.Connect(ctx)
//	_ = disks.Default().Put(ctx, "products/lamp.png", file)
//	url := disks.Default().URL("products/lamp.png")
package storage

import (
	"context"
	"io"
)

// Disk is what the image service needs from a driver. Paths are slash
// separated and relative to the disk root.
type Disk interface {
	// Put writes r to path, replacing any existing object.
	Put(ctx context.Context, path string, r io.Reader) error

	// Exists reports whether an object is stored at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes path. Deleting a missing object is not an error.
	Delete(ctx context.Context, path string) error

	// URL is the public address of path.
	URL(path string) string
}
