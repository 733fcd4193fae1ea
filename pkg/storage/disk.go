// Package storage puts uploaded media on a disk that serves it by URL.
//
// Two drivers are available: "local" writes to the filesystem and is served
// under /storage by the HTTP kernel; "s3" targets S3-compatible object
// storage (AWS S3, MinIO, R2).
//
//	disk, err := storage.New(ctx, cfg.Storage)
//	err = disk.PutStream(ctx, "agromap/3f2c.png", f, "image/png")
//	url := disk.URL("agromap/3f2c.png")
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/agromap/agromap/config"
)

// Disk is the filesystem driver interface.
type Disk interface {
	// PutStream writes r to path, creating parent directories as needed.
	PutStream(ctx context.Context, path string, r io.Reader, contentType string) error

	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) bool

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for path.
	URL(path string) string
}

// New builds the disk named by cfg.Disk.
func New(ctx context.Context, cfg config.Storage) (Disk, error) {
	switch cfg.Disk {
	case "", "local":
		return NewLocal(cfg.LocalRoot, cfg.LocalURL)
	case "s3":
		return newS3Disk(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: unknown disk %q (supported: local, s3)", cfg.Disk)
	}
}
