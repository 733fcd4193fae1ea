package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/agromap/agromap/pkg/bind"
	"github.com/agromap/agromap/pkg/metrics"
	"github.com/agromap/agromap/pkg/storage"
)

// MaxImageSide is the longest edge kept for JPEG and PNG uploads.
const MaxImageSide = 1600

// Upload is a stored file.
type Upload struct {
	URL         string `json:"url"`
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// UploadService stores images on the configured disk.
type UploadService struct {
	disk     storage.Disk
	folder   string
	maxBytes int64
}

func NewUploadService(disk storage.Disk, folder string, maxBytes int64) *UploadService {
	return &UploadService{disk: disk, folder: strings.Trim(folder, "/"), maxBytes: maxBytes}
}

// Upload validates f, shrinks oversized JPEG and PNG images and stores the
// result under <folder>/<uuid><ext>.
func (s *UploadService) Upload(ctx context.Context, f *bind.File) (*Upload, error) {
	if f == nil {
		return nil, reject(FieldErrors{"file": "The file field is required."})
	}
	if !strings.HasPrefix(f.ContentType, "image/") {
		return nil, reject(invalid("Only image files are allowed"))
	}
	if f.Size > s.maxBytes {
		return nil, reject(invalid("The image may not be larger than %d MB", s.maxBytes>>20))
	}

	body, size, err := s.prepare(f)
	if errors.Is(err, ErrInvalid) {
		return nil, reject(err)
	}
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	if c, ok := body.(io.Closer); ok {
		defer c.Close()
	}

	key := path.Join(s.folder, uuid.NewString()+f.Extension)
	if err := s.disk.PutStream(ctx, key, body, f.ContentType); err != nil {
		metrics.UploadsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("upload: store %s: %w", key, err)
	}
	metrics.UploadsTotal.WithLabelValues("stored").Inc()
	return &Upload{URL: s.disk.URL(key), Path: key, ContentType: f.ContentType, Size: size}, nil
}

// Discard removes a stored upload that ended up unused.
func (s *UploadService) Discard(ctx context.Context, u *Upload) error {
	if u == nil {
		return nil
	}
	if err := s.disk.Delete(ctx, u.Path); err != nil {
		return fmt.Errorf("upload: discard %s: %w", u.Path, err)
	}
	return nil
}

// prepare returns the bytes to store. Only JPEG and PNG are resized; other
// images are stored as uploaded.
func (s *UploadService) prepare(f *bind.File) (io.Reader, int64, error) {
	format, resizable := map[string]imaging.Format{
		"image/jpeg": imaging.JPEG,
		"image/png":  imaging.PNG,
	}[f.ContentType]

	src, err := f.Open()
	if err != nil {
		return nil, 0, err
	}
	if !resizable {
		return src, f.Size, nil
	}

	cfg, _, err := image.DecodeConfig(src)
	if err != nil {
		src.Close()
		return nil, 0, invalid("The image could not be decoded")
	}
	if cfg.Width <= MaxImageSide && cfg.Height <= MaxImageSide {
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			src.Close()
			return nil, 0, err
		}
		return src, f.Size, nil
	}
	src.Close()

	img, err := imaging.Open(f.Path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, 0, invalid("The image could not be decoded")
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.Fit(img, MaxImageSide, MaxImageSide, imaging.Lanczos), format); err != nil {
		return nil, 0, err
	}
	return bytes.NewReader(buf.Bytes()), int64(buf.Len()), nil
}

func reject(err error) error {
	metrics.UploadsTotal.WithLabelValues("rejected").Inc()
	return err
}
