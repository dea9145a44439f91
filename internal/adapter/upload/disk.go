package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
	"github.com/sm8ta/webike_rental_service/internal/core/ports"
)

// PublicPrefix is the URL prefix uploaded files are served under.
const PublicPrefix = "/uploads/"

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

type DiskStorage struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

var _ ports.ImageStorage = (*DiskStorage)(nil)

func NewDiskStorage(dir string, maxBytes int64) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStorage{dir: dir, maxBytes: maxBytes, now: time.Now}, nil
}

// Save writes the file as <unix millis>-<8 hex chars><ext> and returns its public path.
func (d *DiskStorage) Save(ctx context.Context, file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", domain.NewError(domain.ErrValidation, "Only image files are allowed (jpg, jpeg, png, gif, webp)")
	}
	if file.Size > d.maxBytes {
		return "", domain.NewError(domain.ErrValidation, fmt.Sprintf("Image must be at most %d bytes", d.maxBytes))
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	name := fmt.Sprintf("%d-%s%s", d.now().UnixMilli(), suffix, ext)

	dst, err := os.OpenFile(filepath.Join(d.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}

	// +1 so an oversized body is detected even if the header lied about its size
	n, err := io.Copy(dst, io.LimitReader(src, d.maxBytes+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > d.maxBytes {
		err = domain.NewError(domain.ErrValidation, fmt.Sprintf("Image must be at most %d bytes", d.maxBytes))
	}
	if err != nil {
		_ = os.Remove(filepath.Join(d.dir, name))
		return "", err
	}

	return PublicPrefix + name, nil
}

// Remove deletes a file previously returned by Save. Missing files are ignored.
func (d *DiskStorage) Remove(publicPath string) error {
	if !strings.HasPrefix(publicPath, PublicPrefix) {
		return nil
	}
	name := filepath.Base(strings.TrimPrefix(publicPath, PublicPrefix))
	if name == "." || name == string(filepath.Separator) {
		return nil
	}
	err := os.Remove(filepath.Join(d.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
