package ports

import (
	"context"
	"mime/multipart"
)

// ImageStorage persists uploaded listing images and returns their public path.
type ImageStorage interface {
	Save(ctx context.Context, file *multipart.FileHeader) (string, error)
	Remove(publicPath string) error
}
