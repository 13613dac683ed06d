package photos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"photolog/internal/models"
	"photolog/internal/storage"

	"go.uber.org/zap"
)

type ImageFinder interface {
	GetImageByFilename(ctx context.Context, filename string) (*models.Image, error)
}

// Resolver maps a requested filename to a stored image. The images table is
// the only source of truth for what may be served; storage is never listed.
type Resolver struct {
	images  ImageFinder
	storage storage.Backend
	log     *zap.Logger
}

func NewResolver(images ImageFinder, backend storage.Backend, log *zap.Logger) *Resolver {
	return &Resolver{images: images, storage: backend, log: log}
}

// checkName rejects anything that could address a file outside the upload root.
func checkName(filename string) error {
	if filename == "" || strings.ContainsAny(filename, "/\\\x00") || strings.Contains(filename, "..") {
		return fmt.Errorf("%w: %q", ErrTraversal, filename)
	}
	return nil
}

func (r *Resolver) Resolve(ctx context.Context, filename string) (*models.Image, error) {
	if err := checkName(filename); err != nil {
		return nil, err
	}

	img, err := r.images.GetImageByFilename(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to look up image %s: %w", filename, err)
	}
	if img == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
	}

	exists, err := r.storage.Exists(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to check storage for %s: %w", filename, err)
	}
	if !exists {
		r.log.Error("image row has no file", zap.String("filename", filename), zap.Int64("image_id", img.ID))
		return nil, fmt.Errorf("%w: %s", ErrInconsistent, filename)
	}

	return img, nil
}

// Open resolves filename and opens the file for streaming. The caller closes it.
func (r *Resolver) Open(ctx context.Context, filename string) (*models.Image, io.ReadCloser, error) {
	img, err := r.Resolve(ctx, filename)
	if err != nil {
		return nil, nil, err
	}

	file, err := r.storage.Open(ctx, filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			r.log.Error("image file vanished after resolve", zap.String("filename", filename))
			return nil, nil, fmt.Errorf("%w: %s", ErrInconsistent, filename)
		}
		return nil, nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}

	return img, file, nil
}
