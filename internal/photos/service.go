package photos

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"photolog/internal/database"
	"photolog/internal/events"
	"photolog/internal/metrics"
	"photolog/internal/models"
	"photolog/internal/storage"

	"go.uber.org/zap"
)

const maxOriginalName = 255

// DefaultOrphanMinAge keeps freshly saved files out of orphan sweeps while
// their images row is still being inserted.
const DefaultOrphanMinAge = 15 * time.Minute

type ImageStore interface {
	ImageFinder
	CreateImage(ctx context.Context, arg database.CreateImageParams) (*models.Image, error)
	ListImages(ctx context.Context, limit int, offset int) ([]models.Image, error)
	ListImageFilenames(ctx context.Context) ([]string, error)
	DeleteImageByFilename(ctx context.Context, filename string) (bool, error)
}

// Service ties validation, normalization, metadata and events together for
// both the HTTP handlers and the admin CLI.
type Service struct {
	store      ImageStore
	storage    storage.Backend
	validator  *Validator
	normalizer *Normalizer
	resolver   *Resolver
	events     events.Publisher
	perPage    int
	log        *zap.Logger
	now        func() time.Time
}

type ServiceParams struct {
	Store      ImageStore
	Storage    storage.Backend
	Validator  *Validator
	Normalizer *Normalizer
	Events     events.Publisher
	PerPage    int
	Logger     *zap.Logger
}

func NewService(p ServiceParams) *Service {
	if p.Events == nil {
		p.Events = events.Noop{}
	}
	if p.PerPage <= 0 {
		p.PerPage = 10
	}
	return &Service{
		store:      p.Store,
		storage:    p.Storage,
		validator:  p.Validator,
		normalizer: p.Normalizer,
		resolver:   NewResolver(p.Store, p.Storage, p.Logger),
		events:     p.Events,
		perPage:    p.PerPage,
		log:        p.Logger,
		now:        time.Now,
	}
}

func (s *Service) Resolver() *Resolver {
	return s.resolver
}

func (s *Service) MaxBytes() int64 {
	return s.validator.MaxBytes()
}

// Upload validates, normalizes and stores data for user, then records the
// metadata row. A failed insert removes the file again.
func (s *Service) Upload(ctx context.Context, user *models.User, originalFilename string, data []byte, contentType string) (*models.Image, error) {
	if user == nil {
		return nil, ErrUnknownUser
	}

	if err := s.validator.Validate(data, contentType); err != nil {
		metrics.UploadsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, err
	}

	canonical, err := s.normalizer.Process(ctx, data, contentType)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			metrics.UploadsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		case errors.Is(err, ErrCorruptImage):
			metrics.UploadsTotal.WithLabelValues(metrics.OutcomeCorrupt).Inc()
		default:
			metrics.UploadsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		}
		return nil, err
	}

	img, err := s.store.CreateImage(context.WithoutCancel(ctx), database.CreateImageParams{
		Filename:         canonical.Filename,
		OriginalFilename: cleanOriginalName(originalFilename),
		UserID:           user.ID,
		Width:            canonical.Width,
		Height:           canonical.Height,
		SizeBytes:        canonical.SizeBytes,
	})
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		if delErr := s.storage.Delete(context.WithoutCancel(ctx), canonical.Filename); delErr != nil {
			s.log.Error("failed to remove file after metadata insert failed",
				zap.String("filename", canonical.Filename), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to record image metadata: %w", err)
	}

	metrics.UploadsTotal.WithLabelValues(metrics.OutcomeStored).Inc()
	s.publish(ctx, models.EventImageUploaded, img.Filename, user.Username)

	return img, nil
}

// List returns one page of images, newest first. Pages start at 1.
func (s *Service) List(ctx context.Context, page int) (*models.ImagePage, error) {
	if page < 1 {
		page = 1
	}

	images, err := s.store.ListImages(ctx, s.perPage, (page-1)*s.perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	result := &models.ImagePage{Images: images, Page: page}
	if len(images) == s.perPage {
		next := page + 1
		result.NextPage = &next
	}

	return result, nil
}

// Delete removes an image owned by user.
func (s *Service) Delete(ctx context.Context, user *models.User, filename string) error {
	if user == nil {
		return ErrUnknownUser
	}
	return s.remove(ctx, filename, user)
}

// Remove deletes an image regardless of owner.
func (s *Service) Remove(ctx context.Context, filename string) error {
	return s.remove(ctx, filename, nil)
}

func (s *Service) remove(ctx context.Context, filename string, owner *models.User) error {
	if err := checkName(filename); err != nil {
		return err
	}

	img, err := s.store.GetImageByFilename(ctx, filename)
	if err != nil {
		return fmt.Errorf("failed to look up image %s: %w", filename, err)
	}
	if img == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	if owner != nil && img.UserID != owner.ID {
		return ErrForbidden
	}

	deleted, err := s.store.DeleteImageByFilename(ctx, filename)
	if err != nil {
		return fmt.Errorf("failed to delete image %s: %w", filename, err)
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrNotFound, filename)
	}

	if err := s.storage.Delete(context.WithoutCancel(ctx), filename); err != nil {
		s.log.Error("image row deleted but file removal failed", zap.String("filename", filename), zap.Error(err))
	}

	username := ""
	if owner != nil {
		username = owner.Username
	}
	s.publish(ctx, models.EventImageDeleted, filename, username)

	return nil
}

// Purge deletes every image and returns how many were removed.
func (s *Service) Purge(ctx context.Context) (int, error) {
	names, err := s.store.ListImageFilenames(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list image filenames: %w", err)
	}

	removed := 0
	for _, name := range names {
		if err := s.Remove(ctx, name); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return removed, err
		}
		removed++
	}

	return removed, nil
}

// Orphans lists stored files that no images row references. Files modified
// less than minAge ago are skipped: an upload saves its file before it
// inserts the row.
func (s *Service) Orphans(ctx context.Context, minAge time.Duration) ([]string, error) {
	stored, err := s.storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage: %w", err)
	}

	known, err := s.store.ListImageFilenames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list image filenames: %w", err)
	}

	referenced := make(map[string]struct{}, len(known))
	for _, name := range known {
		referenced[name] = struct{}{}
	}

	cutoff := s.now().Add(-minAge)
	var orphans []string
	for _, obj := range stored {
		if _, ok := referenced[obj.Name]; ok {
			continue
		}
		if obj.ModTime.After(cutoff) {
			continue
		}
		orphans = append(orphans, obj.Name)
	}

	return orphans, nil
}

// RemoveOrphans deletes the files reported by Orphans.
func (s *Service) RemoveOrphans(ctx context.Context, minAge time.Duration) ([]string, error) {
	orphans, err := s.Orphans(ctx, minAge)
	if err != nil {
		return nil, err
	}

	for _, name := range orphans {
		if err := s.storage.Delete(ctx, name); err != nil {
			return nil, fmt.Errorf("failed to delete orphan %s: %w", name, err)
		}
	}

	return orphans, nil
}

func (s *Service) publish(ctx context.Context, eventType, filename, username string) {
	event := models.Event{
		Type:      eventType,
		Filename:  filename,
		Username:  username,
		EventTime: time.Now().UTC(),
	}
	if err := s.events.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.log.Warn("failed to publish event", zap.String("event_type", eventType), zap.String("filename", filename), zap.Error(err))
	}
}

// cleanOriginalName keeps only the final path element of a client-supplied name.
func cleanOriginalName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		name = ""
	}
	if len(name) > maxOriginalName {
		name = strings.ToValidUTF8(name[:maxOriginalName], "")
	}
	return name
}
