package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"photolog/internal/database"
	"photolog/internal/models"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func (f *fakeUsers) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[username]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUsers) remove(username string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, username)
}

type fakeImages struct {
	mu     sync.Mutex
	images []models.Image
	nextID int64
}

func (f *fakeImages) GetImageByFilename(_ context.Context, filename string) (*models.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, img := range f.images {
		if img.Filename == filename {
			copied := img
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeImages) CreateImage(_ context.Context, arg database.CreateImageParams) (*models.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, img := range f.images {
		if img.Filename == arg.Filename {
			return nil, database.ErrFilenameTaken
		}
	}
	f.nextID++
	img := models.Image{
		ID:               f.nextID,
		Filename:         arg.Filename,
		OriginalFilename: arg.OriginalFilename,
		UploadDate:       time.Now(),
		UserID:           arg.UserID,
		Width:            arg.Width,
		Height:           arg.Height,
		SizeBytes:        arg.SizeBytes,
	}
	f.images = append(f.images, img)
	return &img, nil
}

func (f *fakeImages) ListImages(_ context.Context, limit int, offset int) ([]models.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Image{}
	for i := len(f.images) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.images[i])
	}
	return out, nil
}

func (f *fakeImages) ListImageFilenames(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, img := range f.images {
		names = append(names, img.Filename)
	}
	return names, nil
}

func (f *fakeImages) DeleteImageByFilename(_ context.Context, filename string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, img := range f.images {
		if img.Filename == filename {
			f.images = append(f.images[:i], f.images[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error { return f.err }

var errDatabaseDown = errors.New("database down")

type fakeJournal struct {
	mu     sync.Mutex
	events []models.Event
	err    error
}

func (f *fakeJournal) LogEvent(_ context.Context, event models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	event.ID = int64(len(f.events) + 1)
	f.events = append(f.events, event)
	return nil
}

func (f *fakeJournal) GetEventsSince(_ context.Context, sinceID int64, limit int) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	out := []models.Event{}
	for _, event := range f.events {
		if event.ID > sinceID && len(out) < limit {
			out = append(out, event)
		}
	}
	return out, nil
}
