package photos

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"photolog/internal/database"
	"photolog/internal/models"
	"photolog/internal/storage"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	red  = color.RGBA{R: 230, G: 20, B: 20, A: 255}
	blue = color.RGBA{R: 20, G: 20, B: 230, A: 255}
)

type memBackend struct {
	mu       sync.Mutex
	files    map[string][]byte
	modTimes map[string]time.Time
	saveErr  error
	calls    int
}

func newMemBackend() *memBackend {
	return &memBackend{files: map[string][]byte{}, modTimes: map[string]time.Time{}}
}

// put stores a file directly with the given modification time.
func (m *memBackend) put(name string, data []byte, modTime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = data
	m.modTimes[name] = modTime
}

func (m *memBackend) Save(_ context.Context, name string, data io.Reader) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.saveErr != nil {
		return m.saveErr
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.files[name] = b
	m.modTimes[name] = time.Now()
	return nil
}

func (m *memBackend) Open(_ context.Context, name string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	b, ok := m.files[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memBackend) Exists(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	_, ok := m.files[name]
	return ok, nil
}

func (m *memBackend) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	delete(m.files, name)
	delete(m.modTimes, name)
	return nil
}

func (m *memBackend) List(_ context.Context) ([]storage.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	objects := make([]storage.Object, 0, len(m.files))
	for name := range m.files {
		objects = append(objects, storage.Object{Name: name, ModTime: m.modTimes[name]})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name < objects[j].Name })
	return objects, nil
}

type fakeStore struct {
	mu        sync.Mutex
	images    []models.Image
	nextID    int64
	createErr error
	lookups   int
}

func (f *fakeStore) GetImageByFilename(_ context.Context, filename string) (*models.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	for i := range f.images {
		if f.images[i].Filename == filename {
			img := f.images[i]
			return &img, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateImage(_ context.Context, arg database.CreateImageParams) (*models.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	img := models.Image{
		ID:               f.nextID,
		Filename:         arg.Filename,
		OriginalFilename: arg.OriginalFilename,
		UserID:           arg.UserID,
		Width:            arg.Width,
		Height:           arg.Height,
		SizeBytes:        arg.SizeBytes,
	}
	f.images = append(f.images, img)
	return &img, nil
}

func (f *fakeStore) ListImages(_ context.Context, limit int, offset int) ([]models.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Image{}
	for i := len(f.images) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.images[i])
	}
	return out, nil
}

func (f *fakeStore) ListImageFilenames(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, img := range f.images {
		names = append(names, img.Filename)
	}
	return names, nil
}

func (f *fakeStore) DeleteImageByFilename(_ context.Context, filename string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.images {
		if f.images[i].Filename == filename {
			f.images = append(f.images[:i], f.images[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recordingEvents) Publish(_ context.Context, event models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

var errBoom = errors.New("boom")

// splitImage is w x h with the left half red and the right half blue.
func splitImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.Set(x, y, red)
			} else {
				img.Set(x, y, blue)
			}
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}))
	return buf.Bytes()
}

// withOrientation inserts an APP1 Exif segment holding only the orientation tag.
func withOrientation(raw []byte, orientation uint16) []byte {
	tiff := []byte{
		'M', 'M', 0, 42, 0, 0, 0, 8,
		0, 1,
		0x01, 0x12, 0, 3, 0, 0, 0, 1, byte(orientation >> 8), byte(orientation), 0, 0,
		0, 0, 0, 0,
	}
	payload := append([]byte(exifHeaderBytes), tiff...)
	length := len(payload) + 2

	out := append([]byte{}, raw[:2]...)
	out = append(out, 0xFF, jpegMarkerAPP1, byte(length>>8), byte(length))
	out = append(out, payload...)
	return append(out, raw[2:]...)
}

func decodeStored(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	return img
}

func isRed(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r>>8 > 150 && g>>8 < 100 && b>>8 < 100
}

func isBlue(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return b>>8 > 150 && r>>8 < 100 && g>>8 < 100
}

func newTestNormalizer(t *testing.T, backend storage.Backend, opts Options) *Normalizer {
	t.Helper()
	n, err := NewNormalizer(backend, opts, zap.NewNop())
	require.NoError(t, err)
	return n
}
